package twitter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"trend-seo/clients"
	"trend-seo/models"
)

func fastRetryConfig() clients.ExecutorConfig {
	cfg := clients.DefaultExecutorConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestSearchBuildsQueryAndAuth(t *testing.T) {
	var gotQuery, gotMax, gotKey, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/twitter/tweet/advanced_search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("query")
		gotMax = r.URL.Query().Get("max_results")
		gotKey = r.Header.Get("X-API-Key")
		gotUser = r.Header.Get("X-User-Id")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tweets":[
			{"id":"9","text":"hello","likeCount":150,"retweetCount":3,"replyCount":1,
			 "createdAt":"Mon Jan 02 15:04:05 -0700 2006","hashtags":["AI"],
			 "author":{"userName":"dev","isBlueVerified":true}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("key-123", "user-456", WithBaseURL(srv.URL), WithExecutorConfig(fastRetryConfig()))
	posts, err := c.Search(context.Background(), models.QueryParams{Keyword: "AI", MinLikes: 100, MaxResults: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery != "(AI) min_faves:100 filter:media" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if gotMax != "10" || gotKey != "key-123" || gotUser != "user-456" {
		t.Errorf("unexpected request params: max=%q key=%q user=%q", gotMax, gotKey, gotUser)
	}

	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	p := posts[0]
	if p.ID != "9" || p.Likes != 150 || p.Reposts != 3 || !p.AuthorVerified || p.AuthorHandle != "dev" {
		t.Errorf("unexpected post: %+v", p)
	}
	if p.CreatedAt.IsZero() {
		t.Error("expected legacy timestamp to parse")
	}
}

func TestSearchVerifiedFilter(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(`{"tweets":[]}`))
	}))
	defer srv.Close()

	c := NewClient("k", "u", WithBaseURL(srv.URL), WithExecutorConfig(fastRetryConfig()))
	posts, err := c.Search(context.Background(), models.QueryParams{Keyword: "AI", MinLikes: 50, VerifiedOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "(AI) min_faves:50 filter:media filter:blue_verified" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", posts)
	}
}

func TestSearchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"tweets":[{"id":"1","text":"ok","author":{}}]}`))
	}))
	defer srv.Close()

	c := NewClient("k", "u", WithBaseURL(srv.URL), WithExecutorConfig(fastRetryConfig()))
	posts, err := c.Search(context.Background(), models.QueryParams{Keyword: "AI"})
	if err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
	if len(posts) != 1 {
		t.Errorf("expected 1 post, got %d", len(posts))
	}
}

func TestSearchClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`bad key`))
	}))
	defer srv.Close()

	c := NewClient("k", "u", WithBaseURL(srv.URL), WithExecutorConfig(fastRetryConfig()))
	_, err := c.Search(context.Background(), models.QueryParams{Keyword: "AI"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("unexpected status %d", apiErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("4xx must not be retried, got %d attempts", calls.Load())
	}
}

func TestParseCreatedAtFallbacks(t *testing.T) {
	if ts := parseCreatedAt("2026-08-01T10:00:00Z"); ts.IsZero() {
		t.Error("expected RFC3339 to parse")
	}
	if ts := parseCreatedAt("not a timestamp"); !ts.IsZero() {
		t.Errorf("expected zero time, got %v", ts)
	}
}
