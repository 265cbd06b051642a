// Package twitter fetches trending posts from the twitterapi.io
// advanced-search endpoint.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"

	"trend-seo/clients"
	"trend-seo/models"
)

const defaultBaseURL = "https://api.twitterapi.io"

// APIError reports a non-2xx response from the post provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twitter api returned status %d: %s", e.StatusCode, e.Body)
}

// Client calls the twitterapi.io advanced-search endpoint.
type Client struct {
	apiKey      string
	userID      string
	baseURL     string
	client      *http.Client
	executor    failsafe.Executor[*http.Response]
	shouldRetry func(resp *http.Response, err error) bool
}

// Option customizes the client.
type Option func(*Client)

// NewClient creates a post-source client authenticated with the given
// twitterapi.io credentials.
func NewClient(apiKey, userID string, opts ...Option) *Client {
	cfg := clients.DefaultExecutorConfig()
	c := &Client{
		apiKey:      apiKey,
		userID:      userID,
		baseURL:     defaultBaseURL,
		client:      &http.Client{Timeout: 30 * time.Second},
		executor:    clients.NewHTTPExecutor(cfg),
		shouldRetry: cfg.ShouldRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithExecutorConfig overrides the retry behaviour.
func WithExecutorConfig(cfg clients.ExecutorConfig) Option {
	return func(c *Client) {
		c.executor = clients.NewHTTPExecutor(cfg)
		c.shouldRetry = cfg.ShouldRetry
	}
}

// Search fetches posts matching the query parameters. A transient provider
// failure surfaces as an error after retries; zero results is a valid empty
// slice, not an error.
func (c *Client) Search(ctx context.Context, params models.QueryParams) ([]models.RawPost, error) {
	query := fmt.Sprintf("(%s) min_faves:%d filter:media", params.Keyword, params.MinLikes)
	if params.VerifiedOnly {
		query += " filter:blue_verified"
	}

	resp, err := clients.Do(ctx, c.client, c.executor, c.shouldRetry, func(ctx context.Context) (*http.Request, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL+"/twitter/tweet/advanced_search", nil)
		if reqErr != nil {
			return nil, fmt.Errorf("twitter: create request: %w", reqErr)
		}
		q := url.Values{}
		q.Set("query", query)
		q.Set("max_results", strconv.Itoa(params.MaxResults))
		req.URL.RawQuery = q.Encode()
		req.Header.Set("X-API-Key", c.apiKey)
		req.Header.Set("X-User-Id", c.userID)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("twitter: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("twitter: decode response: %w", err)
	}

	posts := make([]models.RawPost, 0, len(parsed.Tweets))
	for _, t := range parsed.Tweets {
		posts = append(posts, models.RawPost{
			ID:             t.ID,
			Text:           t.Text,
			AuthorHandle:   t.Author.UserName,
			AuthorVerified: t.Author.IsBlueVerified,
			Likes:          t.LikeCount,
			Reposts:        t.RetweetCount,
			Replies:        t.ReplyCount,
			CreatedAt:      parseCreatedAt(t.CreatedAt),
			Hashtags:       t.Hashtags,
		})
	}
	return posts, nil
}

type searchResponse struct {
	Tweets []tweetRecord `json:"tweets"`
}

type tweetRecord struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	LikeCount    int      `json:"likeCount"`
	RetweetCount int      `json:"retweetCount"`
	ReplyCount   int      `json:"replyCount"`
	CreatedAt    string   `json:"createdAt"`
	Hashtags     []string `json:"hashtags"`
	Author       struct {
		UserName       string `json:"userName"`
		IsBlueVerified bool   `json:"isBlueVerified"`
	} `json:"author"`
}

// parseCreatedAt handles the provider's legacy timestamp format with an
// RFC3339 fallback; an unparseable timestamp yields the zero time rather
// than dropping the record here (validation is the normalizer's job).
func parseCreatedAt(raw string) time.Time {
	for _, layout := range []string{time.RubyDate, time.RFC3339} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
