package dataforseo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trend-seo/clients"
)

func fastRetryConfig() clients.ExecutorConfig {
	cfg := clients.DefaultExecutorConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestConfigured(t *testing.T) {
	cases := []struct {
		login, password string
		want            bool
	}{
		{"me@corp.com", "secret", true},
		{"", "secret", false},
		{"me@corp.com", "", false},
		{"your_email@example.com", "secret", false}, // the .env template placeholder
	}
	for _, tc := range cases {
		if got := NewClient(tc.login, tc.password).Configured(); got != tc.want {
			t.Errorf("Configured(%q, %q) = %v, want %v", tc.login, tc.password, got, tc.want)
		}
	}
}

func TestKeywordMetricsRequestShape(t *testing.T) {
	var gotBody []keywordIdeasRequest
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/dataforseo_labs/google/keyword_ideas/live" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotUser, gotPass, _ = r.BasicAuth()
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"tasks":[{"status_code":20000,"result":[]}]}`))
	}))
	defer srv.Close()

	c := NewClient("me@corp.com", "secret",
		WithBaseURL(srv.URL),
		WithLocale("Germany", "German"),
		WithExecutorConfig(fastRetryConfig()))

	if _, err := c.KeywordMetrics(context.Background(), []string{"chatgpt", "ai agents"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotUser != "me@corp.com" || gotPass != "secret" {
		t.Errorf("unexpected basic auth %q/%q", gotUser, gotPass)
	}
	if len(gotBody) != 1 {
		t.Fatalf("expected 1 task in request, got %d", len(gotBody))
	}
	task := gotBody[0]
	if strings.Join(task.Keywords, ",") != "chatgpt,ai agents" {
		t.Errorf("unexpected keywords %v", task.Keywords)
	}
	if task.LocationName != "Germany" || task.LanguageName != "German" {
		t.Errorf("unexpected locale %q/%q", task.LocationName, task.LanguageName)
	}
}

func TestKeywordMetricsParsesPartialData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tasks":[{"status_code":20000,"result":[{"items":[
			{"keyword":"ChatGPT",
			 "keyword_info":{"search_volume":40000,"competition":0.62,"competition_level":"MEDIUM","cpc":1.25},
			 "keyword_properties":{"keyword_difficulty":55}},
			{"keyword":"ai agents",
			 "keyword_info":{"search_volume":null,"competition":0.1},
			 "keyword_properties":{}},
			{"keyword":"unrequested extra",
			 "keyword_info":{"search_volume":99},
			 "keyword_properties":{}},
			{"keyword":"empty one",
			 "keyword_info":{},
			 "keyword_properties":{}}
		]}]}]}`))
	}))
	defer srv.Close()

	c := NewClient("me@corp.com", "secret", WithBaseURL(srv.URL), WithExecutorConfig(fastRetryConfig()))
	out, err := c.KeywordMetrics(context.Background(), []string{"chatgpt", "ai agents", "empty one"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chatgpt := out["chatgpt"]
	if chatgpt == nil {
		t.Fatal("expected metrics for 'chatgpt' (provider casing normalized)")
	}
	if chatgpt.SearchVolume == nil || *chatgpt.SearchVolume != 40000 {
		t.Errorf("unexpected search volume %v", chatgpt.SearchVolume)
	}
	if chatgpt.Competition == nil || *chatgpt.Competition != 0.62 {
		t.Errorf("unexpected competition %v", chatgpt.Competition)
	}
	if chatgpt.CompetitionLevel != "MEDIUM" {
		t.Errorf("unexpected competition level %q", chatgpt.CompetitionLevel)
	}
	if chatgpt.Difficulty == nil || *chatgpt.Difficulty != 55 {
		t.Errorf("unexpected difficulty %v", chatgpt.Difficulty)
	}

	agents := out["ai agents"]
	if agents == nil {
		t.Fatal("expected partial metrics for 'ai agents'")
	}
	if agents.SearchVolume != nil {
		t.Error("null search_volume must stay absent, not become zero")
	}
	if agents.Competition == nil || *agents.Competition != 0.1 {
		t.Errorf("unexpected competition %v", agents.Competition)
	}

	if _, ok := out["unrequested extra"]; ok {
		t.Error("provider suggestions outside the request must be discarded")
	}
	if _, ok := out["empty one"]; ok {
		t.Error("an all-empty metrics record must stay absent")
	}
}

func TestKeywordMetricsTaskFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tasks":[{"status_code":40101,"status_message":"Auth error"}]}`))
	}))
	defer srv.Close()

	c := NewClient("me@corp.com", "secret", WithBaseURL(srv.URL), WithExecutorConfig(fastRetryConfig()))
	if _, err := c.KeywordMetrics(context.Background(), []string{"ai"}); err == nil {
		t.Fatal("expected error for failed task status")
	}
}

func TestKeywordMetricsEmptyInput(t *testing.T) {
	c := NewClient("me@corp.com", "secret")
	out, err := c.KeywordMetrics(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty map, got %v", out)
	}
}
