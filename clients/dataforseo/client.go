// Package dataforseo looks up keyword market metrics from the DataForSEO
// Labs keyword-ideas endpoint. The provider is optional: an unconfigured
// client reports Configured()==false and the pipeline degrades to
// mention-only scoring.
package dataforseo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"

	"trend-seo/clients"
	"trend-seo/models"
)

const (
	defaultBaseURL = "https://api.dataforseo.com"

	// the sample value shipped in the original .env template; treated as
	// unconfigured so a copied template does not burn API credit
	placeholderLogin = "your_email@example.com"

	taskStatusOK = 20000
)

// Client calls the DataForSEO Labs API with HTTP basic auth.
type Client struct {
	login        string
	password     string
	baseURL      string
	locationName string
	languageName string
	client       *http.Client
	executor     failsafe.Executor[*http.Response]
	shouldRetry  func(resp *http.Response, err error) bool
}

// Option customizes the client.
type Option func(*Client)

// NewClient creates a metrics-provider client. Empty or placeholder
// credentials leave it unconfigured.
func NewClient(login, password string, opts ...Option) *Client {
	cfg := clients.DefaultExecutorConfig()
	c := &Client{
		login:        login,
		password:     password,
		baseURL:      defaultBaseURL,
		locationName: "United States",
		languageName: "English",
		client:       &http.Client{Timeout: 60 * time.Second},
		executor:     clients.NewHTTPExecutor(cfg),
		shouldRetry:  cfg.ShouldRetry,
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

// WithLocale sets the provider's location and language parameters so volume
// and CPC come back in consistent units for the whole run.
func WithLocale(locationName, languageName string) Option {
	return func(c *Client) {
		if locationName != "" {
			c.locationName = locationName
		}
		if languageName != "" {
			c.languageName = languageName
		}
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

// Configured reports whether usable credentials are present.
func (c *Client) Configured() bool {
	return c.login != "" && c.login != placeholderLogin && c.password != ""
}

// KeywordMetrics looks up metrics for one batch of keywords and returns a
// mapping from keyword text to metrics. Keywords the provider returned no
// data for are simply absent from the map; keywords the provider returned
// that were never requested are discarded.
func (c *Client) KeywordMetrics(ctx context.Context, keywords []string) (map[string]*models.KeywordMetrics, error) {
	if len(keywords) == 0 {
		return map[string]*models.KeywordMetrics{}, nil
	}

	payload, err := json.Marshal([]keywordIdeasRequest{{
		Keywords:     keywords,
		LocationName: c.locationName,
		LanguageName: c.languageName,
		Limit:        len(keywords) * 2,
	}})
	if err != nil {
		return nil, fmt.Errorf("dataforseo: marshal request: %w", err)
	}

	resp, err := clients.Do(ctx, c.client, c.executor, c.shouldRetry, func(ctx context.Context) (*http.Request, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v3/dataforseo_labs/google/keyword_ideas/live", bytes.NewReader(payload))
		if reqErr != nil {
			return nil, fmt.Errorf("dataforseo: create request: %w", reqErr)
		}
		req.Header.Set("Content-Type", "application/json")
		req.SetBasicAuth(c.login, c.password)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("dataforseo: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("dataforseo: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed keywordIdeasResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("dataforseo: decode response: %w", err)
	}

	requested := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		requested[strings.ToLower(strings.TrimSpace(kw))] = struct{}{}
	}

	out := make(map[string]*models.KeywordMetrics)
	for _, task := range parsed.Tasks {
		if task.StatusCode != taskStatusOK {
			return nil, fmt.Errorf("dataforseo: task failed with status %d: %s", task.StatusCode, task.StatusMessage)
		}
		for _, result := range task.Result {
			for _, item := range result.Items {
				kw := strings.ToLower(strings.TrimSpace(item.Keyword))
				if _, ok := requested[kw]; !ok {
					continue
				}
				metrics := &models.KeywordMetrics{
					SearchVolume:     item.KeywordInfo.SearchVolume,
					Competition:      item.KeywordInfo.Competition,
					CompetitionLevel: item.KeywordInfo.CompetitionLevel,
					CPC:              item.KeywordInfo.CPC,
					Difficulty:       item.KeywordProperties.KeywordDifficulty,
				}
				if metrics.IsEmpty() {
					continue
				}
				out[kw] = metrics
			}
		}
	}
	return out, nil
}

type keywordIdeasRequest struct {
	Keywords     []string `json:"keywords"`
	LocationName string   `json:"location_name"`
	LanguageName string   `json:"language_name"`
	Limit        int      `json:"limit,omitempty"`
}

type keywordIdeasResponse struct {
	Tasks []struct {
		StatusCode    int    `json:"status_code"`
		StatusMessage string `json:"status_message"`
		Result        []struct {
			Items []keywordItem `json:"items"`
		} `json:"result"`
	} `json:"tasks"`
}

type keywordItem struct {
	Keyword     string `json:"keyword"`
	KeywordInfo struct {
		SearchVolume     *int64   `json:"search_volume"`
		Competition      *float64 `json:"competition"`
		CompetitionLevel string   `json:"competition_level"`
		CPC              *float64 `json:"cpc"`
	} `json:"keyword_info"`
	KeywordProperties struct {
		KeywordDifficulty *int `json:"keyword_difficulty"`
	} `json:"keyword_properties"`
}
