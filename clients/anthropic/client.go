// Package anthropic is a minimal client for the Anthropic Messages API,
// used to summarize fetched posts into thematic insight.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"

	"trend-seo/clients"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultMaxTokens = 2048
	apiVersion       = "2023-06-01"
)

// Client calls the Anthropic Messages API.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	client      *http.Client
	executor    failsafe.Executor[*http.Response]
	shouldRetry func(resp *http.Response, err error) bool
}

// Option customizes the client.
type Option func(*Client)

// NewClient creates a summarizer client. An empty API key leaves the client
// unconfigured; callers check Configured before use.
func NewClient(apiKey, model string, opts ...Option) *Client {
	cfg := clients.DefaultExecutorConfig()
	c := &Client{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		model:       model,
		maxTokens:   defaultMaxTokens,
		client:      &http.Client{Timeout: 60 * time.Second},
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

// WithMaxTokens caps the model's response length.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
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

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Complete sends a single-turn user prompt and returns the model's free-text
// response with all text blocks concatenated.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.model == "" {
		return "", errors.New("anthropic: model is required")
	}

	payload, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: marshal request: %w", err)
	}

	resp, err := clients.Do(ctx, c.client, c.executor, c.shouldRetry, func(ctx context.Context) (*http.Request, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/messages", bytes.NewReader(payload))
		if reqErr != nil {
			return nil, fmt.Errorf("anthropic: create request: %w", reqErr)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)
		req.Header.Set("Anthropic-Version", apiVersion)
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("anthropic: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("anthropic: decode response: %w", err)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
