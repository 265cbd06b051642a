// Package clients provides the shared retry machinery for the external
// provider clients. Every outgoing call goes through a failsafe executor with
// bounded exponential backoff, so a transient provider failure is retried a
// fixed number of times before it is reported to the pipeline's degradation
// policy.
package clients

import (
	"context"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// ShouldRetry determines if an HTTP request should be retried.
// Retries on network errors, server errors (5xx), and rate limits (429).
func ShouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return true
	}
	switch resp.StatusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

// ExecutorConfig configures the retry executor shared by the API clients.
type ExecutorConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// ShouldRetry determines if a response should trigger a retry
	ShouldRetry func(resp *http.Response, err error) bool
}

// DefaultExecutorConfig returns sensible defaults
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxRetries:  3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		ShouldRetry: ShouldRetry,
	}
}

func normalizeExecutorConfig(cfg ExecutorConfig) ExecutorConfig {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 10 * time.Second
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = ShouldRetry
	}
	return cfg
}

// NewHTTPExecutor creates a failsafe executor for HTTP requests with
// exponential backoff and jitter.
//
//nolint:bodyclose // false positive: [*http.Response] is a generic type parameter, not an actual response
func NewHTTPExecutor(cfg ExecutorConfig) failsafe.Executor[*http.Response] {
	cfg = normalizeExecutorConfig(cfg)
	retry := retrypolicy.NewBuilder[*http.Response]().
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(func(resp *http.Response, err error) bool {
			return cfg.ShouldRetry(resp, err)
		}).
		Build()
	return failsafe.With(retry)
}

// Do runs an HTTP request through the executor, rebuilding the request on
// every attempt and draining the body of responses that are about to be
// retried.
func Do(
	ctx context.Context,
	client *http.Client,
	executor failsafe.Executor[*http.Response],
	shouldRetry func(resp *http.Response, err error) bool,
	build func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if executor == nil {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		return client.Do(req)
	}
	if shouldRetry == nil {
		shouldRetry = ShouldRetry
	}

	return executor.WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if shouldRetry(resp, err) {
			if resp != nil && resp.Body != nil {
				_ = resp.Body.Close()
			}
		}
		return resp, err
	})
}
