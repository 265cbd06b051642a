package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"trend-seo/models"
	"trend-seo/utils"
)

// MetricsClient is the keyword-metrics provider boundary. It may be entirely
// unconfigured, which is a documented degraded mode rather than a failure.
type MetricsClient interface {
	Configured() bool
	KeywordMetrics(ctx context.Context, keywords []string) (map[string]*models.KeywordMetrics, error)
}

// Enricher batches the bounded candidate list against the metrics provider.
// Batches run concurrently up to a cap and are throttled to respect the
// provider's rate budget; a batch that keeps failing marks its keywords
// absent instead of aborting the enrichment stage.
type Enricher struct {
	logger         *logrus.Logger
	client         MetricsClient
	batchSize      int
	maxConcurrency int
	limiter        *utils.RateLimiter
	timeout        time.Duration
}

// NewEnricher creates a new Enricher. client may be nil when no provider is
// configured at all.
func NewEnricher(logger *logrus.Logger, client MetricsClient, batchSize, maxConcurrency, rateLimitDelayMs int, timeout time.Duration) *Enricher {
	if batchSize <= 0 {
		batchSize = 20
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Enricher{
		logger:         logger,
		client:         client,
		batchSize:      batchSize,
		maxConcurrency: maxConcurrency,
		limiter:        utils.NewRateLimiter(rateLimitDelayMs),
		timeout:        timeout,
	}
}

// Enrich returns a (possibly partial) mapping from candidate text to metrics
// and whether the provider was available for this run. A keyword absent from
// the map has no market data, which downstream must keep distinguishable
// from zero-valued metrics.
func (e *Enricher) Enrich(ctx context.Context, candidates []*models.KeywordCandidate) (map[string]*models.KeywordMetrics, bool) {
	if e.client == nil || !e.client.Configured() {
		e.logger.Warn("Metrics provider not configured, continuing with mention-only scoring")
		return map[string]*models.KeywordMetrics{}, false
	}
	if len(candidates) == 0 {
		return map[string]*models.KeywordMetrics{}, true
	}

	keywords := make([]string, 0, len(candidates))
	for _, c := range candidates {
		keywords = append(keywords, c.Text)
	}

	var (
		mu        sync.Mutex
		out       = make(map[string]*models.KeywordMetrics)
		succeeded int
		batches   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)

	for start := 0; start < len(keywords); start += e.batchSize {
		end := start + e.batchSize
		if end > len(keywords) {
			end = len(keywords)
		}
		batch := keywords[start:end]
		batches++

		g.Go(func() error {
			if err := e.limiter.Wait(gctx); err != nil {
				e.logger.Warnf("Abandoning metrics batch of %d keywords: %v", len(batch), err)
				return nil
			}

			callCtx := gctx
			if e.timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(gctx, e.timeout)
				defer cancel()
			}

			metrics, err := e.client.KeywordMetrics(callCtx, batch)
			if err != nil {
				// the batch's keywords stay absent; the rest of the run continues
				e.logger.Warnf("Metrics lookup failed for batch of %d keywords: %v", len(batch), err)
				return nil
			}

			mu.Lock()
			for kw, m := range metrics {
				out[kw] = m
			}
			succeeded++
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait() // workers swallow their own errors

	available := succeeded > 0
	if !available {
		e.logger.Warn("All metrics batches failed, continuing with mention-only scoring")
	} else {
		e.logger.Infof("Enriched %d/%d keywords (%d/%d batches succeeded)", len(out), len(keywords), succeeded, batches)
	}
	return out, available
}
