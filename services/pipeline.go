package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"trend-seo/config"
	"trend-seo/models"
)

// ErrNoPosts is the single fatal pipeline condition: with zero usable posts
// nothing downstream can produce a meaningful report.
var ErrNoPosts = errors.New("no usable posts to analyze")

// PostSource is the social-media provider boundary. A transient provider
// failure surfaces as an error distinct from zero results.
type PostSource interface {
	Search(ctx context.Context, params models.QueryParams) ([]models.RawPost, error)
}

// Pipeline sequences one analysis run: fetch -> normalize -> (extract ||
// summarize) -> merge -> enrich -> score -> assemble. Every failure except
// ErrNoPosts degrades the affected stage to an explicit empty/absent state
// and the run continues.
type Pipeline struct {
	logger     *logrus.Logger
	source     PostSource
	summarizer Summarizer
	normalizer *Normalizer
	extractor  *Extractor
	enricher   *Enricher
	scorer     *Scorer
	assembler  *Assembler

	fetchTimeout time.Duration
	llmTimeout   time.Duration
	runDeadline  time.Duration
}

// NewPipeline wires the pipeline stages from configuration. summarizer and
// metrics may be nil/unconfigured; the affected stages then run degraded.
func NewPipeline(cfg *config.Config, logger *logrus.Logger, source PostSource, summarizer Summarizer, metrics MetricsClient) *Pipeline {
	weights := ScoreWeights{
		Volume:      cfg.VolumeWeight,
		Mention:     cfg.MentionWeight,
		Competition: cfg.CompetitionWeight,
	}
	return &Pipeline{
		logger:       logger,
		source:       source,
		summarizer:   summarizer,
		normalizer:   NewNormalizer(logger),
		extractor:    NewExtractor(logger, cfg.MaxCandidates),
		enricher:     NewEnricher(logger, metrics, cfg.MetricsBatchSize, cfg.MaxConcurrency, cfg.RateLimitDelay, cfg.MetricsTimeout),
		scorer:       NewScorer(logger, weights, cfg.BestOpportunityN),
		assembler:    NewAssembler(logger, cfg.TopPostsN),
		fetchTimeout: cfg.FetchTimeout,
		llmTimeout:   cfg.LLMTimeout,
		runDeadline:  cfg.RunDeadline,
	}
}

// Run executes one pipeline invocation and returns the assembled report.
// The only error it returns is the fatal zero-posts condition (or the post
// source failing outright); persistence of the report is the caller's job.
func (p *Pipeline) Run(ctx context.Context, params models.QueryParams) (*models.Report, error) {
	if p.runDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.runDeadline)
		defer cancel()
	}

	p.logger.Infof("Fetching posts for %q with %d+ likes", params.Keyword, params.MinLikes)
	fetchCtx := ctx
	if p.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.fetchTimeout)
		defer cancel()
	}
	raw, err := p.source.Search(fetchCtx, params)
	if err != nil {
		return nil, fmt.Errorf("fetching posts: %w", err)
	}

	posts, dropped := p.normalizer.Normalize(raw, params)
	if len(posts) == 0 {
		return nil, fmt.Errorf("%w: %d records fetched, %d dropped", ErrNoPosts, len(raw), dropped)
	}

	// Text extraction and the language-model call only need normalized
	// posts, so they run concurrently.
	var textCands []*models.KeywordCandidate
	insight := models.EmptyInsightSummary()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		textCands = p.extractor.FromPosts(posts)
		return nil
	})
	g.Go(func() error {
		insight = p.summarize(gctx, posts)
		return nil
	})
	_ = g.Wait() // both stages degrade instead of erroring

	candidates := p.extractor.Merge(textCands, p.extractor.FromInsight(insight))
	metrics, available := p.enricher.Enrich(ctx, candidates)
	opportunities, best := p.scorer.Rank(candidates, metrics)

	return p.assembler.Assemble(AssembleInput{
		RunID:            uuid.NewString(),
		GeneratedAt:      time.Now().UTC(),
		Params:           params,
		Posts:            posts,
		DroppedRecords:   dropped,
		Insight:          insight,
		Opportunities:    opportunities,
		Best:             best,
		KeywordsAnalyzed: len(candidates),
		MetricsAvailable: available,
	}), nil
}

// summarize runs the language-model call with its own timeout. Any failure
// (unconfigured, transport, timeout, unparseable output) degrades to an
// all-empty summary; it never aborts the run.
func (p *Pipeline) summarize(ctx context.Context, posts []*models.Post) models.InsightSummary {
	if p.summarizer == nil || !p.summarizer.Configured() {
		p.logger.Warn("Language model not configured, continuing without insight")
		return models.EmptyInsightSummary()
	}

	if p.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.llmTimeout)
		defer cancel()
	}

	raw, err := p.summarizer.Complete(ctx, BuildInsightPrompt(posts))
	if err != nil {
		p.logger.Warnf("Language model call failed, continuing without insight: %v", err)
		return models.EmptyInsightSummary()
	}

	summary := ParseInsightSummary(raw)
	if summary.IsEmpty() {
		p.logger.Warn("Language model response had no parseable sections")
	}
	return summary
}
