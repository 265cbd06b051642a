package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trend-seo/config"
	"trend-seo/models"
)

type fakeSource struct {
	posts []models.RawPost
	err   error
}

func (f *fakeSource) Search(_ context.Context, _ models.QueryParams) ([]models.RawPost, error) {
	return f.posts, f.err
}

type fakeSummarizer struct {
	configured bool
	response   string
	err        error
	delay      time.Duration
}

func (f *fakeSummarizer) Configured() bool { return f.configured }

func (f *fakeSummarizer) Complete(ctx context.Context, _ string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.response, f.err
}

type fakeMetrics struct {
	configured bool
	metrics    map[string]*models.KeywordMetrics
	err        error
	calls      int
}

func (f *fakeMetrics) Configured() bool { return f.configured }

func (f *fakeMetrics) KeywordMetrics(_ context.Context, keywords []string) (map[string]*models.KeywordMetrics, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]*models.KeywordMetrics)
	for _, kw := range keywords {
		if m, ok := f.metrics[kw]; ok {
			out[kw] = m
		}
	}
	return out, nil
}

func testConfig() *config.Config {
	return &config.Config{
		MaxCandidates:    50,
		BestOpportunityN: 10,
		TopPostsN:        10,
		MetricsBatchSize: 20,
		MaxConcurrency:   2,
		RateLimitDelay:   0,
		FetchTimeout:     time.Second,
		LLMTimeout:       50 * time.Millisecond,
		MetricsTimeout:   time.Second,
		RunDeadline:      5 * time.Second,
	}
}

func rawPost(id, text string, likes int, hashtags ...string) models.RawPost {
	return models.RawPost{
		ID:           id,
		Text:         text,
		AuthorHandle: "someone",
		Likes:        likes,
		Hashtags:     hashtags,
		CreatedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPipelineHappyPath(t *testing.T) {
	source := &fakeSource{posts: []models.RawPost{
		rawPost("1", "chatgpt is changing search", 150, "#chatgpt", "#ai"),
		rawPost("2", "nothing to see", 80, "#chatgpt"),
		rawPost("3", "chatgpt plugins are here", 300, "#chatgpt"),
	}}
	summarizer := &fakeSummarizer{
		configured: true,
		response:   `{"topics":["conversational search"],"trends":["plugins"],"technologies":["chatgpt"],"keywords":["chatgpt plugins"]}`,
	}
	volume := int64(40000)
	metrics := &fakeMetrics{
		configured: true,
		metrics: map[string]*models.KeywordMetrics{
			"chatgpt": {SearchVolume: &volume},
		},
	}

	p := NewPipeline(testConfig(), testLogger(), source, summarizer, metrics)
	report, err := p.Run(context.Background(), models.QueryParams{Keyword: "chatgpt", MinLikes: 100})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Summary.TotalPosts, "the 80-like post is filtered out")
	assert.Equal(t, 2, report.HashtagStats["chatgpt"])
	assert.True(t, report.MetricsProviderAvailable)
	assert.NotEmpty(t, report.Opportunities)
	assert.Contains(t, report.InsightSummary.SuggestedKeywords, "chatgpt plugins")

	var chatgpt *models.Opportunity
	for _, o := range report.Opportunities {
		if o.Keyword == "chatgpt" {
			chatgpt = o
		}
	}
	require.NotNil(t, chatgpt)
	require.NotNil(t, chatgpt.Metrics)
	assert.Equal(t, volume, *chatgpt.Metrics.SearchVolume)
	assert.Equal(t, "chatgpt", report.Opportunities[0].Keyword, "only enriched keyword must rank first")
}

func TestPipelineSourceErrorIsFatal(t *testing.T) {
	source := &fakeSource{err: errors.New("upstream 500")}
	p := NewPipeline(testConfig(), testLogger(), source, &fakeSummarizer{}, &fakeMetrics{})

	_, err := p.Run(context.Background(), models.QueryParams{Keyword: "ai"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoPosts)
}

func TestPipelineZeroPostsIsErrNoPosts(t *testing.T) {
	source := &fakeSource{posts: []models.RawPost{
		{ID: "", Text: "missing id"},
		rawPost("1", "below threshold", 10),
	}}
	p := NewPipeline(testConfig(), testLogger(), source, &fakeSummarizer{}, &fakeMetrics{})

	_, err := p.Run(context.Background(), models.QueryParams{Keyword: "ai", MinLikes: 100})
	require.ErrorIs(t, err, ErrNoPosts)
}

func TestPipelineDegradesOnSummarizerTimeout(t *testing.T) {
	source := &fakeSource{posts: []models.RawPost{
		rawPost("1", "serverless platforms are trending", 200, "#serverless"),
	}}
	summarizer := &fakeSummarizer{
		configured: true,
		response:   `{"keywords":["should never arrive"]}`,
		delay:      500 * time.Millisecond, // past the 50ms llm timeout
	}

	p := NewPipeline(testConfig(), testLogger(), source, summarizer, &fakeMetrics{})
	report, err := p.Run(context.Background(), models.QueryParams{Keyword: "serverless", MinLikes: 100})
	require.NoError(t, err)

	assert.Empty(t, report.InsightSummary.SuggestedKeywords)
	assert.NotEmpty(t, report.Opportunities, "text candidates survive an insight failure")
}

func TestPipelineDegradesOnUnconfiguredProviders(t *testing.T) {
	source := &fakeSource{posts: []models.RawPost{
		rawPost("1", "rust adoption keeps growing", 500, "#rustlang"),
	}}

	p := NewPipeline(testConfig(), testLogger(), source, &fakeSummarizer{configured: false}, &fakeMetrics{configured: false})
	report, err := p.Run(context.Background(), models.QueryParams{Keyword: "rust", MinLikes: 100})
	require.NoError(t, err)

	assert.False(t, report.MetricsProviderAvailable)
	assert.True(t, report.InsightSummary.IsEmpty())
	require.NotEmpty(t, report.Opportunities)
	for _, o := range report.Opportunities {
		assert.Nil(t, o.Metrics, "no provider means every opportunity stays unenriched")
	}
	assert.Equal(t, len(report.Opportunities), len(report.BestOpportunities),
		"mention-only ranking stands when the provider was never there")
}

func TestPipelineContinuesOnMetricsFailure(t *testing.T) {
	source := &fakeSource{posts: []models.RawPost{
		rawPost("1", "observability tooling everywhere", 150, "#observability"),
	}}
	metrics := &fakeMetrics{configured: true, err: errors.New("quota exceeded")}

	p := NewPipeline(testConfig(), testLogger(), source, &fakeSummarizer{}, metrics)
	report, err := p.Run(context.Background(), models.QueryParams{Keyword: "observability", MinLikes: 100})
	require.NoError(t, err)

	assert.False(t, report.MetricsProviderAvailable, "configured but all batches failed")
	assert.NotEmpty(t, report.Opportunities)
}
