package models

import "time"

// ReportSummary aggregates run-level counters for the report header.
type ReportSummary struct {
	TotalPosts       int `json:"total_posts"`
	DroppedRecords   int `json:"dropped_records"`
	UniqueHashtags   int `json:"unique_hashtags"`
	TotalEngagement  int `json:"total_engagement"`
	KeywordsAnalyzed int `json:"keywords_analyzed"`
}

// HashtagStat is one entry of the ranked hashtag list.
type HashtagStat struct {
	Tag      string `json:"tag"`
	Mentions int    `json:"mentions"`
}

// Report is the sole externally visible artifact of a pipeline run.
// Assembled once, written once, never mutated afterward.
type Report struct {
	RunID                    string         `json:"run_id"`
	GeneratedAt              time.Time      `json:"generated_at"`
	QueryParams              QueryParams    `json:"query_params"`
	Summary                  ReportSummary  `json:"summary"`
	InsightSummary           InsightSummary `json:"insight_summary"`
	Opportunities            []*Opportunity `json:"opportunities"`
	BestOpportunities        []*Opportunity `json:"best_opportunities"`
	TopPosts                 []*Post        `json:"top_posts"`
	HashtagStats             map[string]int `json:"hashtag_stats"`
	TopHashtags              []HashtagStat  `json:"top_hashtags"`
	MetricsProviderAvailable bool           `json:"metrics_provider_available"`
}
