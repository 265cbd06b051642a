package services

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"trend-seo/models"
)

// AssembleInput carries everything the report is built from. GeneratedAt and
// RunID are injected so assembly itself reads no clock and stays
// deterministic for identical inputs.
type AssembleInput struct {
	RunID            string
	GeneratedAt      time.Time
	Params           models.QueryParams
	Posts            []*models.Post
	DroppedRecords   int
	Insight          models.InsightSummary
	Opportunities    []*models.Opportunity
	Best             []*models.Opportunity
	KeywordsAnalyzed int
	MetricsAvailable bool
}

// Assembler merges the pipeline stage outputs into the final report.
type Assembler struct {
	logger      *logrus.Logger
	topPosts    int
	topHashtags int
}

// NewAssembler creates a new Assembler.
func NewAssembler(logger *logrus.Logger, topPosts int) *Assembler {
	if topPosts <= 0 {
		topPosts = 10
	}
	return &Assembler{logger: logger, topPosts: topPosts, topHashtags: 10}
}

// Assemble composes the report. Pure merge/format step: no hidden clock
// reads, no mutation of its inputs.
func (a *Assembler) Assemble(in AssembleInput) *models.Report {
	hashtagStats := make(map[string]int)
	totalEngagement := 0
	for _, p := range in.Posts {
		for _, tag := range p.Hashtags {
			hashtagStats[tag]++
		}
		totalEngagement += p.EngagementScore()
	}

	report := &models.Report{
		RunID:       in.RunID,
		GeneratedAt: in.GeneratedAt,
		QueryParams: in.Params,
		Summary: models.ReportSummary{
			TotalPosts:       len(in.Posts),
			DroppedRecords:   in.DroppedRecords,
			UniqueHashtags:   len(hashtagStats),
			TotalEngagement:  totalEngagement,
			KeywordsAnalyzed: in.KeywordsAnalyzed,
		},
		InsightSummary:           in.Insight,
		Opportunities:            in.Opportunities,
		BestOpportunities:        in.Best,
		TopPosts:                 topPostsByEngagement(in.Posts, a.topPosts),
		HashtagStats:             hashtagStats,
		TopHashtags:              topHashtags(hashtagStats, a.topHashtags),
		MetricsProviderAvailable: in.MetricsAvailable,
	}

	a.logger.Infof("Assembled report %s: %d posts, %d opportunities, %d hashtags",
		report.RunID, len(report.TopPosts), len(report.Opportunities), len(hashtagStats))
	return report
}

// topPostsByEngagement ranks posts by engagement score, ties broken by likes
// then original order, without mutating the input slice.
func topPostsByEngagement(posts []*models.Post, limit int) []*models.Post {
	ranked := append([]*models.Post(nil), posts...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].EngagementScore() != ranked[j].EngagementScore() {
			return ranked[i].EngagementScore() > ranked[j].EngagementScore()
		}
		return ranked[i].Likes > ranked[j].Likes
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// topHashtags ranks tags by occurrence count descending, ties broken
// alphabetically for a deterministic report.
func topHashtags(stats map[string]int, limit int) []models.HashtagStat {
	ranked := make([]models.HashtagStat, 0, len(stats))
	for tag, count := range stats {
		ranked = append(ranked, models.HashtagStat{Tag: tag, Mentions: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Mentions != ranked[j].Mentions {
			return ranked[i].Mentions > ranked[j].Mentions
		}
		return ranked[i].Tag < ranked[j].Tag
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
