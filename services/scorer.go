package services

import (
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"trend-seo/models"
)

// scoreEpsilon is the band within which two scores count as tied and the
// tie-break chain applies.
const scoreEpsilon = 1e-9

// ScoreWeights control how market demand, social traction and competition
// combine into an opportunity score. Volume >= Mention >= Competition is the
// intended ordering: verified demand matters most, then observed traction,
// then the competition penalty.
type ScoreWeights struct {
	Volume      float64
	Mention     float64
	Competition float64
}

// DefaultScoreWeights returns the documented default weighting.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Volume: 0.5, Mention: 0.3, Competition: 0.2}
}

// Scorer turns enriched candidates into a ranked opportunity list.
type Scorer struct {
	logger    *logrus.Logger
	weights   ScoreWeights
	bestLimit int
}

// NewScorer creates a new Scorer. bestLimit caps the best-opportunities
// subset of the report.
func NewScorer(logger *logrus.Logger, weights ScoreWeights, bestLimit int) *Scorer {
	if weights == (ScoreWeights{}) {
		weights = DefaultScoreWeights()
	}
	if bestLimit <= 0 {
		bestLimit = 10
	}
	return &Scorer{logger: logger, weights: weights, bestLimit: bestLimit}
}

// Rank scores every candidate and returns the full ranking plus the
// best-opportunities subset. Search volume and mention count are log-scaled
// against the run's maxima since raw volume spans orders of magnitude; a
// candidate with no market data keeps its mention signal as a floor but
// cannot outrank verified demand on the volume term.
//
// Ties within scoreEpsilon break by higher search volume, then by more
// provenance tags, then by discovery order. The result is deterministic for
// identical inputs.
func (s *Scorer) Rank(candidates []*models.KeywordCandidate, metrics map[string]*models.KeywordMetrics) (all, best []*models.Opportunity) {
	maxVolume := int64(0)
	maxMentions := 0
	for _, c := range candidates {
		if m := metrics[c.Text]; m != nil && m.SearchVolume != nil && *m.SearchVolume > maxVolume {
			maxVolume = *m.SearchVolume
		}
		if c.MentionCount > maxMentions {
			maxMentions = c.MentionCount
		}
	}

	type ranked struct {
		opp        *models.Opportunity
		volume     int64
		discovered int
	}

	rankedOpps := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		m := metrics[c.Text]
		volume := int64(0)
		if m != nil && m.SearchVolume != nil {
			volume = *m.SearchVolume
		}

		score := s.weights.Volume*logNorm(float64(volume), float64(maxVolume)) +
			s.weights.Mention*logNorm(float64(c.MentionCount), float64(maxMentions)) -
			s.weights.Competition*competitionPenalty(m)

		rankedOpps = append(rankedOpps, ranked{
			opp: &models.Opportunity{
				Keyword:      c.Text,
				Metrics:      m,
				MentionCount: c.MentionCount,
				Sources:      append([]models.Source(nil), c.Sources...),
				Score:        score,
			},
			volume:     volume,
			discovered: c.Discovered,
		})
	}

	sort.SliceStable(rankedOpps, func(i, j int) bool {
		a, b := rankedOpps[i], rankedOpps[j]
		switch {
		case a.opp.Score-b.opp.Score > scoreEpsilon:
			return true
		case b.opp.Score-a.opp.Score > scoreEpsilon:
			return false
		case a.volume != b.volume:
			return a.volume > b.volume
		case len(a.opp.Sources) != len(b.opp.Sources):
			return len(a.opp.Sources) > len(b.opp.Sources)
		default:
			return a.discovered < b.discovered
		}
	})

	all = make([]*models.Opportunity, 0, len(rankedOpps))
	for _, r := range rankedOpps {
		all = append(all, r.opp)
	}

	// Best opportunities require market data whenever any candidate got
	// metrics this run; with the provider fully absent the mention-only
	// ranking stands as-is.
	anyMetrics := len(metrics) > 0
	best = make([]*models.Opportunity, 0, s.bestLimit)
	for _, opp := range all {
		if anyMetrics && opp.Metrics == nil {
			continue
		}
		best = append(best, opp)
		if len(best) >= s.bestLimit {
			break
		}
	}

	s.logger.Debugf("Ranked %d opportunities (%d best)", len(all), len(best))
	return all, best
}

// logNorm maps x onto [0,1] relative to the run maximum on a log scale.
func logNorm(x, max float64) float64 {
	if x <= 0 || max <= 0 {
		return 0
	}
	return math.Log1p(x) / math.Log1p(max)
}

// competitionPenalty derives a [0,1] penalty from whichever competition
// signal the provider returned: the numeric score when present, else the
// categorical level, else scaled difficulty. No data means no penalty.
func competitionPenalty(m *models.KeywordMetrics) float64 {
	if m == nil {
		return 0
	}
	if m.Competition != nil {
		return clamp01(*m.Competition)
	}
	switch strings.ToUpper(m.CompetitionLevel) {
	case "LOW":
		return 0.33
	case "MEDIUM":
		return 0.66
	case "HIGH":
		return 1.0
	}
	if m.Difficulty != nil {
		return clamp01(float64(*m.Difficulty) / 100)
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
