package models

// Source tags where a keyword candidate was observed.
type Source string

const (
	SourcePostText     Source = "post-text"
	SourceHashtag      Source = "hashtag"
	SourceLLMSuggested Source = "llm-suggested"
)

// frequencyBearing reports whether occurrences of this source are countable.
// Model suggestions are not: the model does not repeat itself meaningfully,
// so one suggestion is not comparable to one textual mention.
func (s Source) frequencyBearing() bool {
	return s == SourcePostText || s == SourceHashtag
}

// KeywordCandidate is a keyword/phrase proposed for SEO evaluation before
// market metrics are attached. Text is normalized (lower-cased, whitespace
// collapsed) and unique within a candidate collection.
type KeywordCandidate struct {
	Text         string   `json:"text"`
	Sources      []Source `json:"sources"`
	MentionCount int      `json:"mention_count"`

	// Discovered preserves the order in which candidates were first seen;
	// it is the final tie-breaker when ranking.
	Discovered int `json:"-"`
}

// HasSource reports whether the candidate carries the given provenance tag.
func (c *KeywordCandidate) HasSource(s Source) bool {
	for _, have := range c.Sources {
		if have == s {
			return true
		}
	}
	return false
}

// AddSource records a provenance tag, keeping the set free of duplicates.
func (c *KeywordCandidate) AddSource(s Source) {
	if !c.HasSource(s) {
		c.Sources = append(c.Sources, s)
	}
}

// HasFrequencySource reports whether any provenance tag carries a countable
// mention frequency.
func (c *KeywordCandidate) HasFrequencySource() bool {
	for _, s := range c.Sources {
		if s.frequencyBearing() {
			return true
		}
	}
	return false
}

// KeywordMetrics carries market data for one keyword. A nil field means the
// provider returned no data for it; absence is a first-class state and must
// never be collapsed into zero.
type KeywordMetrics struct {
	SearchVolume     *int64   `json:"search_volume"`
	Competition      *float64 `json:"competition"`
	CompetitionLevel string   `json:"competition_level,omitempty"`
	CPC              *float64 `json:"cpc"`
	Difficulty       *int     `json:"difficulty"`
}

// IsEmpty reports whether the provider returned nothing usable.
func (m *KeywordMetrics) IsEmpty() bool {
	return m == nil || (m.SearchVolume == nil && m.Competition == nil &&
		m.CompetitionLevel == "" && m.CPC == nil && m.Difficulty == nil)
}

// Opportunity is a candidate after enrichment and scoring, ranked for
// presentation. Metrics is nil when the provider had no data for the keyword.
type Opportunity struct {
	Keyword      string          `json:"keyword"`
	Metrics      *KeywordMetrics `json:"metrics"`
	MentionCount int             `json:"mention_count"`
	Sources      []Source        `json:"sources"`
	Score        float64         `json:"score"`
}
