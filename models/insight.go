package models

// InsightSummary holds the structured sections extracted from the language
// model's free-text response. Parsing is best-effort: a section the model did
// not produce is an empty slice, never an error.
type InsightSummary struct {
	Themes            []string `json:"themes"`
	EmergingTrends    []string `json:"emerging_trends"`
	KeyTechnologies   []string `json:"key_technologies"`
	SuggestedKeywords []string `json:"suggested_keywords"`
}

// EmptyInsightSummary returns a summary with all sections present but empty,
// so a degraded run still serializes every section as [].
func EmptyInsightSummary() InsightSummary {
	return InsightSummary{
		Themes:            []string{},
		EmergingTrends:    []string{},
		KeyTechnologies:   []string{},
		SuggestedKeywords: []string{},
	}
}

// IsEmpty reports whether no section carries any content.
func (s InsightSummary) IsEmpty() bool {
	return len(s.Themes) == 0 && len(s.EmergingTrends) == 0 &&
		len(s.KeyTechnologies) == 0 && len(s.SuggestedKeywords) == 0
}
