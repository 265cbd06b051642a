package services

import (
	"sort"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"trend-seo/models"
)

const (
	minKeywordLen = 3
	maxKeywordLen = 50

	// selection weights used when bounding candidates before enrichment:
	// observed textual frequency is a stronger signal than a bare model
	// suggestion, which counts once.
	selectFrequencyWeight = 2
	selectLLMBonus        = 1
)

// Extractor derives keyword candidates from post text, hashtags and the
// language model's suggestions, and merges them into one bounded collection.
type Extractor struct {
	logger        *logrus.Logger
	maxCandidates int
}

// NewExtractor creates a new Extractor. maxCandidates bounds the number of
// external metrics lookups a run can trigger.
func NewExtractor(logger *logrus.Logger, maxCandidates int) *Extractor {
	if maxCandidates <= 0 {
		maxCandidates = 50
	}
	return &Extractor{logger: logger, maxCandidates: maxCandidates}
}

// FromPosts runs the text/hashtag pass: every retained token of every post
// counts one mention with provenance post-text, every hashtag one mention
// with provenance hashtag. Occurrences of the same normalized text are
// summed.
func (e *Extractor) FromPosts(posts []*models.Post) []*models.KeywordCandidate {
	set := newCandidateSet()
	for _, p := range posts {
		for _, token := range tokenize(p.Text) {
			set.add(token, models.SourcePostText, 1)
		}
		// hashtags are deliberate labels, so unlike text tokens they are
		// kept even when very short ("ai", "ml")
		for _, tag := range p.Hashtags {
			if tag != "" && withinMaxLen(tag) {
				set.add(tag, models.SourceHashtag, 1)
			}
		}
	}
	cands := set.ordered()
	e.logger.Debugf("Text/hashtag pass produced %d candidates", len(cands))
	return cands
}

// FromInsight runs the model-suggestion pass: each suggested keyword counts
// once with provenance llm-suggested. Model mentions are not comparable to
// textual frequency, so the count stays 1 regardless of repetition.
func (e *Extractor) FromInsight(summary models.InsightSummary) []*models.KeywordCandidate {
	set := newCandidateSet()
	for _, kw := range summary.SuggestedKeywords {
		text := normalizeKeywordText(kw)
		if text != "" && withinMaxLen(text) {
			set.add(text, models.SourceLLMSuggested, 1)
		}
	}
	cands := set.ordered()
	e.logger.Debugf("Model-suggestion pass produced %d candidates", len(cands))
	return cands
}

// Merge unions candidate collections by normalized text and bounds the result
// to the top-N by selection signal. The union is idempotent: merging the same
// collection in twice changes nothing, since frequency counts are already
// totals per collection, and a model suggestion never inflates the mention
// count of a candidate that carries textual frequency.
func (e *Extractor) Merge(lists ...[]*models.KeywordCandidate) []*models.KeywordCandidate {
	merged := make(map[string]*models.KeywordCandidate)
	var order []*models.KeywordCandidate

	for _, list := range lists {
		for _, cand := range list {
			have, ok := merged[cand.Text]
			if !ok {
				clone := &models.KeywordCandidate{
					Text:         cand.Text,
					Sources:      append([]models.Source(nil), cand.Sources...),
					MentionCount: cand.MentionCount,
					Discovered:   len(order),
				}
				merged[cand.Text] = clone
				order = append(order, clone)
				continue
			}
			for _, s := range cand.Sources {
				have.AddSource(s)
			}
			if cand.HasFrequencySource() {
				if !have.HasFrequencySource() || cand.MentionCount > have.MentionCount {
					have.MentionCount = cand.MentionCount
				}
			}
		}
	}

	if len(order) <= e.maxCandidates {
		return order
	}

	selected := append([]*models.KeywordCandidate(nil), order...)
	sort.SliceStable(selected, func(i, j int) bool {
		return selectionSignal(selected[i]) > selectionSignal(selected[j])
	})
	selected = selected[:e.maxCandidates]
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].Discovered < selected[j].Discovered
	})
	e.logger.Infof("Bounded candidates to top %d of %d", e.maxCandidates, len(order))
	return selected
}

func selectionSignal(c *models.KeywordCandidate) int {
	signal := 0
	if c.HasFrequencySource() {
		signal += selectFrequencyWeight * c.MentionCount
	}
	if c.HasSource(models.SourceLLMSuggested) {
		signal += selectLLMBonus
	}
	return signal
}

// candidateSet accumulates mention counts by normalized text, preserving
// discovery order.
type candidateSet struct {
	byText map[string]*models.KeywordCandidate
	order  []*models.KeywordCandidate
}

func newCandidateSet() *candidateSet {
	return &candidateSet{byText: make(map[string]*models.KeywordCandidate)}
}

func (s *candidateSet) add(text string, source models.Source, count int) {
	cand, ok := s.byText[text]
	if !ok {
		cand = &models.KeywordCandidate{Text: text, Discovered: len(s.order)}
		s.byText[text] = cand
		s.order = append(s.order, cand)
	}
	cand.AddSource(source)
	if source == models.SourceLLMSuggested {
		if cand.MentionCount == 0 {
			cand.MentionCount = 1
		}
		return
	}
	cand.MentionCount += count
}

func (s *candidateSet) ordered() []*models.KeywordCandidate {
	return s.order
}

// normalizeKeywordText lower-cases, trims and collapses whitespace.
func normalizeKeywordText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func keywordLengthOK(text string) bool {
	return len([]rune(text)) >= minKeywordLen && withinMaxLen(text)
}

func withinMaxLen(text string) bool {
	return len([]rune(text)) < maxKeywordLen
}

// tokenize splits post text into candidate tokens: lower-cased words of
// letters/digits, short and stop words removed, URLs and pure numbers
// skipped.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-' && r != '\''
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-'")
		if !keywordLengthOK(f) {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		if isNumeric(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// stopWords are tokens too common to be keyword candidates, plus web noise
// left behind by URL-heavy post text.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "are", "but", "not", "you", "your", "yours",
		"all", "any", "can", "had", "has", "have", "her", "him", "his",
		"how", "its", "it's", "new", "now", "one", "our", "ours", "out",
		"she", "they", "them", "their", "theirs", "this", "that", "these",
		"those", "was", "were", "will", "would", "could", "should", "what",
		"when", "where", "which", "while", "who", "why", "with", "from",
		"been", "being", "into", "just", "like", "more", "most", "much",
		"some", "such", "than", "then", "there", "very", "about", "after",
		"before", "over", "under", "only", "other", "also", "get", "got",
		"here", "via", "per", "don't", "doesn't", "it'll", "we're",
		"http", "https", "www", "com",
	} {
		stopWords[w] = struct{}{}
	}
}
