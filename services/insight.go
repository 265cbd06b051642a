package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"trend-seo/models"
)

// Summarizer is the language-model collaborator boundary. The response is an
// untyped free-text payload; ParseInsightSummary turns it into structured
// sections best-effort.
type Summarizer interface {
	Configured() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	maxPromptPosts    = 10
	maxPromptTextLen  = 200
	maxPromptHashtags = 5
)

// BuildInsightPrompt renders the normalized posts into the analysis prompt.
// The model is asked for JSON but the parser tolerates headed plain text too.
func BuildInsightPrompt(posts []*models.Post) string {
	var sb strings.Builder
	for i, p := range posts {
		if i >= maxPromptPosts {
			break
		}
		text := p.Text
		// rune-wise so a multi-byte character is never split mid-sequence
		if runes := []rune(text); len(runes) > maxPromptTextLen {
			text = string(runes[:maxPromptTextLen])
		}
		tags := p.Hashtags
		if len(tags) > maxPromptHashtags {
			tags = tags[:maxPromptHashtags]
		}
		fmt.Fprintf(&sb, "%d. %s (%d likes, hashtags: %s)\n", i+1, text, p.Likes, strings.Join(tags, ", "))
	}

	return fmt.Sprintf(`Analyze these trending posts and extract:
1. Main topics/themes (as array)
2. Emerging trends (as array)
3. Key technologies mentioned (as array)
4. Recommended SEO keywords (as array)

Posts:
%s
Return ONLY valid JSON with keys: topics, trends, technologies, keywords
Each should be an array of strings.`, sb.String())
}

// ParseInsightSummary extracts the four insight sections from the model's
// free-text response. It first looks for an embedded JSON object, then falls
// back to headed bullet lists. Sections that cannot be recovered stay empty;
// parsing never fails.
func ParseInsightSummary(raw string) models.InsightSummary {
	summary := models.EmptyInsightSummary()
	if strings.TrimSpace(raw) == "" {
		return summary
	}

	if parsed, ok := parseJSONInsight(raw); ok {
		return parsed
	}
	return parseHeadedInsight(raw)
}

type jsonInsight struct {
	Topics       []string `json:"topics"`
	Themes       []string `json:"themes"`
	Trends       []string `json:"trends"`
	Technologies []string `json:"technologies"`
	Keywords     []string `json:"keywords"`
}

// parseJSONInsight extracts the outermost JSON object from the response, the
// way the model usually answers when asked for JSON.
func parseJSONInsight(raw string) (models.InsightSummary, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return models.InsightSummary{}, false
	}

	var parsed jsonInsight
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return models.InsightSummary{}, false
	}

	summary := models.EmptyInsightSummary()
	summary.Themes = appendClean(summary.Themes, parsed.Topics...)
	summary.Themes = appendClean(summary.Themes, parsed.Themes...)
	summary.EmergingTrends = appendClean(summary.EmergingTrends, parsed.Trends...)
	summary.KeyTechnologies = appendClean(summary.KeyTechnologies, parsed.Technologies...)
	summary.SuggestedKeywords = appendClean(summary.SuggestedKeywords, parsed.Keywords...)
	if summary.IsEmpty() {
		return models.InsightSummary{}, false
	}
	return summary, true
}

var bulletRe = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*(.+)$`)

// parseHeadedInsight reads the section-header convention: a line naming a
// section ("Topics:", "Emerging trends:", ...) followed by bullet items.
// Items on the header line itself, comma-separated, are also accepted.
func parseHeadedInsight(raw string) models.InsightSummary {
	summary := models.EmptyInsightSummary()
	var current *[]string

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if section, rest := matchSectionHeader(trimmed); section != "" {
			switch section {
			case "themes":
				current = &summary.Themes
			case "trends":
				current = &summary.EmergingTrends
			case "technologies":
				current = &summary.KeyTechnologies
			case "keywords":
				current = &summary.SuggestedKeywords
			}
			if rest != "" {
				*current = appendClean(*current, strings.Split(rest, ",")...)
			}
			continue
		}

		if current == nil {
			continue
		}
		if m := bulletRe.FindStringSubmatch(trimmed); m != nil {
			*current = appendClean(*current, m[1])
		}
	}
	return summary
}

// matchSectionHeader reports which insight section a line introduces, if
// any, plus inline content after the colon.
func matchSectionHeader(line string) (section, rest string) {
	trimmed := strings.TrimLeft(line, "#*- \t")
	headRaw := trimmed
	if idx := strings.Index(trimmed, ":"); idx >= 0 {
		headRaw = trimmed[:idx]
		rest = strings.TrimSpace(trimmed[idx+1:])
	} else if len(strings.Fields(trimmed)) > 4 {
		// prose line, not a bare header
		return "", ""
	}
	// lowered only for matching; slicing stays on the original bytes since
	// ToLower can change byte lengths outside ASCII
	head := strings.ToLower(headRaw)

	switch {
	case strings.Contains(head, "topic"), strings.Contains(head, "theme"):
		return "themes", rest
	case strings.Contains(head, "trend"):
		return "trends", rest
	case strings.Contains(head, "technolog"):
		return "technologies", rest
	case strings.Contains(head, "keyword"):
		return "keywords", rest
	}
	return "", ""
}

// appendClean adds trimmed, non-empty, deduplicated entries.
func appendClean(dst []string, items ...string) []string {
	for _, item := range items {
		item = strings.TrimSpace(strings.Trim(strings.TrimSpace(item), `"'`))
		if item == "" {
			continue
		}
		dup := false
		for _, have := range dst {
			if strings.EqualFold(have, item) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, item)
		}
	}
	return dst
}
