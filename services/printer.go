package services

import (
	"fmt"
	"strings"

	"trend-seo/models"
)

// PrintReport formats and prints the report summary to the terminal.
func PrintReport(report *models.Report) {
	border := strings.Repeat("═", 60)
	thin := strings.Repeat("─", 60)

	fmt.Printf("\n╔%s╗\n", border)
	fmt.Printf("║%s║\n", center("TREND & SEO OPPORTUNITY REPORT", 60))
	fmt.Printf("╚%s╝\n", border)

	fmt.Printf("\n OVERVIEW\n%s\n", thin)
	fmt.Printf("  Query                   : %q (min likes %d)\n", report.QueryParams.Keyword, report.QueryParams.MinLikes)
	fmt.Printf("  Posts Analyzed          : %d\n", report.Summary.TotalPosts)
	fmt.Printf("  Dropped Records         : %d\n", report.Summary.DroppedRecords)
	fmt.Printf("  Unique Hashtags         : %d\n", report.Summary.UniqueHashtags)
	fmt.Printf("  Total Engagement        : %d\n", report.Summary.TotalEngagement)
	fmt.Printf("  Keywords Analyzed       : %d\n", report.Summary.KeywordsAnalyzed)
	if !report.MetricsProviderAvailable {
		fmt.Printf("  Metrics Provider        : unavailable (mention-only ranking)\n")
	}

	if !report.InsightSummary.IsEmpty() {
		fmt.Printf("\n AI INSIGHTS\n%s\n", thin)
		printInsightLine("Themes", report.InsightSummary.Themes)
		printInsightLine("Emerging Trends", report.InsightSummary.EmergingTrends)
		printInsightLine("Key Technologies", report.InsightSummary.KeyTechnologies)
	}

	if len(report.BestOpportunities) > 0 {
		fmt.Printf("\n TOP %d KEYWORD OPPORTUNITIES\n%s\n", len(report.BestOpportunities), thin)
		for i, opp := range report.BestOpportunities {
			fmt.Printf("  %2d. %-32s Volume: %8s | Comp: %5s | Diff: %4s | Score: %.3f\n",
				i+1, truncate(opp.Keyword, 32),
				formatVolume(opp.Metrics),
				formatCompetition(opp.Metrics),
				formatDifficulty(opp.Metrics),
				opp.Score)
		}
	}

	if len(report.TopHashtags) > 0 {
		fmt.Printf("\n TOP HASHTAGS\n%s\n", thin)
		for _, stat := range report.TopHashtags {
			bar := strings.Repeat("▓", stat.Mentions)
			fmt.Printf("  #%-25s %3d  %s\n", stat.Tag, stat.Mentions, bar)
		}
	}

	if len(report.TopPosts) > 0 {
		fmt.Printf("\n TOP %d POSTS BY ENGAGEMENT\n%s\n", len(report.TopPosts), thin)
		for i, p := range report.TopPosts {
			fmt.Printf("  %2d. @%-20s %6d likes %6d reposts  %s\n",
				i+1, truncate(p.AuthorHandle, 20), p.Likes, p.Reposts, truncate(p.Text, 50))
		}
	}

	fmt.Printf("\n%s\n\n", border)
}

func printInsightLine(label string, items []string) {
	if len(items) == 0 {
		return
	}
	shown := items
	if len(shown) > 3 {
		shown = shown[:3]
	}
	fmt.Printf("  %-17s: %s\n", label, strings.Join(shown, ", "))
}

func formatVolume(m *models.KeywordMetrics) string {
	if m == nil || m.SearchVolume == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *m.SearchVolume)
}

func formatCompetition(m *models.KeywordMetrics) string {
	if m == nil {
		return "N/A"
	}
	if m.Competition != nil {
		return fmt.Sprintf("%.2f", *m.Competition)
	}
	if m.CompetitionLevel != "" {
		return strings.ToLower(m.CompetitionLevel)
	}
	return "N/A"
}

func formatDifficulty(m *models.KeywordMetrics) string {
	if m == nil || m.Difficulty == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *m.Difficulty)
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
