// Package cmd wires the command-line interface around the analysis pipeline.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trend-seo/clients"
	"trend-seo/clients/anthropic"
	"trend-seo/clients/dataforseo"
	"trend-seo/clients/twitter"
	"trend-seo/config"
	"trend-seo/models"
	"trend-seo/services"
	"trend-seo/storage"
	"trend-seo/utils"
)

// runAnalysis is swappable so command tests can capture the parsed parameters
// without running the pipeline.
var runAnalysis = analyze

// NewRootCmd returns the root command for the trend-seo CLI.
func NewRootCmd() *cobra.Command {
	var (
		keyword    string
		minLikes   int
		verified   bool
		maxResults int
	)

	rootCmd := &cobra.Command{
		Use:           "trend-seo",
		Short:         "Turn trending posts into ranked SEO keyword opportunities",
		Long:          "trend-seo fetches trending social posts, summarizes them with a language model, enriches extracted keywords with market metrics and writes one ranked opportunity report.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd.Context(), models.QueryParams{
				Keyword:      keyword,
				MinLikes:     minLikes,
				VerifiedOnly: verified,
				MaxResults:   maxResults,
			})
		},
	}

	rootCmd.Flags().StringVar(&keyword, "keyword", "AI", "search keyword or term to find posts about")
	rootCmd.Flags().IntVar(&minLikes, "likes", 100, "minimum number of likes required for posts")
	rootCmd.Flags().BoolVar(&verified, "verified", false, "only include posts from verified authors")
	rootCmd.Flags().IntVar(&maxResults, "max", 10, "maximum number of posts to analyze")

	return rootCmd
}

// analyze runs one full pipeline invocation and persists the report. The
// returned error is already logged; callers only translate it into an exit
// code.
func analyze(ctx context.Context, params models.QueryParams) error {
	// ================== Bootstrap ====================
	logger := utils.NewLogger()
	config.LoadEnv(logger)
	// .env may set LOG_LEVEL, so the level is applied after env loading
	logger.SetLevel(config.LogLevel())
	cfg := config.Load()

	logger.Info("AI Trends Analyzer with SEO Keywords")
	logger.Infof("Keyword: %q | Min likes: %d | Max posts: %d", params.Keyword, params.MinLikes, params.MaxResults)
	logger.Infof("Candidates: %d | Concurrency: %d | Rate delay: %dms | Retries: %d",
		cfg.MaxCandidates, cfg.MaxConcurrency, cfg.RateLimitDelay, cfg.MaxRetries)

	if cfg.TwitterAPIKey == "" {
		logger.Error("TWITTER_API_KEY is required")
		return errors.New("TWITTER_API_KEY is required")
	}

	// =============== Provider clients ===================================
	retryCfg := retryConfig(cfg)

	source := twitter.NewClient(cfg.TwitterAPIKey, cfg.TwitterUserID,
		twitter.WithExecutorConfig(retryCfg))

	summarizer := anthropic.NewClient(cfg.ClaudeAPIKey, cfg.ClaudeModel,
		anthropic.WithBaseURL(cfg.ClaudeAPIURL),
		anthropic.WithMaxTokens(cfg.ClaudeMaxTokens),
		anthropic.WithExecutorConfig(retryCfg))

	metrics := dataforseo.NewClient(cfg.DataForSEOLogin, cfg.DataForSEOPassword,
		dataforseo.WithBaseURL(cfg.DataForSEOAPIURL),
		dataforseo.WithLocale(cfg.LocationName, cfg.LanguageName),
		dataforseo.WithExecutorConfig(retryCfg))

	// =============== Pipeline ===================================
	pipeline := services.NewPipeline(cfg, logger, source, summarizer, metrics)

	report, err := pipeline.Run(ctx, params)
	if err != nil {
		if errors.Is(err, services.ErrNoPosts) {
			logger.Errorf("Nothing to analyze: %v", err)
		} else {
			logger.Errorf("Pipeline failed: %v", err)
		}
		return err
	}

	// ========= Persistence ===========================
	jsonWriter := storage.NewJSONReportWriter(cfg.OutputDir, logger)
	path, err := jsonWriter.SaveReport(report)
	if err != nil {
		logger.Errorf("Failed to save report: %v", err)
		return err
	}

	if cfg.PostsCSVPath != "" {
		csvWriter := storage.NewCSVWriter(cfg.PostsCSVPath, logger)
		if err := csvWriter.SavePosts(report.TopPosts); err != nil {
			logger.Errorf("Failed to write posts CSV: %v", err)
			// Non-fatal: the JSON report is already on disk
		}
	}

	if cfg.DatabaseURL != "" {
		pgWriter, err := storage.NewPostgresWriter(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Errorf("Cannot connect to PostgreSQL: %v", err)
		} else {
			defer pgWriter.Close()
			if err := pgWriter.CreateTable(); err != nil {
				logger.Errorf("Failed to create DB table: %v", err)
			} else if err := pgWriter.SaveOpportunities(report); err != nil {
				logger.Errorf("Failed to insert opportunities: %v", err)
			}
		}
	}

	// ==== Terminal summary ============================
	services.PrintReport(report)

	fmt.Fprintln(os.Stdout, " Done! Full report →", path)
	return nil
}

func retryConfig(cfg *config.Config) clients.ExecutorConfig {
	out := clients.DefaultExecutorConfig()
	out.MaxRetries = cfg.MaxRetries
	return out
}
