package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all application-level configuration
type Config struct {
	// Post source (twitterapi.io)
	TwitterAPIKey string
	TwitterUserID string

	// Language model (Anthropic)
	ClaudeAPIKey    string
	ClaudeAPIURL    string
	ClaudeModel     string
	ClaudeMaxTokens int

	// Keyword metrics provider (DataForSEO)
	DataForSEOLogin    string
	DataForSEOPassword string
	DataForSEOAPIURL   string
	LocationName       string
	LanguageName       string

	// Pipeline tuning
	MaxCandidates    int // bound on metrics lookups per run
	BestOpportunityN int // size of the best-opportunities subset
	TopPostsN        int
	MetricsBatchSize int
	MaxConcurrency   int
	RateLimitDelay   int // milliseconds between provider calls
	MaxRetries       int

	// Timeouts
	FetchTimeout   time.Duration
	LLMTimeout     time.Duration
	MetricsTimeout time.Duration
	RunDeadline    time.Duration

	// Scoring weights (volume >= mention >= competition is the intended
	// ordering; see services.DefaultScoreWeights)
	VolumeWeight      float64
	MentionWeight     float64
	CompetitionWeight float64

	// Output
	OutputDir    string
	PostsCSVPath string // empty disables the raw post dump
	DatabaseURL  string // empty disables the Postgres opportunity sink
}

// LoadEnv loads environment variables from local .env files, if present.
func LoadEnv(logger *logrus.Logger) {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			logger.WithError(err).Warnf("Failed to load %s", file)
			continue
		}
		logger.Debugf("Loaded env file: %s", file)
	}
}

// Load reads configuration from environment variables or falls back to defaults
func Load() *Config {
	return &Config{
		TwitterAPIKey: getEnv("TWITTER_API_KEY", ""),
		TwitterUserID: getEnv("TWITTER_USER_ID", ""),

		ClaudeAPIKey:    getEnv("CLAUDE_API_KEY", ""),
		ClaudeAPIURL:    getEnv("CLAUDE_API_URL", "https://api.anthropic.com"),
		ClaudeModel:     getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-20241022"),
		ClaudeMaxTokens: getEnvInt("CLAUDE_MAX_TOKENS", 2048),

		DataForSEOLogin:    getEnv("DATAFORSEO_LOGIN", ""),
		DataForSEOPassword: getEnv("DATAFORSEO_PASSWORD", ""),
		DataForSEOAPIURL:   getEnv("DATAFORSEO_API_URL", "https://api.dataforseo.com"),
		LocationName:       getEnv("DATAFORSEO_LOCATION", "United States"),
		LanguageName:       getEnv("DATAFORSEO_LANGUAGE", "English"),

		MaxCandidates:    getEnvInt("MAX_CANDIDATES", 50),
		BestOpportunityN: getEnvInt("BEST_OPPORTUNITIES", 10),
		TopPostsN:        getEnvInt("TOP_POSTS", 10),
		MetricsBatchSize: getEnvInt("METRICS_BATCH_SIZE", 20),
		MaxConcurrency:   getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitDelay:   getEnvInt("RATE_LIMIT_DELAY_MS", 500),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),

		FetchTimeout:   getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
		LLMTimeout:     getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		MetricsTimeout: getEnvDuration("METRICS_TIMEOUT", 60*time.Second),
		RunDeadline:    getEnvDuration("RUN_DEADLINE", 5*time.Minute),

		VolumeWeight:      getEnvFloat("VOLUME_WEIGHT", 0.5),
		MentionWeight:     getEnvFloat("MENTION_WEIGHT", 0.3),
		CompetitionWeight: getEnvFloat("COMPETITION_WEIGHT", 0.2),

		OutputDir:    getEnv("OUTPUT_DIR", "output"),
		PostsCSVPath: getEnv("POSTS_CSV_PATH", "output/raw_posts.csv"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
	}
}

// LogLevel reads the desired log level from the environment.
func LogLevel() logrus.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
