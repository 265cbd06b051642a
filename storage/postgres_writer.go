package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"trend-seo/models"

	_ "github.com/lib/pq"
)

// PostgresWriter stores ranked opportunities in PostgreSQL. It is a
// write-only sink: the pipeline never reads previous runs back.
type PostgresWriter struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewPostgresWriter creates a new PostgresWriter and pings the DB
func NewPostgresWriter(connStr string, logger *logrus.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL successfully")
	return &PostgresWriter{db: db, logger: logger}, nil
}

// CreateTable creates the opportunities table if it doesn't exist, with indexes
func (w *PostgresWriter) CreateTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS opportunities (
		id            SERIAL PRIMARY KEY,
		run_id        VARCHAR(36) NOT NULL,
		keyword       TEXT        NOT NULL,
		search_volume BIGINT,
		competition   NUMERIC(4,3),
		cpc           NUMERIC(10,2),
		difficulty    INT,
		mention_count INT         NOT NULL DEFAULT 0,
		sources       TEXT        NOT NULL DEFAULT '',
		score         NUMERIC(9,5) NOT NULL DEFAULT 0,
		generated_at  TIMESTAMP   NOT NULL,
		UNIQUE (run_id, keyword)
	);

	CREATE INDEX IF NOT EXISTS idx_opportunities_keyword ON opportunities (keyword);
	CREATE INDEX IF NOT EXISTS idx_opportunities_score   ON opportunities (score);
	`
	_, err := w.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	w.logger.Info("Table 'opportunities' is ready")
	return nil
}

// SaveOpportunities inserts a run's ranked opportunities in a single
// transaction. NULL columns mean the provider returned no data, keeping the
// absent/zero distinction intact in the database as well.
func (w *PostgresWriter) SaveOpportunities(report *models.Report) error {
	if len(report.Opportunities) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO opportunities (run_id, keyword, search_volume, competition, cpc, difficulty, mention_count, sources, score, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id, keyword) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, opp := range report.Opportunities {
		var volume *int64
		var competition, cpc *float64
		var difficulty *int
		if opp.Metrics != nil {
			volume = opp.Metrics.SearchVolume
			competition = opp.Metrics.Competition
			cpc = opp.Metrics.CPC
			difficulty = opp.Metrics.Difficulty
		}

		_, err = stmt.Exec(
			report.RunID,
			opp.Keyword,
			volume,
			competition,
			cpc,
			difficulty,
			opp.MentionCount,
			joinSources(opp.Sources),
			opp.Score,
			report.GeneratedAt,
		)
		if err != nil {
			w.logger.Warnf("Skipping insert for keyword %q: %v", opp.Keyword, err)
			continue
		}
		inserted++
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Infof("Inserted %d/%d opportunities into PostgreSQL", inserted, len(report.Opportunities))
	return nil
}

// Close closes the database connection
func (w *PostgresWriter) Close() error {
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

func joinSources(sources []models.Source) string {
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ",")
}
