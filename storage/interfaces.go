package storage

import "trend-seo/models"

// ReportSink persists the final report and returns an identifier for where
// it went (a file path, a table name).
type ReportSink interface {
	SaveReport(report *models.Report) (string, error)
}

// PostSink stores the normalized posts of one run for later inspection.
type PostSink interface {
	SavePosts(posts []*models.Post) error
}

// OpportunitySink stores the ranked opportunities of one run.
type OpportunitySink interface {
	SaveOpportunities(report *models.Report) error
	Close() error
}

var (
	_ ReportSink      = (*JSONReportWriter)(nil)
	_ PostSink        = (*CSVWriter)(nil)
	_ OpportunitySink = (*PostgresWriter)(nil)
)

