package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"trend-seo/models"
)

// JSONReportWriter writes the report to a timestamp-named JSON file.
type JSONReportWriter struct {
	outputDir string
	logger    *logrus.Logger
}

// NewJSONReportWriter creates a new JSONReportWriter
func NewJSONReportWriter(outputDir string, logger *logrus.Logger) *JSONReportWriter {
	return &JSONReportWriter{outputDir: outputDir, logger: logger}
}

// SaveReport serializes the report with indentation and writes it to
// ai_trends_analysis_<timestamp>.json under the output directory. Absent
// metrics fields serialize as null, never as 0.
func (w *JSONReportWriter) SaveReport(report *models.Report) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("ai_trends_analysis_%s.json", report.GeneratedAt.Format("2006-01-02_15-04-05"))
	path := filepath.Join(w.outputDir, filename)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	w.logger.Infof("Report saved to: %s", path)
	return path, nil
}
