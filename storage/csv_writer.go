package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"trend-seo/models"
)

// CSVWriter handles writing normalized posts to a CSV file
type CSVWriter struct {
	filePath string
	logger   *logrus.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(filePath string, logger *logrus.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, logger: logger}
}

// SavePosts writes a slice of posts to the CSV file
func (w *CSVWriter) SavePosts(posts []*models.Post) error {
	// Ensure output directory exists
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"id", "text", "author_handle", "likes", "reposts", "replies",
		"is_verified_author", "hashtags", "created_at",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range posts {
		row := []string{
			p.ID,
			p.Text,
			p.AuthorHandle,
			strconv.Itoa(p.Likes),
			strconv.Itoa(p.Reposts),
			strconv.Itoa(p.Replies),
			strconv.FormatBool(p.IsVerifiedAuthor),
			strings.Join(p.Hashtags, ";"),
			p.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			w.logger.Errorf("Failed to write CSV row for post %s: %v", p.ID, err)
		}
	}

	w.logger.Infof("Posts written to: %s (%d rows)", w.filePath, len(posts))
	return nil
}
