package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"competitor-sentiment/models"
)

var reviewHeader = []string{
	"competitor_name", "competitor_rating", "rater_name", "rater_review_count",
	"star_text", "star_rating", "review_text", "language", "sentiment",
	"polarity", "subjectivity", "confidence", "star_equivalent", "source_url", "analyzed_at",
}

// CSVWriter writes labeled reviews to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(reviewHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteReport writes every labeled review in the report.
func (c *CSVWriter) WriteReport(r *models.Report) error {
	for _, res := range r.Analysis.CompetitorResults {
		if err := c.WriteReviews(res.Reviews); err != nil {
			return err
		}
	}
	return nil
}

// WriteReviews appends one row per review.
func (c *CSVWriter) WriteReviews(reviews []models.LabeledReview) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range reviews {
		if err := c.writer.Write(reviewRow(r)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

func reviewRow(r models.LabeledReview) []string {
	return []string{
		r.CompetitorName,
		strconv.FormatFloat(r.CompetitorRating, 'f', 1, 64),
		r.RaterName,
		r.RaterReviewCount,
		r.StarText,
		strconv.Itoa(r.Stars),
		r.Body,
		r.Language,
		string(r.Label),
		strconv.FormatFloat(r.Polarity, 'f', 3, 64),
		strconv.FormatFloat(r.Subjectivity, 'f', 3, 64),
		strconv.FormatFloat(r.Confidence, 'f', 3, 64),
		strconv.Itoa(r.StarEquivalent),
		r.SourceURL,
		r.AnalyzedAt.Format(time.RFC3339),
	}
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
