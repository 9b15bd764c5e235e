package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"competitor-sentiment/models"
	"competitor-sentiment/utils"
)

const summaryColumns = 14

// PostgresWriter exports finished reports to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		if sleepErr := utils.Sleep(ctx, 2*time.Second); sleepErr != nil {
			break
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id               UUID         PRIMARY KEY,
			industry             TEXT         NOT NULL,
			region               TEXT         NOT NULL,
			competitors_found    INTEGER      NOT NULL DEFAULT 0,
			competitors_analyzed INTEGER      NOT NULL DEFAULT 0,
			total_reviews        INTEGER      NOT NULL DEFAULT 0,
			positive_pct         NUMERIC(6,2) NOT NULL DEFAULT 0,
			neutral_pct          NUMERIC(6,2) NOT NULL DEFAULT 0,
			negative_pct         NUMERIC(6,2) NOT NULL DEFAULT 0,
			average_polarity     NUMERIC(5,3) NOT NULL DEFAULT 0,
			insights_summary     TEXT         NOT NULL DEFAULT '',
			error                TEXT         NOT NULL DEFAULT '',
			generated_at         TIMESTAMPTZ  NOT NULL
		);

		CREATE TABLE IF NOT EXISTS competitor_summaries (
			id                  SERIAL       PRIMARY KEY,
			run_id              UUID         NOT NULL REFERENCES analysis_runs(run_id) ON DELETE CASCADE,
			name                TEXT         NOT NULL,
			rating              NUMERIC(3,1) NOT NULL DEFAULT 0,
			review_count        INTEGER      NOT NULL DEFAULT 0,
			address             TEXT         NOT NULL DEFAULT '',
			url                 TEXT         NOT NULL DEFAULT '',
			place_id            TEXT         NOT NULL DEFAULT '',
			reviews_analyzed    INTEGER      NOT NULL DEFAULT 0,
			positive_pct        NUMERIC(6,2) NOT NULL DEFAULT 0,
			neutral_pct         NUMERIC(6,2) NOT NULL DEFAULT 0,
			negative_pct        NUMERIC(6,2) NOT NULL DEFAULT 0,
			average_polarity    NUMERIC(5,3) NOT NULL DEFAULT 0,
			insights_summary    TEXT         NOT NULL DEFAULT '',
			list_index          INTEGER      NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_competitor_summaries_run ON competitor_summaries(run_id);
		CREATE INDEX IF NOT EXISTS idx_analysis_runs_industry   ON analysis_runs(industry, region);
	`)
	return err
}

// WriteReport stores the run row and one row per analyzed competitor in a
// single transaction.
func (pw *PostgresWriter) WriteReport(r *models.Report) error {
	ctx := context.Background()
	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (run_id, industry, region, competitors_found, competitors_analyzed,
			total_reviews, positive_pct, neutral_pct, negative_pct, average_polarity,
			insights_summary, error, generated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (run_id) DO NOTHING
	`, runArgs(r)...); err != nil {
		return fmt.Errorf("postgres: insert run: %w", err)
	}

	results := r.Analysis.CompetitorResults
	const batchSize = 50
	for i := 0; i < len(results); i += batchSize {
		end := min(i+batchSize, len(results))
		query, args := summaryInsert(r.RunID, results[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert summaries: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func runArgs(r *models.Report) []any {
	var total int
	var pos, neu, neg, pol float64
	if c := r.Analysis.Combined; c != nil {
		total = c.TotalReviewsAnalyzed
		pos, neu, neg = c.Percentages[models.Positive], c.Percentages[models.Neutral], c.Percentages[models.Negative]
		pol = c.AveragePolarity
	}
	var insights string
	if n := r.Analysis.IndustryNarrative; n != nil {
		insights = n.Summary
	}
	return []any{
		r.RunID, r.Industry, r.Region, len(r.Competitors), len(r.Analysis.CompetitorResults),
		total, pos, neu, neg, pol, insights, r.Error, r.GeneratedAt,
	}
}

func summaryInsert(runID string, batch []models.CompetitorResult) (string, []any) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*summaryColumns)

	for idx, res := range batch {
		base := idx * summaryColumns
		placeholders := make([]string, summaryColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var pos, neu, neg, pol float64
		if s := res.Summary; s != nil {
			pos, neu, neg = s.Percentages[models.Positive], s.Percentages[models.Neutral], s.Percentages[models.Negative]
			pol = s.AveragePolarity
		}
		var insights string
		if res.Narrative != nil {
			insights = res.Narrative.Summary
		}
		l := res.Listing
		valueArgs = append(valueArgs,
			runID, l.Name, l.Rating, l.ReviewCount, l.Address, l.URL, l.PlaceID,
			res.ReviewsAnalyzed, pos, neu, neg, pol, insights, l.Index)
	}

	query := fmt.Sprintf(`
		INSERT INTO competitor_summaries (run_id, name, rating, review_count, address, url, place_id,
			reviews_analyzed, positive_pct, neutral_pct, negative_pct, average_polarity, insights_summary, list_index)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
