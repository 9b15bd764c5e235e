package models

import (
	"encoding/json"
	"time"
)

// SentimentSummary aggregates labeled reviews for one listing or a whole
// industry run. A nil *SentimentSummary is the empty state.
type SentimentSummary struct {
	TotalReviews          int                   `json:"total_reviews"`
	Distribution          map[Sentiment]int     `json:"sentiment_distribution"`
	Percentages           map[Sentiment]float64 `json:"sentiment_percentages"`
	AveragePolarity       float64               `json:"average_polarity"`
	AverageSubjectivity   float64               `json:"average_subjectivity"`
	AverageConfidence     float64               `json:"average_confidence"`
	AverageStarRating     float64               `json:"average_star_rating"`
	AverageStarEquivalent float64               `json:"average_star_equivalent"`
	Languages             map[string]int        `json:"languages,omitempty"`
	Timestamp             time.Time             `json:"analysis_timestamp"`
}

// IndustrySummary is the combined summary across every analyzed competitor.
type IndustrySummary struct {
	SentimentSummary
	TotalCompetitorsAnalyzed int `json:"total_competitors_analyzed"`
	TotalReviewsAnalyzed     int `json:"total_reviews_analyzed"`
}

// Narrative is free text from the text-generation collaborator.
type Narrative struct {
	Summary         string    `json:"summary"`
	FullAnalysis    string    `json:"full_analysis"`
	Recommendations []string  `json:"recommendations,omitempty"`
	ActionItems     []string  `json:"action_items,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
	Source          string    `json:"source"`
	Error           string    `json:"error,omitempty"`
}

// CompetitorResult is the per-listing outcome of an analysis run.
type CompetitorResult struct {
	Listing         Listing           `json:"competitor_info"`
	Reviews         []LabeledReview   `json:"reviews,omitempty"`
	Summary         *SentimentSummary `json:"sentiment_summary"`
	ReviewsAnalyzed int               `json:"reviews_analyzed"`
	Narrative       *Narrative        `json:"ai_insights,omitempty"`
}

// AnalysisResults groups everything computed after discovery.
type AnalysisResults struct {
	CompetitorResults []CompetitorResult `json:"competitor_results"`
	Combined          *IndustrySummary   `json:"combined_summary"`
	IndustryNarrative *Narrative         `json:"industry_insights,omitempty"`
}

// Report is the top-level result of a competitor analysis run. It always
// has a well-defined shape; failures are carried in Error.
type Report struct {
	RunID       string          `json:"run_id"`
	Industry    string          `json:"industry"`
	Region      string          `json:"region"`
	Competitors []Listing       `json:"competitors"`
	Analysis    AnalysisResults `json:"analysis_results"`
	Charts      *ChartData      `json:"charts,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	Error       string          `json:"error,omitempty"`
}

// MarshalJSON renders error reports in their reduced form:
// {"error": "...", "competitors": [], "analysis_results": {}}.
func (r Report) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error       string         `json:"error"`
			Competitors []Listing      `json:"competitors"`
			Analysis    map[string]any `json:"analysis_results"`
		}{
			Error:       r.Error,
			Competitors: []Listing{},
			Analysis:    map[string]any{},
		})
	}
	type plain Report
	return json.Marshal(plain(r))
}

// ReviewReport is the result of analyzing explicit reviews URLs.
type ReviewReport struct {
	RunID       string             `json:"run_id"`
	Results     []CompetitorResult `json:"results"`
	Combined    *IndustrySummary   `json:"combined_summary"`
	GeneratedAt time.Time          `json:"generated_at"`
	Error       string             `json:"error,omitempty"`
}

// ChartData holds chart-ready series derived from a report.
type ChartData struct {
	CompetitorNames   []string  `json:"competitor_names"`
	PositivePercent   []float64 `json:"positive_percentages"`
	NeutralPercent    []float64 `json:"neutral_percentages"`
	NegativePercent   []float64 `json:"negative_percentages"`
	Ratings           []float64 `json:"ratings"`
	AveragePolarity   []float64 `json:"average_polarity"`
	ReviewsAnalyzed   []int     `json:"reviews_analyzed"`
	IndustryPieLabels []string  `json:"industry_pie_labels"`
	IndustryPieCounts []int     `json:"industry_pie_counts"`

	SentimentColors map[Sentiment]string `json:"sentiment_colors"`
}
