package services

import (
	"time"

	"competitor-sentiment/models"
)

// Summarize aggregates labeled reviews. It returns nil for no reviews.
func Summarize(reviews []models.LabeledReview) *models.SentimentSummary {
	if len(reviews) == 0 {
		return nil
	}

	s := &models.SentimentSummary{
		TotalReviews: len(reviews),
		Distribution: make(map[models.Sentiment]int, len(models.Buckets)),
		Percentages:  make(map[models.Sentiment]float64, len(models.Buckets)),
		Timestamp:    time.Now(),
	}
	for _, b := range models.Buckets {
		s.Distribution[b] = 0
	}

	var polarity, subjectivity, confidence, stars, equivalent float64
	for _, r := range reviews {
		s.Distribution[r.Label]++
		polarity += r.Polarity
		subjectivity += r.Subjectivity
		confidence += r.Confidence
		stars += float64(r.Stars)
		equivalent += float64(r.StarEquivalent)

		if r.Language != "" {
			if s.Languages == nil {
				s.Languages = make(map[string]int)
			}
			s.Languages[r.Language]++
		}
	}

	n := float64(len(reviews))
	for _, b := range models.Buckets {
		s.Percentages[b] = float64(s.Distribution[b]) / n * 100
	}
	s.AveragePolarity = polarity / n
	s.AverageSubjectivity = subjectivity / n
	s.AverageConfidence = confidence / n
	s.AverageStarRating = stars / n
	s.AverageStarEquivalent = equivalent / n

	return s
}

// CombineResults summarizes every listing's reviews as one population, so
// listings weigh in proportion to their review counts. It returns nil when
// no listing has reviews.
func CombineResults(results []models.CompetitorResult) *models.IndustrySummary {
	var all []models.LabeledReview
	for _, r := range results {
		all = append(all, r.Reviews...)
	}

	summary := Summarize(all)
	if summary == nil {
		return nil
	}
	return &models.IndustrySummary{
		SentimentSummary:         *summary,
		TotalCompetitorsAnalyzed: len(results),
		TotalReviewsAnalyzed:     len(all),
	}
}
