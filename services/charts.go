package services

import "competitor-sentiment/models"

var sentimentColors = map[models.Sentiment]string{
	models.Positive: "#2E8B57",
	models.Negative: "#DC143C",
	models.Neutral:  "#FFA500",
}

// BuildCharts lays results out as parallel series for comparison charts,
// plus the industry-wide distribution for a pie chart.
func BuildCharts(results []models.CompetitorResult, combined *models.IndustrySummary) *models.ChartData {
	c := &models.ChartData{
		CompetitorNames: make([]string, 0, len(results)),
		PositivePercent: make([]float64, 0, len(results)),
		NeutralPercent:  make([]float64, 0, len(results)),
		NegativePercent: make([]float64, 0, len(results)),
		Ratings:         make([]float64, 0, len(results)),
		AveragePolarity: make([]float64, 0, len(results)),
		ReviewsAnalyzed: make([]int, 0, len(results)),
		SentimentColors: sentimentColors,
	}

	for _, r := range results {
		c.CompetitorNames = append(c.CompetitorNames, r.Listing.Name)
		c.Ratings = append(c.Ratings, r.Listing.Rating)
		c.ReviewsAnalyzed = append(c.ReviewsAnalyzed, r.ReviewsAnalyzed)

		var pos, neu, neg, pol float64
		if r.Summary != nil {
			pos = r.Summary.Percentages[models.Positive]
			neu = r.Summary.Percentages[models.Neutral]
			neg = r.Summary.Percentages[models.Negative]
			pol = r.Summary.AveragePolarity
		}
		c.PositivePercent = append(c.PositivePercent, pos)
		c.NeutralPercent = append(c.NeutralPercent, neu)
		c.NegativePercent = append(c.NegativePercent, neg)
		c.AveragePolarity = append(c.AveragePolarity, pol)
	}

	if combined != nil {
		for _, b := range models.Buckets {
			c.IndustryPieLabels = append(c.IndustryPieLabels, string(b))
			c.IndustryPieCounts = append(c.IndustryPieCounts, combined.Distribution[b])
		}
	}
	return c
}
