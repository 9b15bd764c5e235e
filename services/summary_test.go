package services

import (
	"math"
	"testing"

	"competitor-sentiment/models"
)

const tolerance = 0.01

func labeled(label models.Sentiment, polarity float64, stars int) models.LabeledReview {
	return models.LabeledReview{
		Review: models.Review{Body: "text", Stars: stars},
		SentimentResult: models.SentimentResult{
			Label:          label,
			Polarity:       polarity,
			Subjectivity:   0.5,
			Confidence:     0.8,
			StarEquivalent: int(polarity*2 + 3),
		},
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestSummarizeEmpty(t *testing.T) {
	if s := Summarize(nil); s != nil {
		t.Errorf("expected nil summary for no reviews, got %+v", s)
	}
	if s := CombineResults([]models.CompetitorResult{{Listing: models.Listing{Name: "A"}}}); s != nil {
		t.Errorf("expected nil combined summary, got %+v", s)
	}
}

func TestSummarizeScenarioB(t *testing.T) {
	s := Summarize([]models.LabeledReview{
		labeled(models.Positive, 1, 5),
		labeled(models.Positive, 1, 5),
		labeled(models.Negative, -1, 1),
	})

	if s.TotalReviews != 3 {
		t.Errorf("TotalReviews: got %d, want 3", s.TotalReviews)
	}
	want := map[models.Sentiment]float64{models.Positive: 66.67, models.Negative: 33.33, models.Neutral: 0}
	for b, w := range want {
		got, ok := s.Percentages[b]
		if !ok {
			t.Errorf("percentage key %s missing", b)
		}
		if !approx(got, w) {
			t.Errorf("%s percentage: got %.4f, want %.2f", b, got, w)
		}
	}
	if s.Distribution[models.Neutral] != 0 || s.Distribution[models.Positive] != 2 {
		t.Errorf("Distribution: got %v", s.Distribution)
	}
	if !approx(s.AveragePolarity, 0.333) {
		t.Errorf("AveragePolarity: got %.4f, want 0.333", s.AveragePolarity)
	}
	if !approx(s.AverageStarRating, 11.0/3) {
		t.Errorf("AverageStarRating: got %.4f", s.AverageStarRating)
	}
	if !approx(s.AverageConfidence, 0.8) || !approx(s.AverageSubjectivity, 0.5) {
		t.Errorf("averages: confidence %.2f subjectivity %.2f", s.AverageConfidence, s.AverageSubjectivity)
	}
}

func TestSummarizePercentagesSumTo100(t *testing.T) {
	inputs := [][]models.LabeledReview{
		{labeled(models.Neutral, 0, 3)},
		{labeled(models.Positive, 0.5, 4), labeled(models.Neutral, 0, 3), labeled(models.Negative, -0.5, 2)},
		{labeled(models.Positive, 1, 5), labeled(models.Positive, 1, 5), labeled(models.Positive, 0.5, 4),
			labeled(models.Negative, -1, 1), labeled(models.Neutral, 0, 3), labeled(models.Neutral, 0, 3), labeled(models.Negative, -0.5, 2)},
	}

	for i, in := range inputs {
		s := Summarize(in)
		var sum float64
		for _, b := range models.Buckets {
			sum += s.Percentages[b]
		}
		if !approx(sum, 100) {
			t.Errorf("input %d: percentages sum to %.4f", i, sum)
		}
	}
}

func TestSummarizeLanguages(t *testing.T) {
	a := labeled(models.Positive, 1, 5)
	a.Language = "ar"
	b := labeled(models.Positive, 1, 5)
	b.Language = "en"
	c := labeled(models.Neutral, 0, 3)
	c.Language = "ar"

	s := Summarize([]models.LabeledReview{a, b, c, labeled(models.Neutral, 0, 3)})
	if s.Languages["ar"] != 2 || s.Languages["en"] != 1 || len(s.Languages) != 2 {
		t.Errorf("Languages: got %v", s.Languages)
	}
}

func TestCombineResultsAssociative(t *testing.T) {
	a := []models.LabeledReview{labeled(models.Positive, 1, 5), labeled(models.Neutral, 0, 3)}
	b := []models.LabeledReview{labeled(models.Negative, -1, 1)}
	c := []models.LabeledReview{labeled(models.Positive, 0.5, 4), labeled(models.Negative, -0.5, 2), labeled(models.Positive, 1, 5)}

	results := []models.CompetitorResult{{Reviews: a}, {Reviews: b}, {Reviews: c}}
	combined := CombineResults(results)

	var all []models.LabeledReview
	all = append(append(append(all, a...), b...), c...)
	flat := Summarize(all)

	if combined.TotalReviews != flat.TotalReviews || combined.TotalReviewsAnalyzed != 6 {
		t.Errorf("totals: got %d/%d, want %d", combined.TotalReviews, combined.TotalReviewsAnalyzed, flat.TotalReviews)
	}
	if combined.TotalCompetitorsAnalyzed != 3 {
		t.Errorf("TotalCompetitorsAnalyzed: got %d, want 3", combined.TotalCompetitorsAnalyzed)
	}
	for _, bk := range models.Buckets {
		if !approx(combined.Percentages[bk], flat.Percentages[bk]) {
			t.Errorf("%s: combined %.4f, flat %.4f", bk, combined.Percentages[bk], flat.Percentages[bk])
		}
	}
	if !approx(combined.AveragePolarity, flat.AveragePolarity) {
		t.Errorf("AveragePolarity: combined %.4f, flat %.4f", combined.AveragePolarity, flat.AveragePolarity)
	}

	// Grouping must not matter.
	regrouped := CombineResults([]models.CompetitorResult{{Reviews: append(append([]models.LabeledReview{}, a...), b...)}, {Reviews: c}})
	if !approx(regrouped.AveragePolarity, combined.AveragePolarity) || regrouped.TotalReviews != combined.TotalReviews {
		t.Errorf("regrouped summary differs: %+v vs %+v", regrouped.SentimentSummary, combined.SentimentSummary)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	in := []models.LabeledReview{labeled(models.Positive, 1, 5), labeled(models.Negative, -0.5, 2)}
	first := Summarize(in)
	second := Summarize(in)

	if first.TotalReviews != second.TotalReviews || first.AveragePolarity != second.AveragePolarity {
		t.Errorf("summaries differ: %+v vs %+v", first, second)
	}
	for _, b := range models.Buckets {
		if first.Percentages[b] != second.Percentages[b] {
			t.Errorf("%s: %.4f vs %.4f", b, first.Percentages[b], second.Percentages[b])
		}
	}
}

func TestBuildCharts(t *testing.T) {
	results := []models.CompetitorResult{
		{
			Listing:         models.Listing{Name: "A", Rating: 4.5},
			Summary:         Summarize([]models.LabeledReview{labeled(models.Positive, 1, 5), labeled(models.Negative, -1, 1)}),
			ReviewsAnalyzed: 2,
		},
		{Listing: models.Listing{Name: "B", Rating: 3.9}},
	}
	c := BuildCharts(results, &models.IndustrySummary{SentimentSummary: *results[0].Summary})

	if len(c.CompetitorNames) != 2 || c.CompetitorNames[1] != "B" {
		t.Errorf("CompetitorNames: got %v", c.CompetitorNames)
	}
	if !approx(c.PositivePercent[0], 50) || c.PositivePercent[1] != 0 {
		t.Errorf("PositivePercent: got %v", c.PositivePercent)
	}
	if c.Ratings[1] != 3.9 || c.ReviewsAnalyzed[0] != 2 {
		t.Errorf("Ratings %v ReviewsAnalyzed %v", c.Ratings, c.ReviewsAnalyzed)
	}
	wantLabels := []string{"Positive", "Neutral", "Negative"}
	for i, l := range wantLabels {
		if c.IndustryPieLabels[i] != l {
			t.Errorf("pie label %d: got %q, want %q", i, c.IndustryPieLabels[i], l)
		}
	}
	if c.IndustryPieCounts[0] != 1 || c.IndustryPieCounts[1] != 0 || c.IndustryPieCounts[2] != 1 {
		t.Errorf("pie counts: got %v", c.IndustryPieCounts)
	}
	if c.SentimentColors[models.Positive] != "#2E8B57" {
		t.Errorf("positive color: got %q", c.SentimentColors[models.Positive])
	}
}
