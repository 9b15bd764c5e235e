package insights

import (
	"fmt"
	"strings"

	"competitor-sentiment/models"
)

const temperature = 0.7

const systemInstruction = "You are an expert customer experience and competitive intelligence consultant. " +
	"Provide actionable, data-driven insights and recommendations."

const (
	// listingSampleSize reviews are handed to the listing narrative; the
	// prompt quotes only the first promptSampleSize of them.
	listingSampleSize = 15
	promptSampleSize  = 5
	sampleTextRunes   = 100
)

func percent(s *models.SentimentSummary, b models.Sentiment) float64 {
	if s == nil {
		return 0
	}
	return s.Percentages[b]
}

func listingPrompt(listing models.Listing, summary *models.SentimentSummary, sample []models.LabeledReview) string {
	var total int
	var avgStars, avgPolarity, avgSubjectivity float64
	if summary != nil {
		total = summary.TotalReviews
		avgStars = summary.AverageStarRating
		avgPolarity = summary.AveragePolarity
		avgSubjectivity = summary.AverageSubjectivity
	}

	var reviews strings.Builder
	for i, r := range sample {
		if i == promptSampleSize {
			break
		}
		text := []rune(r.Body)
		if len(text) > sampleTextRunes {
			text = text[:sampleTextRunes]
		}
		fmt.Fprintf(&reviews, "\n%d. Rating: %s/5\n", i+1, starsOrNA(r.Stars))
		fmt.Fprintf(&reviews, "   Sentiment: %s\n", r.Label)
		fmt.Fprintf(&reviews, "   Text: %s...\n", string(text))
	}

	return fmt.Sprintf(`Analyze the following customer sentiment data for %s (%.1f/5 stars, %d reviews on Google Maps) and provide actionable business insights:

SENTIMENT SUMMARY:
- Total Reviews: %d
- Positive: %.1f%%
- Negative: %.1f%%
- Neutral: %.1f%%
- Average Star Rating: %.1f/5
- Average Sentiment Polarity: %.2f
- Average Subjectivity: %.2f

SAMPLE REVIEWS:
%s

Please provide:
1. Overall sentiment health score (1-100)
2. Key insights about customer satisfaction
3. Top 3 areas for improvement based on negative feedback
4. Positive aspects to leverage and promote
5. Specific recommendations for improving customer experience
6. Action items for addressing common complaints
7. Strategies for increasing positive sentiment

Focus on actionable insights that can directly improve business performance and customer satisfaction.`,
		listing.Name, listing.Rating, listing.ReviewCount,
		total,
		percent(summary, models.Positive), percent(summary, models.Negative), percent(summary, models.Neutral),
		avgStars, avgPolarity, avgSubjectivity,
		reviews.String())
}

func starsOrNA(stars int) string {
	if stars <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", stars)
}

func industryPrompt(industry, region string, results []models.CompetitorResult, combined *models.IndustrySummary) string {
	var summary *models.SentimentSummary
	if combined != nil {
		summary = &combined.SentimentSummary
	}
	var total int
	var avgStars float64
	if summary != nil {
		total = summary.TotalReviews
		avgStars = summary.AverageStarRating
	}

	var breakdown strings.Builder
	for _, r := range results {
		fmt.Fprintf(&breakdown, "\n- %s: %.1f/5 stars, %d reviews analyzed\n", r.Listing.Name, r.Listing.Rating, r.ReviewsAnalyzed)
		fmt.Fprintf(&breakdown, "  Sentiment: %.1f%% positive, %.1f%% negative, %.1f%% neutral\n",
			percent(r.Summary, models.Positive), percent(r.Summary, models.Negative), percent(r.Summary, models.Neutral))
	}

	return fmt.Sprintf(`Analyze the following competitor sentiment data for the %[1]s industry in %[2]s:

INDUSTRY OVERVIEW:
- Industry: %[1]s
- Region: %[2]s
- Competitors Analyzed: %[3]d
- Total Reviews Analyzed: %[4]d

OVERALL SENTIMENT DISTRIBUTION:
- Positive: %.1[5]f%%
- Negative: %.1[6]f%%
- Neutral: %.1[7]f%%
- Average Star Rating: %.1[8]f/5

COMPETITOR BREAKDOWN:
%[9]s

Please provide:
1. **Industry Sentiment Health Score** (1-100) for the %[1]s industry in %[2]s
2. **Key Insights** about customer satisfaction trends in this industry
3. **Top 3 Competitors** with the best sentiment scores and why they're successful
4. **Common Pain Points** identified across competitors from negative reviews
5. **Market Opportunities** based on sentiment gaps
6. **Strategic Recommendations** for businesses in this industry
7. **Customer Experience Priorities** that should be addressed
8. **Competitive Advantages** that successful companies have

Focus on actionable insights that can help businesses improve their customer experience and competitive positioning in the %[1]s industry.`,
		industry, region, len(results), total,
		percent(summary, models.Positive), percent(summary, models.Negative), percent(summary, models.Neutral),
		avgStars, breakdown.String())
}
