package insights

import (
	"context"
	"fmt"
	"time"

	"competitor-sentiment/models"
	"competitor-sentiment/utils"
)

const (
	sourceTemplate = "template"
	listingTokens  = 1000

	unavailableSummary = "AI insights unavailable."
)

var (
	mockRecommendations = []string{
		"Monitor customer feedback regularly to identify trends",
		"Address negative reviews promptly and professionally",
		"Leverage positive reviews for marketing and testimonials",
		"Implement customer satisfaction surveys",
		"Train staff on customer service best practices",
	}
	mockActionItems = []string{
		"Set up automated review monitoring system",
		"Create response templates for common complaints",
		"Develop customer feedback collection process",
		"Implement customer service training program",
	}
)

// Service writes narratives. A nil generator yields the templated
// narratives.
type Service struct {
	gen       Generator
	maxTokens int
	retry     utils.RetryConfig
	logger    *utils.Logger
	now       func() time.Time
}

// NewService wraps gen, which may be nil when no credential is configured.
func NewService(gen Generator, maxTokens int, retry utils.RetryConfig, logger *utils.Logger) *Service {
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	return &Service{gen: gen, maxTokens: maxTokens, retry: retry, logger: logger, now: time.Now}
}

func (s *Service) generate(ctx context.Context, name, prompt string, maxTokens int) (string, error) {
	var text string
	err := s.retry.Do(ctx, name, func() error {
		var err error
		text, err = s.gen.Generate(ctx, systemInstruction, prompt, maxTokens)
		return err
	})
	return text, err
}

// Enabled reports whether a text-generation provider is configured.
func (s *Service) Enabled() bool {
	return s.gen != nil
}

// ListingNarrative describes one competitor from its summary and up to 15
// of its labeled reviews. It never fails.
func (s *Service) ListingNarrative(ctx context.Context, listing models.Listing, summary *models.SentimentSummary, reviews []models.LabeledReview) *models.Narrative {
	if s.gen == nil {
		return &models.Narrative{
			Summary: fmt.Sprintf("Mock sentiment analysis: Customer sentiment shows %.1f%% positive feedback "+
				"with opportunities for improvement in customer experience.", percent(summary, models.Positive)),
			FullAnalysis:    "This is a mock analysis. Connect Google AI API for detailed sentiment insights.",
			Recommendations: mockRecommendations,
			ActionItems:     mockActionItems,
			GeneratedAt:     s.now(),
			Source:          sourceTemplate,
		}
	}

	if len(reviews) > listingSampleSize {
		reviews = reviews[:listingSampleSize]
	}

	text, err := s.generate(ctx, "narrative "+listing.Name, listingPrompt(listing, summary, reviews), listingTokens)
	if err != nil {
		s.logger.Warn("[insights] Narrative for %s failed: %v", listing.Name, err)
		return &models.Narrative{
			Summary:     unavailableSummary,
			GeneratedAt: s.now(),
			Source:      sourceTemplate,
			Error:       err.Error(),
		}
	}

	return &models.Narrative{
		Summary:         Summarize(text),
		FullAnalysis:    text,
		Recommendations: Recommendations(text),
		ActionItems:     ActionItems(text),
		GeneratedAt:     s.now(),
		Source:          s.gen.Name(),
	}
}

// IndustryNarrative describes the whole run. Without a provider it returns
// the templated industry text; a provider failure yields the unavailable
// placeholder with Error set.
func (s *Service) IndustryNarrative(ctx context.Context, industry, region string, results []models.CompetitorResult, combined *models.IndustrySummary) *models.Narrative {
	if s.gen == nil {
		return &models.Narrative{
			Summary: fmt.Sprintf("Mock analysis: The %s industry in %s shows mixed customer sentiment "+
				"with opportunities for improvement in customer experience.", industry, region),
			FullAnalysis: fmt.Sprintf("This is a mock competitor analysis for the %s industry in %s. "+
				"Connect Google AI API for detailed insights about market sentiment trends and competitive positioning.",
				industry, region),
			GeneratedAt: s.now(),
			Source:      sourceTemplate,
		}
	}

	text, err := s.generate(ctx, "industry narrative", industryPrompt(industry, region, results, combined), s.maxTokens)
	if err != nil {
		s.logger.Error("[insights] Error generating competitor insights: %v", err)
		return &models.Narrative{
			Summary:     unavailableSummary,
			GeneratedAt: s.now(),
			Source:      sourceTemplate,
			Error:       err.Error(),
		}
	}

	return &models.Narrative{
		Summary:      Summarize(text),
		FullAnalysis: text,
		GeneratedAt:  s.now(),
		Source:       s.gen.Name(),
	}
}
