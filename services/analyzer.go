// Package services runs competitor analyses end to end and aggregates,
// charts and prints their results.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"competitor-sentiment/browser"
	"competitor-sentiment/models"
	"competitor-sentiment/scraper/maps"
	"competitor-sentiment/utils"
)

const (
	noCompetitorsMessage = "No competitors found"
	noReviewsMessage     = "No reviews found"

	defaultMaxCompetitors       = 5
	defaultReviewsPerCompetitor = 100
)

var (
	// ErrNoCompetitors is reported when discovery yields no listings.
	ErrNoCompetitors = errors.New("no competitors found")
	errNoReviews     = errors.New("no reviews scraped")
)

// ListingFinder discovers competitor listings.
type ListingFinder interface {
	Search(ctx context.Context, q maps.Query, maxResults int) ([]models.Listing, error)
}

// ReviewSource scrapes reviews from a listing's reviews page.
type ReviewSource interface {
	Scrape(ctx context.Context, url string, limit int) ([]models.Review, error)
}

type SentimentClassifier interface {
	Classify(text string) models.SentimentResult
}

type LanguageDetector interface {
	Detect(text string) string
}

// Narrator writes per-listing and industry narratives. Implementations
// never fail; problems are carried inside the Narrative.
type Narrator interface {
	ListingNarrative(ctx context.Context, listing models.Listing, summary *models.SentimentSummary, reviews []models.LabeledReview) *models.Narrative
	IndustryNarrative(ctx context.Context, industry, region string, results []models.CompetitorResult, combined *models.IndustrySummary) *models.Narrative
}

// AnalyzerOptions bounds a run.
type AnalyzerOptions struct {
	ListingTimeout time.Duration
	RunTimeout     time.Duration
	RateLimitMs    int
}

// Analyzer wires discovery, review scraping, classification and narratives.
type Analyzer struct {
	finder     ListingFinder
	reviews    ReviewSource
	classifier SentimentClassifier
	languages  LanguageDetector
	narrator   Narrator
	opts       AnalyzerOptions
	logger     *utils.Logger
	now        func() time.Time
}

// NewAnalyzer creates an Analyzer. languages may be nil.
func NewAnalyzer(finder ListingFinder, reviews ReviewSource, classifier SentimentClassifier,
	languages LanguageDetector, narrator Narrator, opts AnalyzerOptions, logger *utils.Logger) *Analyzer {
	return &Analyzer{
		finder:     finder,
		reviews:    reviews,
		classifier: classifier,
		languages:  languages,
		narrator:   narrator,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

// Request describes one competitor analysis.
type Request struct {
	Industry             string
	Region               string
	MaxCompetitors       int
	ReviewsPerCompetitor int
}

func (r Request) withDefaults() Request {
	if r.MaxCompetitors <= 0 {
		r.MaxCompetitors = defaultMaxCompetitors
	}
	if r.ReviewsPerCompetitor <= 0 {
		r.ReviewsPerCompetitor = defaultReviewsPerCompetitor
	}
	return r
}

// AnalyzeCompetitors discovers competitors for an industry and region,
// analyzes each one's reviews and combines the results. It always returns
// a report; failures before any listing is analyzed set Report.Error.
func (a *Analyzer) AnalyzeCompetitors(ctx context.Context, req Request) *models.Report {
	req = req.withDefaults()
	ctx, cancel := a.runContext(ctx)
	defer cancel()

	report := &models.Report{
		RunID:       uuid.NewString(),
		Industry:    req.Industry,
		Region:      req.Region,
		GeneratedAt: a.now(),
	}
	a.logger.Info("[analyzer] Run %s: %s in %s (max %d competitors, %d reviews each)",
		report.RunID, req.Industry, req.Region, req.MaxCompetitors, req.ReviewsPerCompetitor)

	listings, err := a.finder.Search(ctx, maps.Query{Industry: req.Industry, Region: req.Region}, req.MaxCompetitors)
	if err != nil {
		if errors.Is(err, browser.ErrBrowserUnavailable) {
			a.logger.Error("[analyzer] No browser could be started: %v", err)
		} else {
			a.logger.Error("[analyzer] Error in competitor sentiment analysis: %v", err)
		}
		report.Error = err.Error()
		return report
	}
	if len(listings) == 0 {
		a.logger.Warn("[analyzer] %v for %s in %s", ErrNoCompetitors, req.Industry, req.Region)
		report.Error = noCompetitorsMessage
		return report
	}
	report.Competitors = listings

	results := a.analyzeListings(ctx, listings, req.ReviewsPerCompetitor)
	combined := CombineResults(results)

	report.Analysis = models.AnalysisResults{
		CompetitorResults: results,
		Combined:          combined,
		IndustryNarrative: a.narrator.IndustryNarrative(ctx, req.Industry, req.Region, results, combined),
	}
	report.Charts = BuildCharts(results, combined)

	a.logger.Info("[analyzer] Run %s done: %d/%d competitors analyzed", report.RunID, len(results), len(listings))
	return report
}

// AnalyzeReviews analyzes explicit reviews URLs, one result per URL.
func (a *Analyzer) AnalyzeReviews(ctx context.Context, urls []string, limit int) *models.ReviewReport {
	if limit <= 0 {
		limit = defaultReviewsPerCompetitor
	}
	ctx, cancel := a.runContext(ctx)
	defer cancel()

	report := &models.ReviewReport{RunID: uuid.NewString(), GeneratedAt: a.now()}

	listings := make([]models.Listing, 0, len(urls))
	for i, u := range urls {
		listings = append(listings, models.Listing{
			Name:       u,
			URL:        u,
			PlaceID:    maps.PlaceID(u),
			Index:      i + 1,
			ReviewsURL: u,
		})
	}

	report.Results = a.analyzeListings(ctx, listings, limit)
	if len(report.Results) == 0 {
		report.Error = noReviewsMessage
		return report
	}
	report.Combined = CombineResults(report.Results)
	return report
}

func (a *Analyzer) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.RunTimeout > 0 {
		return context.WithTimeout(ctx, a.opts.RunTimeout)
	}
	return context.WithCancel(ctx)
}

// analyzeListings processes listings one at a time, paced by the rate
// limit. Failed listings are logged and left out.
func (a *Analyzer) analyzeListings(ctx context.Context, listings []models.Listing, limit int) []models.CompetitorResult {
	slots := make([]*models.CompetitorResult, len(listings))
	pool := utils.NewWorkerPool(1, a.opts.RateLimitMs)

	for i, l := range listings {
		err := pool.Submit(ctx, func(ctx context.Context) {
			result, err := a.analyzeListing(ctx, l, limit)
			if err != nil {
				a.logger.Warn("[analyzer] Error analyzing competitor %s: %v", l.Name, err)
				return
			}
			slots[i] = result
		})
		if err != nil {
			a.logger.Warn("[analyzer] Stopping after %d/%d listings: %v", i, len(listings), err)
			break
		}
	}
	pool.Wait()

	results := make([]models.CompetitorResult, 0, len(listings))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results
}

func (a *Analyzer) analyzeListing(ctx context.Context, listing models.Listing, limit int) (*models.CompetitorResult, error) {
	if listing.ReviewsURL == "" {
		return nil, fmt.Errorf("no reviews URL")
	}
	if a.opts.ListingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.ListingTimeout)
		defer cancel()
	}

	a.logger.Info("[analyzer] Processing competitor: %s", listing.Name)
	reviews, err := a.reviews.Scrape(ctx, listing.ReviewsURL, limit)
	if err != nil {
		return nil, fmt.Errorf("scrape reviews: %w", err)
	}
	if len(reviews) == 0 {
		return nil, errNoReviews
	}

	labeled := a.label(reviews, listing)
	summary := Summarize(labeled)

	return &models.CompetitorResult{
		Listing:         listing,
		Reviews:         labeled,
		Summary:         summary,
		ReviewsAnalyzed: len(labeled),
		Narrative:       a.narrator.ListingNarrative(ctx, listing, summary, labeled),
	}, nil
}

func (a *Analyzer) label(reviews []models.Review, listing models.Listing) []models.LabeledReview {
	now := a.now()
	out := make([]models.LabeledReview, 0, len(reviews))
	for _, r := range reviews {
		if a.languages != nil {
			r.Language = a.languages.Detect(r.Body)
		}
		out = append(out, models.LabeledReview{
			Review:           r,
			SentimentResult:  a.classifier.Classify(r.Body),
			CompetitorName:   listing.Name,
			CompetitorRating: listing.Rating,
			AnalyzedAt:       now,
		})
	}
	return out
}
