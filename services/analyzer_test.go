package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"competitor-sentiment/browser"
	"competitor-sentiment/models"
	"competitor-sentiment/scraper/maps"
	"competitor-sentiment/utils"
)

type fakeFinder struct {
	listings []models.Listing
	err      error
	query    maps.Query
	max      int
}

func (f *fakeFinder) Search(ctx context.Context, q maps.Query, maxResults int) ([]models.Listing, error) {
	f.query, f.max = q, maxResults
	return f.listings, f.err
}

type fakeReviews struct {
	mu      sync.Mutex
	byURL   map[string][]models.Review
	errs    map[string]error
	block   map[string]bool
	scraped []string
}

func (f *fakeReviews) Scrape(ctx context.Context, url string, limit int) ([]models.Review, error) {
	f.mu.Lock()
	f.scraped = append(f.scraped, url)
	f.mu.Unlock()

	if f.block[url] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	reviews := f.byURL[url]
	if len(reviews) > limit {
		reviews = reviews[:limit]
	}
	return reviews, nil
}

// keywordClassifier labels by the first word of the body.
type keywordClassifier struct{}

func (keywordClassifier) Classify(text string) models.SentimentResult {
	switch {
	case strings.HasPrefix(text, "good"):
		return models.SentimentResult{Label: models.Positive, Polarity: 1, Subjectivity: 0.5, Confidence: 0.9, StarEquivalent: 5}
	case strings.HasPrefix(text, "bad"):
		return models.SentimentResult{Label: models.Negative, Polarity: -1, Subjectivity: 0.5, Confidence: 0.9, StarEquivalent: 1}
	default:
		return models.SentimentResult{Label: models.Neutral, Subjectivity: 0.5, Confidence: 0.5, StarEquivalent: 3}
	}
}

type fixedLanguage string

func (l fixedLanguage) Detect(string) string { return string(l) }

type fakeNarrator struct {
	mu       sync.Mutex
	listings []string
	sampled  []int
}

func (n *fakeNarrator) ListingNarrative(ctx context.Context, listing models.Listing, summary *models.SentimentSummary, reviews []models.LabeledReview) *models.Narrative {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listings = append(n.listings, listing.Name)
	n.sampled = append(n.sampled, len(reviews))
	return &models.Narrative{Summary: "listing " + listing.Name, Source: "fake"}
}

func (n *fakeNarrator) IndustryNarrative(ctx context.Context, industry, region string, results []models.CompetitorResult, combined *models.IndustrySummary) *models.Narrative {
	return &models.Narrative{Summary: fmt.Sprintf("%s/%s/%d", industry, region, len(results)), Source: "fake"}
}

func reviews(bodies ...string) []models.Review {
	out := make([]models.Review, len(bodies))
	for i, b := range bodies {
		out[i] = models.Review{RaterName: fmt.Sprintf("r%d", i), Body: b, Stars: 4}
	}
	return out
}

func listing(name string) models.Listing {
	return models.Listing{
		Name:       name,
		Rating:     4.2,
		URL:        "https://www.google.com/maps/place/" + name,
		ReviewsURL: "https://www.google.com/maps/place/" + name + "/reviews",
	}
}

func newTestAnalyzer(f ListingFinder, r ReviewSource, n Narrator, opts AnalyzerOptions) *Analyzer {
	return NewAnalyzer(f, r, keywordClassifier{}, fixedLanguage("en"), n, opts,
		utils.NewLoggerWithLevel(io.Discard, "debug"))
}

func TestAnalyzeCompetitorsNoCompetitors(t *testing.T) {
	a := newTestAnalyzer(&fakeFinder{}, &fakeReviews{}, &fakeNarrator{}, AnalyzerOptions{})
	report := a.AnalyzeCompetitors(context.Background(), Request{Industry: "diving", Region: "Jeddah"})

	got, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"error":"No competitors found","competitors":[],"analysis_results":{}}`
	if string(got) != want {
		t.Errorf("report JSON:\n got %s\nwant %s", got, want)
	}
}

func TestAnalyzeCompetitorsBrowserUnavailable(t *testing.T) {
	finder := &fakeFinder{err: fmt.Errorf("%w: chrome: exec not found", browser.ErrBrowserUnavailable)}
	a := newTestAnalyzer(finder, &fakeReviews{}, &fakeNarrator{}, AnalyzerOptions{})

	report := a.AnalyzeCompetitors(context.Background(), Request{Industry: "diving", Region: "Jeddah"})
	if !strings.Contains(report.Error, "browser unavailable") {
		t.Errorf("Error: got %q", report.Error)
	}
	if len(report.Competitors) != 0 {
		t.Errorf("Competitors: got %d", len(report.Competitors))
	}
}

func TestAnalyzeCompetitorsDefaults(t *testing.T) {
	finder := &fakeFinder{}
	a := newTestAnalyzer(finder, &fakeReviews{}, &fakeNarrator{}, AnalyzerOptions{})
	a.AnalyzeCompetitors(context.Background(), Request{Industry: "cafes", Region: "Riyadh"})

	if finder.max != 5 {
		t.Errorf("max competitors: got %d, want 5", finder.max)
	}
	if finder.query.String() != "cafes in Riyadh" {
		t.Errorf("query: got %q", finder.query.String())
	}
}

func TestAnalyzeCompetitors(t *testing.T) {
	a1, b1, c1 := listing("Alpha"), listing("Beta"), listing("Gamma")
	c1.ReviewsURL = ""

	finder := &fakeFinder{listings: []models.Listing{a1, b1, c1}}
	src := &fakeReviews{
		byURL: map[string][]models.Review{
			a1.ReviewsURL: reviews("good dive", "good staff", "bad boat"),
		},
		errs: map[string]error{b1.ReviewsURL: errors.New("tab never loaded")},
	}
	narrator := &fakeNarrator{}
	a := newTestAnalyzer(finder, src, narrator, AnalyzerOptions{})

	report := a.AnalyzeCompetitors(context.Background(), Request{Industry: "diving", Region: "Jeddah", ReviewsPerCompetitor: 10})
	if report.Error != "" {
		t.Fatalf("unexpected error: %s", report.Error)
	}
	if report.RunID == "" {
		t.Error("RunID should be set")
	}
	if len(report.Competitors) != 3 {
		t.Errorf("Competitors: got %d, want 3", len(report.Competitors))
	}

	results := report.Analysis.CompetitorResults
	if len(results) != 1 || results[0].Listing.Name != "Alpha" {
		t.Fatalf("results: got %+v", results)
	}
	r := results[0]
	if r.ReviewsAnalyzed != 3 || r.Summary.TotalReviews != 3 {
		t.Errorf("ReviewsAnalyzed: got %d", r.ReviewsAnalyzed)
	}
	if !approx(r.Summary.Percentages[models.Positive], 66.67) || !approx(r.Summary.AveragePolarity, 0.333) {
		t.Errorf("summary: got %+v", r.Summary)
	}
	if r.Reviews[0].CompetitorName != "Alpha" || r.Reviews[0].CompetitorRating != 4.2 || r.Reviews[0].Language != "en" {
		t.Errorf("labeled review tags: got %+v", r.Reviews[0])
	}
	if r.Narrative == nil || r.Narrative.Summary != "listing Alpha" {
		t.Errorf("listing narrative: got %+v", r.Narrative)
	}

	combined := report.Analysis.Combined
	if combined == nil || combined.TotalCompetitorsAnalyzed != 1 || combined.TotalReviewsAnalyzed != 3 {
		t.Errorf("combined: got %+v", combined)
	}
	if n := report.Analysis.IndustryNarrative; n == nil || n.Summary != "diving/Jeddah/1" {
		t.Errorf("industry narrative: got %+v", n)
	}
	if report.Charts == nil || len(report.Charts.CompetitorNames) != 1 {
		t.Errorf("charts: got %+v", report.Charts)
	}
	if len(src.scraped) != 2 {
		t.Errorf("scraped: got %v, want the two listings with reviews URLs", src.scraped)
	}
}

func TestAnalyzeCompetitorsListingTimeout(t *testing.T) {
	slow, fast := listing("Slow"), listing("Fast")
	src := &fakeReviews{
		byURL: map[string][]models.Review{fast.ReviewsURL: reviews("good")},
		block: map[string]bool{slow.ReviewsURL: true},
	}
	a := newTestAnalyzer(&fakeFinder{listings: []models.Listing{slow, fast}}, src, &fakeNarrator{},
		AnalyzerOptions{ListingTimeout: 50 * time.Millisecond})

	report := a.AnalyzeCompetitors(context.Background(), Request{Industry: "x", Region: "y"})
	results := report.Analysis.CompetitorResults
	if len(results) != 1 || results[0].Listing.Name != "Fast" {
		t.Errorf("expected only the fast listing, got %+v", results)
	}
}

func TestAnalyzeCompetitorsAllFail(t *testing.T) {
	l := listing("Empty")
	a := newTestAnalyzer(&fakeFinder{listings: []models.Listing{l}}, &fakeReviews{}, &fakeNarrator{}, AnalyzerOptions{})

	report := a.AnalyzeCompetitors(context.Background(), Request{Industry: "x", Region: "y"})
	if report.Error != "" {
		t.Errorf("Error: got %q", report.Error)
	}
	if report.Analysis.CompetitorResults == nil || len(report.Analysis.CompetitorResults) != 0 {
		t.Errorf("results: got %#v", report.Analysis.CompetitorResults)
	}
	if report.Analysis.Combined != nil {
		t.Errorf("combined should be empty, got %+v", report.Analysis.Combined)
	}
	if report.Analysis.IndustryNarrative == nil {
		t.Error("industry narrative should still be produced")
	}
}

func TestAnalyzeReviews(t *testing.T) {
	u1 := "https://www.google.com/maps/place/Mine/reviews"
	u2 := "https://www.google.com/maps/place/Other/reviews"
	src := &fakeReviews{byURL: map[string][]models.Review{
		u1: reviews("good", "meh"),
		u2: reviews("bad"),
	}}
	a := newTestAnalyzer(&fakeFinder{}, src, &fakeNarrator{}, AnalyzerOptions{})

	report := a.AnalyzeReviews(context.Background(), []string{u1, u2}, 0)
	if report.Error != "" {
		t.Fatalf("Error: %s", report.Error)
	}
	if len(report.Results) != 2 {
		t.Fatalf("results: got %d, want 2", len(report.Results))
	}
	if report.Combined.TotalReviews != 3 || report.Combined.Distribution[models.Neutral] != 1 {
		t.Errorf("combined: got %+v", report.Combined)
	}
}

func TestAnalyzeReviewsNothingScraped(t *testing.T) {
	a := newTestAnalyzer(&fakeFinder{}, &fakeReviews{}, &fakeNarrator{}, AnalyzerOptions{})
	report := a.AnalyzeReviews(context.Background(), []string{"https://www.google.com/maps/place/X/reviews"}, 5)
	if report.Error != "No reviews found" {
		t.Errorf("Error: got %q", report.Error)
	}
}

func TestListingNarrativeGetsAllLabeledReviews(t *testing.T) {
	l := listing("Busy")
	bodies := make([]string, 30)
	for i := range bodies {
		bodies[i] = "good"
	}
	narrator := &fakeNarrator{}
	src := &fakeReviews{byURL: map[string][]models.Review{l.ReviewsURL: reviews(bodies...)}}
	a := newTestAnalyzer(&fakeFinder{listings: []models.Listing{l}}, src, narrator, AnalyzerOptions{})

	a.AnalyzeCompetitors(context.Background(), Request{Industry: "x", Region: "y", ReviewsPerCompetitor: 20})
	if len(narrator.sampled) != 1 || narrator.sampled[0] != 20 {
		t.Errorf("narrator saw %v reviews, want [20]", narrator.sampled)
	}
}

func TestPrinter(t *testing.T) {
	l := listing("Alpha")
	src := &fakeReviews{byURL: map[string][]models.Review{l.ReviewsURL: reviews("good", "bad")}}
	a := newTestAnalyzer(&fakeFinder{listings: []models.Listing{l}}, src, &fakeNarrator{}, AnalyzerOptions{})
	report := a.AnalyzeCompetitors(context.Background(), Request{Industry: "diving", Region: "Jeddah"})

	var buf bytes.Buffer
	NewPrinter(&buf).Print(report)
	out := buf.String()
	for _, want := range []string{"diving in Jeddah", "Alpha", "50.0%", "diving/Jeddah/1", "en"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	NewPrinter(&buf).Print(&models.Report{Industry: "x", Region: "y", Error: "No competitors found"})
	if !strings.Contains(buf.String(), "No competitors found") {
		t.Errorf("error output: %s", buf.String())
	}
}
