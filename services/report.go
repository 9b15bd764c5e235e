package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"competitor-sentiment/models"
	"competitor-sentiment/utils"
)

// Printer renders reports for a terminal.
type Printer struct {
	w io.Writer
}

// NewPrinter writes to w, or stdout when w is nil.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{w: w}
}

var bucketColors = map[models.Sentiment]string{
	models.Positive: "\033[1;32m",
	models.Neutral:  "\033[1;33m",
	models.Negative: "\033[1;31m",
}

func (p *Printer) Print(r *models.Report) {
	sep := strings.Repeat("═", 64)
	thin := strings.Repeat("─", 64)

	fmt.Fprintf(p.w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(p.w, "\033[1;35m  📊 COMPETITOR SENTIMENT: %s in %s\033[0m\n", r.Industry, r.Region)
	fmt.Fprintf(p.w, "\033[1;35m%s\033[0m\n\n", sep)

	if r.Error != "" {
		fmt.Fprintf(p.w, "  \033[1;31mError: %s\033[0m\n", r.Error)
		fmt.Fprintf(p.w, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	// Overview
	fmt.Fprintf(p.w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(p.w, "  %s\n", thin)
	fmt.Fprintf(p.w, "  Run ID               : %s\n", r.RunID)
	fmt.Fprintf(p.w, "  Competitors found    : \033[1m%d\033[0m\n", len(r.Competitors))
	fmt.Fprintf(p.w, "  Competitors analyzed : \033[1m%d\033[0m\n", len(r.Analysis.CompetitorResults))
	if c := r.Analysis.Combined; c != nil {
		fmt.Fprintf(p.w, "  Reviews analyzed     : \033[1m%d\033[0m\n", c.TotalReviewsAnalyzed)
	}
	fmt.Fprintln(p.w)

	p.printDistribution("Industry Sentiment", combinedSummary(r.Analysis.Combined), thin)
	p.printCompetitors(r.Analysis.CompetitorResults, thin)
	p.printLanguages(combinedSummary(r.Analysis.Combined), thin)

	if n := r.Analysis.IndustryNarrative; n != nil {
		fmt.Fprintf(p.w, "\033[1;33m  Industry Insights (%s)\033[0m\n", n.Source)
		fmt.Fprintf(p.w, "  %s\n", thin)
		fmt.Fprintf(p.w, "  %s\n", n.Summary)
		if n.Error != "" {
			fmt.Fprintf(p.w, "  \033[1;31mError: %s\033[0m\n", n.Error)
		}
		fmt.Fprintln(p.w)
	}

	fmt.Fprintf(p.w, "\033[1;35m%s\033[0m\n\n", sep)
}

// PrintReviews renders a direct-URL analysis.
func (p *Printer) PrintReviews(r *models.ReviewReport) {
	sep := strings.Repeat("═", 64)
	thin := strings.Repeat("─", 64)

	fmt.Fprintf(p.w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(p.w, "\033[1;35m  📊 REVIEW SENTIMENT\033[0m\n")
	fmt.Fprintf(p.w, "\033[1;35m%s\033[0m\n\n", sep)

	if r.Error != "" {
		fmt.Fprintf(p.w, "  \033[1;31mError: %s\033[0m\n", r.Error)
		fmt.Fprintf(p.w, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	p.printDistribution("Overall Sentiment", combinedSummary(r.Combined), thin)
	p.printCompetitors(r.Results, thin)
	p.printLanguages(combinedSummary(r.Combined), thin)

	fmt.Fprintf(p.w, "\033[1;35m%s\033[0m\n\n", sep)
}

func combinedSummary(c *models.IndustrySummary) *models.SentimentSummary {
	if c == nil {
		return nil
	}
	return &c.SentimentSummary
}

func (p *Printer) printDistribution(title string, s *models.SentimentSummary, thin string) {
	fmt.Fprintf(p.w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(p.w, "  %s\n", thin)
	if s == nil {
		fmt.Fprintf(p.w, "  No reviews analyzed\n\n")
		return
	}
	for _, b := range models.Buckets {
		pct := s.Percentages[b]
		bar := strings.Repeat("█", int(pct/2.5+0.5))
		fmt.Fprintf(p.w, "  %-9s %s%-40s\033[0m %5.1f%% (%d)\n", b, bucketColors[b], bar, pct, s.Distribution[b])
	}
	fmt.Fprintf(p.w, "  Average polarity : \033[1m%+.2f\033[0m\n", s.AveragePolarity)
	fmt.Fprintf(p.w, "  Average stars    : \033[1m%.2f ★\033[0m\n", s.AverageStarRating)
	fmt.Fprintln(p.w)
}

func (p *Printer) printCompetitors(results []models.CompetitorResult, thin string) {
	fmt.Fprintf(p.w, "\033[1;33m  Competitors\033[0m\n")
	fmt.Fprintf(p.w, "  %s\n", thin)
	if len(results) == 0 {
		fmt.Fprintf(p.w, "  No competitor could be analyzed\n\n")
		return
	}
	for i, r := range results {
		var pos, neg, pol float64
		if r.Summary != nil {
			pos = r.Summary.Percentages[models.Positive]
			neg = r.Summary.Percentages[models.Negative]
			pol = r.Summary.AveragePolarity
		}
		fmt.Fprintf(p.w, "  \033[1m%d.\033[0m %-32s \033[1;32m%.1f ★\033[0m  %3d reviews  +%.0f%% / -%.0f%%  pol %+.2f\n",
			i+1, utils.Truncate(r.Listing.Name, 32), r.Listing.Rating, r.ReviewsAnalyzed, pos, neg, pol)
		if r.Narrative != nil && r.Narrative.Summary != "" {
			fmt.Fprintf(p.w, "     %s\n", utils.Truncate(r.Narrative.Summary, 100))
		}
	}
	fmt.Fprintln(p.w)
}

func (p *Printer) printLanguages(s *models.SentimentSummary, thin string) {
	if s == nil || len(s.Languages) == 0 {
		return
	}
	type langCount struct {
		lang  string
		count int
	}
	var langs []langCount
	for l, n := range s.Languages {
		langs = append(langs, langCount{l, n})
	}
	sort.Slice(langs, func(i, j int) bool {
		if langs[i].count != langs[j].count {
			return langs[i].count > langs[j].count
		}
		return langs[i].lang < langs[j].lang
	})

	fmt.Fprintf(p.w, "\033[1;33m  Review Languages\033[0m\n")
	fmt.Fprintf(p.w, "  %s\n", thin)
	for _, lc := range langs {
		fmt.Fprintf(p.w, "  %-6s %s (%d)\n", lc.lang, strings.Repeat("█", min(lc.count, 40)), lc.count)
	}
	fmt.Fprintln(p.w)
}
