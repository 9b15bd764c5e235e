package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"competitor-sentiment/browser"
	"competitor-sentiment/config"
	"competitor-sentiment/insights"
	"competitor-sentiment/models"
	"competitor-sentiment/scraper/maps"
	"competitor-sentiment/services"
	"competitor-sentiment/sentiment"
	"competitor-sentiment/storage"
	"competitor-sentiment/utils"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg       *config.Config
	logger    *utils.Logger
	discovery *maps.Discovery
	reviews   *maps.ReviewScraper
}

// setup loads config and builds the browser-backed scrapers. Logs go to
// stderr so json and yaml output stay clean on stdout.
func setup() *app {
	cfg := config.Load()
	logger := utils.NewLoggerWithLevel(os.Stderr, cfg.LogLevel)

	launcher := browser.NewLauncher(browser.OptionsFromConfig(cfg), logger)
	open := maps.BrowserOpener(launcher)
	timings := maps.TimingsFromConfig(cfg)
	retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: logger}

	return &app{
		cfg:       cfg,
		logger:    logger,
		discovery: maps.NewDiscovery(open, timings, retry, logger),
		reviews:   maps.NewReviewScraper(open, timings, retry, logger),
	}
}

// analyzer loads the sentiment model and the narrative provider. The
// returned func releases the model.
func (a *app) analyzer(ctx context.Context) (*services.Analyzer, func()) {
	classifier, release := sentiment.Load(a.cfg, a.logger)
	a.logger.Info("[sentiment] Using model %s", classifier.ModelName())

	gen, err := insights.NewGenerator(ctx, a.cfg)
	switch {
	case errors.Is(err, insights.ErrNoCredential):
		a.logger.Warn("[insights] No API key for %s, narratives will use templates", a.cfg.NarrativeProvider)
	case err != nil:
		a.logger.Warn("[insights] %v, narratives will use templates", err)
		gen = nil
	default:
		a.logger.Info("[insights] Narratives by %s", gen.Name())
	}
	retry := utils.RetryConfig{MaxAttempts: a.cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: a.logger}
	narrator := insights.NewService(gen, a.cfg.NarrativeMaxTokens, retry, a.logger)

	analyzer := services.NewAnalyzer(a.discovery, a.reviews, classifier,
		sentiment.NewLanguageDetector(a.cfg.DetectLanguages), narrator,
		services.AnalyzerOptions{
			ListingTimeout: a.cfg.ListingTimeout,
			RunTimeout:     a.cfg.RunTimeout,
			RateLimitMs:    a.cfg.RateLimitMs,
		}, a.logger)
	return analyzer, release
}

func intOr(c *cli.Context, name string, fallback int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	return fallback
}

func CompetitorsAction(c *cli.Context) error {
	a := setup()
	analyzer, release := a.analyzer(c.Context)
	defer release()

	req := services.Request{
		Industry:             c.String("industry"),
		Region:               c.String("region"),
		MaxCompetitors:       intOr(c, "max-competitors", a.cfg.MaxCompetitors),
		ReviewsPerCompetitor: intOr(c, "reviews", a.cfg.ReviewsPerCompetitor),
	}
	a.logger.Info("=== Competitor sentiment analysis starting ===")
	a.logger.Info("Config: %s in %s | competitors: %d | reviews/competitor: %d | rate: %dms",
		req.Industry, req.Region, req.MaxCompetitors, req.ReviewsPerCompetitor, a.cfg.RateLimitMs)

	report := analyzer.AnalyzeCompetitors(c.Context, req)

	if err := a.export(c, report); err != nil {
		a.logger.Error("Export failed: %v", err)
	}

	if err := render(c.String("format"), report, func() {
		services.NewPrinter(os.Stdout).Print(report)
	}); err != nil {
		return err
	}
	if report.Error != "" {
		return cli.Exit("", 1)
	}
	return nil
}

func ReviewsAction(c *cli.Context) error {
	a := setup()
	analyzer, release := a.analyzer(c.Context)
	defer release()

	urls := c.StringSlice("url")
	limit := intOr(c, "limit", a.cfg.ReviewsPerCompetitor)
	a.logger.Info("=== Review sentiment analysis starting: %d URL(s), %d reviews each ===", len(urls), limit)

	report := analyzer.AnalyzeReviews(c.Context, urls, limit)

	if path := csvPath(c, a.cfg); path != "" {
		w, err := storage.NewCSVWriter(path)
		if err != nil {
			a.logger.Error("Failed to create CSV writer: %v", err)
		} else if err := writeReviews(w, report.Results); err != nil {
			a.logger.Error("CSV write failed: %v", err)
		} else {
			a.logger.Info("Labeled reviews saved to %s", path)
		}
	}

	if err := render(c.String("format"), report, func() {
		services.NewPrinter(os.Stdout).PrintReviews(report)
	}); err != nil {
		return err
	}
	if report.Error != "" {
		return cli.Exit("", 1)
	}
	return nil
}

func DiscoverAction(c *cli.Context) error {
	a := setup()
	q := maps.Query{Industry: c.String("industry"), Region: c.String("region")}

	listings, err := a.discovery.Search(c.Context, q, intOr(c, "max-competitors", a.cfg.MaxCompetitors))
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}
	if listings == nil {
		listings = []models.Listing{}
	}

	return render(c.String("format"), listings, func() {
		if len(listings) == 0 {
			fmt.Println("No competitors found")
			return
		}
		fmt.Printf("%-4s %-36s %-7s %-8s %s\n", "#", "Name", "Rating", "Reviews", "Address")
		fmt.Println(strings.Repeat("-", 100))
		for _, l := range listings {
			fmt.Printf("%-4d %-36s %-7.1f %-8d %s\n",
				l.Index, utils.Truncate(l.Name, 36), l.Rating, l.ReviewCount, utils.Truncate(l.Address, 48))
		}
		fmt.Printf("\nTotal: %d competitors\n", len(listings))
	})
}

// export writes the finished report to every configured target.
func (a *app) export(c *cli.Context, report *models.Report) error {
	var writers []storage.ReportWriter

	if path := csvPath(c, a.cfg); path != "" {
		w, err := storage.NewCSVWriter(path)
		if err != nil {
			return err
		}
		writers = append(writers, w)
	}

	if c.Bool("postgres") || a.cfg.PostgresEnabled() {
		pg, err := storage.NewPostgresWriter(c.Context, a.cfg.DSN())
		if err != nil {
			a.logger.Error("Failed to connect to PostgreSQL: %v", err)
		} else {
			writers = append(writers, pg)
		}
	}

	var errs []error
	for _, w := range writers {
		if err := w.WriteReport(report); err != nil {
			errs = append(errs, err)
		}
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(writers) > 0 && len(errs) == 0 {
		a.logger.Info("Report %s exported to %d target(s)", report.RunID, len(writers))
	}
	return errors.Join(errs...)
}

func writeReviews(w storage.ReviewWriter, results []models.CompetitorResult) error {
	defer w.Close()
	for _, res := range results {
		if err := w.WriteReviews(res.Reviews); err != nil {
			return err
		}
	}
	return nil
}

func csvPath(c *cli.Context, cfg *config.Config) string {
	if c.IsSet("csv") {
		return c.String("csv")
	}
	return cfg.CSVOutputPath
}

// render prints v as json or yaml, or calls text for the terminal report.
func render(format string, v any, text func()) error {
	switch strings.ToLower(format) {
	case "", "text":
		text()
		return nil
	case "json":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		fmt.Println(string(out))
		return nil
	case "yaml":
		out, err := toYAML(v)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		fmt.Print(string(out))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

// toYAML goes through the JSON encoding so field names and custom
// marshalers match the json output. Key order is kept.
func toYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle
	for _, child := range n.Content {
		blockStyle(child)
	}
}
