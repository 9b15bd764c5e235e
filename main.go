package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outputFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Value: "text",
			Usage: "output format: text, json or yaml",
		},
		&cli.StringFlag{
			Name:  "csv",
			Usage: "write labeled reviews to this CSV file (overrides CSV_OUTPUT_PATH)",
		},
	}

	app := &cli.App{
		Name:  "competitor-sentiment",
		Usage: "discover competitors on Google Maps and analyze their review sentiment",
		Commands: []*cli.Command{
			{
				Name:   "competitors",
				Usage:  "analyze review sentiment for the top competitors of an industry in a region",
				Action: CompetitorsAction,
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "industry", Aliases: []string{"i"}, Required: true, Usage: "business category, e.g. cafes"},
					&cli.StringFlag{Name: "region", Aliases: []string{"r"}, Required: true, Usage: "city or area, e.g. Riyadh"},
					&cli.IntFlag{Name: "max-competitors", Aliases: []string{"n"}, Usage: "number of competitors to analyze (default MAX_COMPETITORS)"},
					&cli.IntFlag{Name: "reviews", Usage: "reviews to scrape per competitor (default REVIEWS_PER_COMPETITOR)"},
					&cli.BoolFlag{Name: "postgres", Usage: "export the report to PostgreSQL even if POSTGRES_HOST is unset"},
				}, outputFlags...),
			},
			{
				Name:   "reviews",
				Usage:  "analyze review sentiment for explicit Google Maps place URLs",
				Action: ReviewsAction,
				Flags: append([]cli.Flag{
					&cli.StringSliceFlag{Name: "url", Aliases: []string{"u"}, Required: true, Usage: "place or reviews URL (repeatable)"},
					&cli.IntFlag{Name: "limit", Usage: "reviews to scrape per URL (default REVIEWS_PER_COMPETITOR)"},
				}, outputFlags...),
			},
			{
				Name:   "discover",
				Usage:  "list competitors without scraping reviews",
				Action: DiscoverAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "industry", Aliases: []string{"i"}, Required: true},
					&cli.StringFlag{Name: "region", Aliases: []string{"r"}, Required: true},
					&cli.IntFlag{Name: "max-competitors", Aliases: []string{"n"}},
					&cli.StringFlag{Name: "format", Value: "text", Usage: "output format: text, json or yaml"},
				},
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
