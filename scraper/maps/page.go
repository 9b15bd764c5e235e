package maps

import (
	"context"
	"time"

	"competitor-sentiment/browser"
	"competitor-sentiment/config"
	"competitor-sentiment/utils"
)

// Page is the browser surface the scrapers drive. *browser.Session
// satisfies it.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	Count(ctx context.Context, el browser.Element) (int, error)
	OuterHTML(ctx context.Context, el browser.Element) (string, error)
	Click(ctx context.Context, el browser.Element) error
	ScrollBy(ctx context.Context, el browser.Element, dy int) error
	ScrollFrom(ctx context.Context, el browser.Element, dy int) error
	Visible(ctx context.Context, el browser.Element) (bool, error)
	Clickable(ctx context.Context, el browser.Element) (bool, error)
	Attr(ctx context.Context, el browser.Element, name string) (string, error)
	MarkByText(ctx context.Context, scope browser.Element, candidates string, texts []string, marker string) (int, error)
	Close()
}

// OpenFunc opens a fresh Page. Every call must yield an independent session.
type OpenFunc func(ctx context.Context) (Page, error)

// BrowserOpener adapts a launcher into an OpenFunc.
func BrowserOpener(l *browser.Launcher) OpenFunc {
	return func(ctx context.Context) (Page, error) {
		s, err := l.Open(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Timings holds the fixed settle delays and wait bounds used while scraping.
type Timings struct {
	SelectorWait time.Duration
	PageSettle   time.Duration
	TabSettle    time.Duration
	DetailSettle time.Duration
	ResultScroll time.Duration
	ReviewScroll time.Duration
	ExpandWait   time.Duration
	Poll         time.Duration
}

// TimingsFromConfig reads timings from the application config.
func TimingsFromConfig(cfg *config.Config) Timings {
	return Timings{
		SelectorWait: cfg.SelectorWaitTimeout,
		PageSettle:   cfg.PageSettleDelay,
		TabSettle:    cfg.TabSettleDelay,
		DetailSettle: cfg.DetailSettleDelay,
		ResultScroll: time.Second,
		ReviewScroll: cfg.ScrollDelay,
		ExpandWait:   2 * time.Second,
		Poll:         250 * time.Millisecond,
	}
}

// waitUntil polls cond until it reports true or timeout elapses. cond is
// always evaluated at least once.
func waitUntil(ctx context.Context, timeout, poll time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		if err := utils.Sleep(ctx, poll); err != nil {
			return false
		}
	}
}
