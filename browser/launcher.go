package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"competitor-sentiment/config"
	"competitor-sentiment/utils"
)

// ErrBrowserUnavailable is returned when neither browser family could be started.
var ErrBrowserUnavailable = errors.New("browser unavailable")

// Family names a Chromium-based browser the launcher knows how to find.
type Family string

const (
	Chrome Family = "chrome"
	Edge   Family = "edge"
)

// stealthScript runs before any page script on every new document.
const stealthScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// Options configures launched browser instances.
type Options struct {
	Headless  bool
	Width     int
	Height    int
	UserAgent string
	Lang      string
	ChromeBin string
	EdgeBin   string
	// OpTimeout bounds each individual DOM call.
	OpTimeout time.Duration
	// NavTimeout bounds page navigations.
	NavTimeout time.Duration
}

// OptionsFromConfig maps application config onto launcher options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Headless:   cfg.Headless,
		Width:      cfg.ViewportWidth,
		Height:     cfg.ViewportHeight,
		UserAgent:  cfg.UserAgent,
		Lang:       cfg.BrowserLang,
		ChromeBin:  cfg.ChromeBin,
		EdgeBin:    cfg.EdgeBin,
		OpTimeout:  30 * time.Second,
		NavTimeout: 90 * time.Second,
	}
}

// Launcher starts browser sessions, trying Chrome first and Edge second.
type Launcher struct {
	opts   Options
	logger *utils.Logger
}

// NewLauncher creates a Launcher.
func NewLauncher(opts Options, logger *utils.Logger) *Launcher {
	return &Launcher{opts: opts, logger: logger}
}

// Open launches a fresh browser and returns a session bound to ctx.
// The caller must Close the session on every path.
func (l *Launcher) Open(ctx context.Context) (*Session, error) {
	var errs []error

	for _, family := range []Family{Chrome, Edge} {
		bin := resolveBinary(family, l.explicitBinary(family))
		if bin == "" && family != Chrome {
			errs = append(errs, fmt.Errorf("%s: no binary found", family))
			continue
		}

		s, err := l.start(ctx, family, bin)
		if err == nil {
			l.logger.Info("[browser] Started %s (%s)", family, displayBinary(bin))
			return s, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		l.logger.Warn("[browser] %s failed to start: %v", family, err)
		errs = append(errs, fmt.Errorf("%s: %w", family, err))
	}

	return nil, fmt.Errorf("%w: %w", ErrBrowserUnavailable, errors.Join(errs...))
}

func (l *Launcher) start(ctx context.Context, family Family, bin string) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("lang", l.opts.Lang),
		chromedp.WindowSize(l.opts.Width, l.opts.Height),
		chromedp.UserAgent(l.opts.UserAgent),
	)
	if bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)

	// Suppress chromedp log noise
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))

	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	}))
	if err != nil {
		cancelTab()
		cancelAlloc()
		return nil, err
	}

	return &Session{
		ctx:     tabCtx,
		family:  family,
		opts:    l.opts,
		logger:  l.logger,
		closers: []context.CancelFunc{cancelTab, cancelAlloc},
	}, nil
}

func (l *Launcher) explicitBinary(family Family) string {
	if family == Edge {
		return l.opts.EdgeBin
	}
	return l.opts.ChromeBin
}

// resolveBinary finds a browser executable: the explicit path, then a
// binary under ./bin, then PATH, then well-known install locations.
func resolveBinary(family Family, explicit string) string {
	if explicit != "" {
		return explicit
	}

	var names, paths []string
	switch family {
	case Edge:
		names = []string{"microsoft-edge-stable", "microsoft-edge", "msedge"}
		paths = []string{
			"/usr/bin/microsoft-edge-stable",
			"/usr/bin/microsoft-edge",
			"/opt/microsoft/msedge/msedge",
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
		}
	default:
		names = []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
		paths = []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
			"/snap/bin/chromium",
			"/opt/google/chrome/google-chrome",
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		}
	}

	for _, name := range names {
		local := filepath.Join("bin", name)
		if info, err := os.Stat(local); err == nil && !info.IsDir() {
			if abs, err := filepath.Abs(local); err == nil {
				return abs
			}
			return local
		}
	}

	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

func displayBinary(bin string) string {
	if bin == "" {
		return "default lookup"
	}
	return bin
}
