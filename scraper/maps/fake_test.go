package maps

import (
	"context"
	"fmt"
	"sync"
	"time"

	"competitor-sentiment/browser"
	"competitor-sentiment/utils"
)

// fakePage serves canned DOM state keyed by browser.Element paths.
type fakePage struct {
	mu sync.Mutex

	location    string
	ready       map[string]bool
	counts      map[string][]int // count key -> value after 0, 1, 2... wheel scrolls
	html        map[string]string
	docAfter    map[string]string // document html after clicking a path
	locAfter    map[string]string // location after clicking a path
	clickErr    map[string]error
	marked      map[string]int
	stuck       map[string]bool // clicked paths that keep aria-expanded="false"
	navigateErr error

	wheel     int
	scrollBys int
	lastClick string
	clicks    []string
	navigated []string
	closed    bool
}

func newFakePage() *fakePage {
	return &fakePage{
		ready:    map[string]bool{},
		counts:   map[string][]int{},
		html:     map[string]string{},
		docAfter: map[string]string{},
		locAfter: map[string]string{},
		clickErr: map[string]error{},
		marked:   map[string]int{},
		stuck:    map[string]bool{},
	}
}

func countKey(el browser.Element) string {
	if el.Parent == nil {
		return el.Selector
	}
	return el.Parent.Path() + " > " + el.Selector
}

func (f *fakePage) opener() OpenFunc {
	return func(ctx context.Context) (Page, error) { return f, nil }
}

func (f *fakePage) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigated = append(f.navigated, url)
	return f.navigateErr
}

func (f *fakePage) Location(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if loc, ok := f.locAfter[f.lastClick]; ok {
		return loc, nil
	}
	return f.location, nil
}

func (f *fakePage) WaitFor(_ context.Context, selector string, _ time.Duration) error {
	if f.ready[selector] {
		return nil
	}
	return fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
}

func (f *fakePage) Count(_ context.Context, el browser.Element) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seq := f.counts[countKey(el)]
	if len(seq) == 0 {
		return 0, nil
	}
	i := f.wheel
	if i >= len(seq) {
		i = len(seq) - 1
	}
	return seq[i], nil
}

func (f *fakePage) OuterHTML(_ context.Context, el browser.Element) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if el.Selector == "html" && el.Parent == nil {
		if doc, ok := f.docAfter[f.lastClick]; ok {
			return doc, nil
		}
	}
	if h, ok := f.html[el.Path()]; ok {
		return h, nil
	}
	return "", fmt.Errorf("%w: %s", browser.ErrElementNotFound, el.Path())
}

func (f *fakePage) Click(_ context.Context, el browser.Element) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.clickErr[el.Path()]; err != nil {
		return err
	}
	f.lastClick = el.Path()
	f.clicks = append(f.clicks, el.Path())
	return nil
}

func (f *fakePage) ScrollBy(context.Context, browser.Element, int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrollBys++
	return nil
}

func (f *fakePage) ScrollFrom(context.Context, browser.Element, int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wheel++
	return nil
}

func (f *fakePage) Visible(context.Context, browser.Element) (bool, error) { return true, nil }

func (f *fakePage) Clickable(context.Context, browser.Element) (bool, error) { return true, nil }

// Attr reports aria-expanded="true" for anything that has been clicked,
// unless the path is stuck.
func (f *fakePage) Attr(_ context.Context, el browser.Element, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name == "aria-expanded" {
		if f.stuck[el.Path()] {
			return "false", nil
		}
		for _, c := range f.clicks {
			if c == el.Path() {
				return "true", nil
			}
		}
		return "false", nil
	}
	return "", nil
}

func (f *fakePage) MarkByText(_ context.Context, scope browser.Element, _ string, _ []string, _ string) (int, error) {
	return f.marked[scope.Path()], nil
}

func (f *fakePage) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakePage) clicked(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.clicks {
		if c == path {
			return true
		}
	}
	return false
}

func testRetry() *utils.RetryConfig {
	return &utils.RetryConfig{MaxAttempts: 1, Logger: newTestLogger()}
}

// zeroTimings disables every settle delay.
var zeroTimings = Timings{}
