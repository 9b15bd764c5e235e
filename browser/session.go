package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"competitor-sentiment/utils"
)

// ErrElementNotFound is returned when an addressed element does not exist
// or a wait for it timed out.
var ErrElementNotFound = errors.New("element not found")

// Session is one browser tab owned by a single caller.
type Session struct {
	ctx    context.Context
	family Family
	opts   Options
	logger *utils.Logger

	closeOnce sync.Once
	closers   []context.CancelFunc
}

// Close tears down the tab and the browser process. Safe to call twice.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		for _, c := range s.closers {
			c()
		}
		s.logger.Debug("[browser] Session closed (%s)", s.family)
	})
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *Session) eval(ctx context.Context, js string, out any) error {
	return s.run(ctx, s.opts.OpTimeout, chromedp.Evaluate(js, out))
}

type lookup struct {
	OK    bool   `json:"ok"`
	Value string `json:"value"`
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, s.opts.NavTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Location returns the current page URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, s.opts.OpTimeout, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("location: %w", err)
	}
	return loc, nil
}

// WaitFor blocks until selector matches a ready node or timeout elapses.
func (s *Session) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	err := s.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return fmt.Errorf("wait for %s: %w", selector, err)
}

// Count returns how many nodes match el.Selector inside el's scope.
func (s *Session) Count(ctx context.Context, el Element) (int, error) {
	js := fmt.Sprintf("((s)=>s?s.querySelectorAll(%s).length:0)(%s)", quote(el.Selector), el.scopeJS())
	var n int
	if err := s.eval(ctx, js, &n); err != nil {
		return 0, fmt.Errorf("count %s: %w", el.Path(), err)
	}
	return n, nil
}

// OuterHTML returns the serialized markup of el.
func (s *Session) OuterHTML(ctx context.Context, el Element) (string, error) {
	js := fmt.Sprintf("((e)=>e?{ok:true,value:e.outerHTML}:{ok:false,value:''})(%s)", el.js())
	var res lookup
	if err := s.eval(ctx, js, &res); err != nil {
		return "", fmt.Errorf("outer html %s: %w", el.Path(), err)
	}
	if !res.OK {
		return "", fmt.Errorf("%w: %s", ErrElementNotFound, el.Path())
	}
	return res.Value, nil
}

// Click dispatches a programmatic click, bypassing overlapping elements.
func (s *Session) Click(ctx context.Context, el Element) error {
	js := fmt.Sprintf("((e)=>{if(!e)return false;e.click();return true;})(%s)", el.js())
	var ok bool
	if err := s.eval(ctx, js, &ok); err != nil {
		return fmt.Errorf("click %s: %w", el.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrElementNotFound, el.Path())
	}
	return nil
}

// ScrollBy moves el's scrollTop by dy pixels.
func (s *Session) ScrollBy(ctx context.Context, el Element, dy int) error {
	js := fmt.Sprintf("((e)=>{if(!e)return false;e.scrollTop=e.scrollTop+%d;return true;})(%s)", dy, el.js())
	var ok bool
	if err := s.eval(ctx, js, &ok); err != nil {
		return fmt.Errorf("scroll %s: %w", el.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrElementNotFound, el.Path())
	}
	return nil
}

// ScrollFrom sends a mouse-wheel event of dy pixels originating at el's centre,
// so the nearest scrollable ancestor receives it.
func (s *Session) ScrollFrom(ctx context.Context, el Element, dy int) error {
	js := fmt.Sprintf(`((e)=>{if(!e)return {ok:false,x:0,y:0};
e.scrollIntoView({block:'center'});
const r=e.getBoundingClientRect();
return {ok:true,x:r.left+r.width/2,y:r.top+r.height/2};})(%s)`, el.js())

	var box struct {
		OK bool    `json:"ok"`
		X  float64 `json:"x"`
		Y  float64 `json:"y"`
	}
	if err := s.eval(ctx, js, &box); err != nil {
		return fmt.Errorf("locate %s: %w", el.Path(), err)
	}
	if !box.OK {
		return fmt.Errorf("%w: %s", ErrElementNotFound, el.Path())
	}

	wheel := chromedp.ActionFunc(func(ctx context.Context) error {
		return input.DispatchMouseEvent(input.MouseWheel, box.X, box.Y).
			WithDeltaX(0).
			WithDeltaY(float64(dy)).
			Do(ctx)
	})
	if err := s.run(ctx, s.opts.OpTimeout, wheel); err != nil {
		return fmt.Errorf("wheel %s: %w", el.Path(), err)
	}
	return nil
}

// Visible reports whether el exists and occupies layout space.
func (s *Session) Visible(ctx context.Context, el Element) (bool, error) {
	js := fmt.Sprintf(`((e)=>{if(!e)return false;
const r=e.getBoundingClientRect();const st=getComputedStyle(e);
return r.width>0&&r.height>0&&st.visibility!=='hidden'&&st.display!=='none';})(%s)`, el.js())
	var ok bool
	if err := s.eval(ctx, js, &ok); err != nil {
		return false, fmt.Errorf("visible %s: %w", el.Path(), err)
	}
	return ok, nil
}

// Clickable reports whether el is visible and not disabled.
func (s *Session) Clickable(ctx context.Context, el Element) (bool, error) {
	js := fmt.Sprintf(`((e)=>{if(!e||e.disabled)return false;
const r=e.getBoundingClientRect();const st=getComputedStyle(e);
return r.width>0&&r.height>0&&st.visibility!=='hidden'&&st.pointerEvents!=='none';})(%s)`, el.js())
	var ok bool
	if err := s.eval(ctx, js, &ok); err != nil {
		return false, fmt.Errorf("clickable %s: %w", el.Path(), err)
	}
	return ok, nil
}

// Attr reads an attribute of el; a missing attribute yields "".
func (s *Session) Attr(ctx context.Context, el Element, name string) (string, error) {
	js := fmt.Sprintf("((e)=>e?{ok:true,value:e.getAttribute(%s)||''}:{ok:false,value:''})(%s)",
		quote(name), el.js())
	var res lookup
	if err := s.eval(ctx, js, &res); err != nil {
		return "", fmt.Errorf("attr %s@%s: %w", el.Path(), name, err)
	}
	if !res.OK {
		return "", fmt.Errorf("%w: %s", ErrElementNotFound, el.Path())
	}
	return res.Value, nil
}

// MarkByText tags every node inside scope matching candidates whose trimmed
// text equals, or whose aria-label contains, one of texts with the attribute
// marker. It returns how many nodes were tagged.
func (s *Session) MarkByText(ctx context.Context, scope Element, candidates string, texts []string, marker string) (int, error) {
	js := fmt.Sprintf(`((s)=>{if(!s)return 0;const texts=%s;let n=0;
s.querySelectorAll(%s).forEach((b)=>{
const t=(b.textContent||'').trim();const a=b.getAttribute('aria-label')||'';
if(texts.some((x)=>t===x||a.includes(x))){b.setAttribute(%s,'1');n++;}});
return n;})(%s)`, quoteAll(texts), quote(candidates), quote(marker), scope.js())

	var n int
	if err := s.eval(ctx, js, &n); err != nil {
		return 0, fmt.Errorf("mark %s: %w", scope.Path(), err)
	}
	return n, nil
}
