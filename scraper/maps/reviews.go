package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"competitor-sentiment/browser"
	"competitor-sentiment/models"
	"competitor-sentiment/utils"
)

var (
	reviewTabSelectors = []string{
		`button[data-tab-index="1"]`,
		`button[data-value="Reviews"]`,
		`button[aria-label*="Reviews"]`,
		`button[aria-label*="مراجعات"]`,
		`div[role="tablist"] button:nth-child(2)`,
	}

	reviewNodeSelectors = []string{
		"div.jftiEf.fontBodyMedium",
		"div[data-review-id]",
		`div[jsaction*="review"]`,
		"div.review",
		`div[role="article"]`,
		"div.jftiEf",
		"div[data-hveid]",
	}

	raterNameSelectors  = []string{"div.d4r55", `div[data-attrid="title"]`, "div.TSUbDb", "span.X43Kjb"}
	raterCountSelectors = []string{"div.RfnDt", "span.RfnDt", `div[data-attrid="reviewCount"]`}
	starSelectors       = []string{"span.kvMYJc", `div[role="img"]`, `span[aria-label*="star"]`}
	bodySelectors       = []string{"span.wiI7pd", `div[data-attrid="description"]`, "div.MyEned", "div.review-text"}

	expandClassSelector = `button.w8nwRe.kyuRq[aria-expanded="false"]`
	expandTexts         = []string{"عرض المزيد", "المزيد", "See more", "More"}
)

const (
	expandCandidates = "button"
	expandMarker     = "data-cs-expand"
	reviewScrollStep = 1000
	maxScrollStalls  = 20
)

// ReviewScraper collects reviews from one listing's reviews page.
type ReviewScraper struct {
	open    OpenFunc
	retry   *utils.RetryConfig
	timings Timings
	logger  *utils.Logger
}

// NewReviewScraper creates a ReviewScraper that opens a fresh page per call.
func NewReviewScraper(open OpenFunc, timings Timings, retry *utils.RetryConfig, logger *utils.Logger) *ReviewScraper {
	return &ReviewScraper{open: open, retry: retry, timings: timings, logger: logger}
}

// Scrape loads up to limit reviews from url. A page without a reviews tab or
// review nodes yields an empty slice, not an error.
func (r *ReviewScraper) Scrape(ctx context.Context, url string, limit int) ([]models.Review, error) {
	page, err := r.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("reviews: %w", err)
	}
	defer page.Close()

	r.logger.Info("[reviews] Scraping %s (limit %d)", url, limit)

	err = r.retry.Do(ctx, "reviews-page", func() error {
		return page.Navigate(ctx, url)
	})
	if err != nil {
		return nil, fmt.Errorf("reviews: %w", err)
	}
	if err := utils.Sleep(ctx, r.timings.PageSettle); err != nil {
		return nil, err
	}

	if !r.openReviewsTab(ctx, page) {
		r.logger.Warn("[reviews] No reviews tab found on %s", url)
		return []models.Review{}, ctx.Err()
	}

	sel, count := FirstMatch(ctx, page, reviewNodeSelectors)
	if count == 0 {
		r.logger.Warn("[reviews] No review nodes found on %s", url)
		return []models.Review{}, ctx.Err()
	}
	r.logger.Debug("[reviews] Initial reviews found: %d via %s", count, sel)

	count = r.loadMore(ctx, page, sel, count, limit)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if count > limit {
		count = limit
	}

	reviews := make([]models.Review, 0, count)
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		review, err := r.extractReview(ctx, page, browser.Query(sel).Nth(i), url)
		if err != nil {
			r.logger.Debug("[reviews] Review %d skipped: %v", i+1, err)
			continue
		}
		reviews = append(reviews, review)
	}

	r.logger.Info("[reviews] Retained %d of %d review nodes from %s", len(reviews), count, url)
	return reviews, nil
}

func (r *ReviewScraper) openReviewsTab(ctx context.Context, page Page) bool {
	sel, n := FirstMatch(ctx, page, reviewTabSelectors)
	if n == 0 {
		return false
	}
	if err := page.Click(ctx, browser.Query(sel)); err != nil {
		r.logger.Warn("[reviews] Could not click reviews tab %s: %v", sel, err)
		return false
	}
	return utils.Sleep(ctx, r.timings.TabSettle) == nil
}

// loadMore scrolls from the last known review until limit nodes are present
// or the count stops growing for maxScrollStalls rounds.
func (r *ReviewScraper) loadMore(ctx context.Context, page Page, sel string, count, limit int) int {
	stalls := 0
	for count < limit {
		last := browser.Query(sel).Nth(count - 1)
		if err := page.ScrollFrom(ctx, last, reviewScrollStep); err != nil {
			r.logger.Debug("[reviews] Scroll from %s failed: %v", last.Path(), err)
		}
		if err := utils.Sleep(ctx, r.timings.ReviewScroll); err != nil {
			return count
		}

		n, err := page.Count(ctx, browser.Query(sel))
		if err != nil && ctx.Err() != nil {
			return count
		}
		if n > count {
			r.logger.Debug("[reviews] Found %d total reviews (was %d)", n, count)
			count = n
			stalls = 0
			continue
		}

		stalls++
		if stalls >= maxScrollStalls {
			r.logger.Debug("[reviews] No new reviews after %d scrolls, stopping at %d", stalls, count)
			break
		}
	}
	return count
}

var errNoReviewText = errors.New("no review text")

// extractReview expands the node if truncated, then reads its fields from a
// markup snapshot.
func (r *ReviewScraper) extractReview(ctx context.Context, page Page, node browser.Element, url string) (models.Review, error) {
	r.expandIfTruncated(ctx, page, node)

	html, err := page.OuterHTML(ctx, node)
	if err != nil {
		return models.Review{}, err
	}
	sel, err := Fragment(html)
	if err != nil {
		return models.Review{}, err
	}

	starAria := make([]Extractor, len(starSelectors))
	for i, s := range starSelectors {
		starAria[i] = AriaOrText(s)
	}

	review := models.Review{
		RaterName:        FirstText(sel, "Unknown", Texts(raterNameSelectors...)...),
		RaterReviewCount: FirstText(sel, "N/A", Texts(raterCountSelectors...)...),
		StarText:         FirstText(sel, "No Rating", starAria...),
		Body:             FirstText(sel, models.NoReviewText, Texts(bodySelectors...)...),
		SourceURL:        url,
	}
	if !KeepReview(review.Body) {
		return models.Review{}, errNoReviewText
	}
	review.Stars = StarRating(review.StarText)
	return review, nil
}

// KeepReview reports whether a body is usable: non-empty and not the
// no-text placeholder in any casing.
func KeepReview(body string) bool {
	body = strings.TrimSpace(body)
	return body != "" && !strings.EqualFold(body, models.NoReviewText)
}

// expandIfTruncated clicks the first "show more" control inside node that
// actually expands. Failures are ignored.
func (r *ReviewScraper) expandIfTruncated(ctx context.Context, page Page, node browser.Element) {
	sel := expandClassSelector
	n, err := page.Count(ctx, node.Find(sel))
	if err != nil || n == 0 {
		n, err = page.MarkByText(ctx, node, expandCandidates, expandTexts, expandMarker)
		if err != nil || n == 0 {
			return
		}
		sel = "[" + expandMarker + "]"
	}

	for i := 0; i < n; i++ {
		btn := node.Find(sel).Nth(i)

		ready := waitUntil(ctx, r.timings.ExpandWait, r.timings.Poll, func() bool {
			ok, err := page.Clickable(ctx, btn)
			return err == nil && ok
		})
		if !ready {
			continue
		}
		if err := page.Click(ctx, btn); err != nil {
			continue
		}

		expanded := waitUntil(ctx, r.timings.ExpandWait, r.timings.Poll, func() bool {
			state, err := page.Attr(ctx, btn, "aria-expanded")
			if errors.Is(err, browser.ErrElementNotFound) {
				return true
			}
			if err == nil && state == "true" {
				return true
			}
			visible, err := page.Visible(ctx, btn)
			return err == nil && !visible
		})
		if expanded {
			return
		}
	}
}
