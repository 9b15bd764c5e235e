package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"competitor-sentiment/browser"
	"competitor-sentiment/models"
	"competitor-sentiment/utils"
)

var (
	resultReadySelectors = []string{
		"[data-value='Directions']",
		"[role='main']",
		".Nv2PK",
		".lI9IFe",
		"[jsaction*='pane.rating']",
		".section-result",
	}

	resultItemSelectors = []string{
		"[data-result-index]",
		".Nv2PK",
		".lI9IFe",
		".section-result",
		"[role='article']",
		".VkpGBb",
	}

	detailNameSelectors = []string{
		"h1[data-attrid='title']",
		"h1",
		".x3AX1-LfntMc-header-title-title",
		".SPZz6b h1",
		"[data-attrid='title']",
		"a.hfpxzc",
		"[role='article'] a.hfpxzc",
	}
	detailRatingSelectors = []string{
		"[jsaction*='pane.rating.moreReviews']",
		".fontDisplayLarge",
		".section-star-display",
		"[data-attrid='star']",
	}
	detailAddressSelectors = []string{
		"[data-item-id='address']",
		".Io6YTe",
		".LrzXr",
		"[data-attrid='kc:/location/location:address']",
	}
	detailPhoneSelectors = []string{
		"[data-item-id*='phone']",
		"[data-attrid='kc:/business/phone']",
		".fontBodyMedium[data-value*='+']",
	}

	listNameSelectors = []string{
		"a.hfpxzc",
		"[role='article'] a.hfpxzc",
		".fontHeadlineSmall",
		"h3",
		".section-result-title",
		".fontBodyMedium",
	}
	listRatingSelectors = []string{
		".section-star-display",
		".fontCaption",
		"[aria-label*='stars']",
		".section-rating",
	}
	listAddressSelectors = []string{
		".section-result-location",
		".fontBodyMedium",
		".section-result-details",
	}
)

const (
	resultsContainer = "[role='main']"
	resultScrollStep = 1000
)

var errNoName = errors.New("no usable name")

// Discovery finds competitor listings for an industry in a region.
type Discovery struct {
	open    OpenFunc
	cleaner *Cleaner
	retry   *utils.RetryConfig
	timings Timings
	logger  *utils.Logger
}

// NewDiscovery creates a Discovery that opens one page per search.
func NewDiscovery(open OpenFunc, timings Timings, retry *utils.RetryConfig, logger *utils.Logger) *Discovery {
	return &Discovery{
		open:    open,
		cleaner: NewCleaner(logger),
		retry:   retry,
		timings: timings,
		logger:  logger,
	}
}

// Search returns up to maxResults listings for q. Per-item extraction
// failures are logged and skipped; only session failures are returned.
func (d *Discovery) Search(ctx context.Context, q Query, maxResults int) ([]models.Listing, error) {
	page, err := d.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}
	defer page.Close()

	url := SearchURL(q)
	d.logger.Info("[discovery] Searching %q — %s", q.String(), url)

	err = d.retry.Do(ctx, "maps-search", func() error {
		return page.Navigate(ctx, url)
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}

	if d.waitForResults(ctx, page) {
		d.scrollResults(ctx, page, maxResults)
	} else {
		d.logger.Warn("[discovery] No results container appeared, extracting whatever loaded")
	}

	raw := d.collect(ctx, page, maxResults)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	listings := d.cleaner.Clean(raw)
	d.logger.Info("[discovery] Total competitors extracted: %d", len(listings))
	return listings, nil
}

func (d *Discovery) waitForResults(ctx context.Context, page Page) bool {
	for _, sel := range resultReadySelectors {
		err := page.WaitFor(ctx, sel, d.timings.SelectorWait)
		if err == nil {
			d.logger.Debug("[discovery] Results ready via %s", sel)
			return true
		}
		if ctx.Err() != nil {
			return false
		}
	}
	return false
}

func (d *Discovery) scrollResults(ctx context.Context, page Page, maxResults int) {
	container := browser.Query(resultsContainer)
	for i := 0; i < maxResults/5; i++ {
		if err := page.ScrollBy(ctx, container, resultScrollStep); err != nil {
			d.logger.Warn("[discovery] Error scrolling for more results: %v", err)
			return
		}
		if err := utils.Sleep(ctx, d.timings.ResultScroll); err != nil {
			return
		}
	}
}

func (d *Discovery) collect(ctx context.Context, page Page, maxResults int) []*models.RawListing {
	sel, count := FirstMatch(ctx, page, resultItemSelectors)
	if count == 0 {
		d.logger.Warn("[discovery] No result items found with any selector")
		return nil
	}
	d.logger.Info("[discovery] Found %d result items using %s", count, sel)

	if count > maxResults {
		count = maxResults
	}

	out := make([]*models.RawListing, 0, count)
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			break
		}
		item := browser.Query(sel).Nth(i)

		raw, err := d.extractDetail(ctx, page, item, i)
		if err != nil {
			d.logger.Debug("[discovery] Detail extraction for result %d failed: %v", i+1, err)
			raw, err = d.extractListItem(ctx, page, item, i)
		}
		if err != nil {
			d.logger.Warn("[discovery] Could not extract data for competitor %d: %v", i+1, err)
			continue
		}

		d.logger.Info("[discovery] Extracted competitor %d: %s (%s)", i+1, raw.Name, raw.Source)
		out = append(out, raw)
	}
	return out
}

// extractDetail clicks the result and reads the detail pane.
func (d *Discovery) extractDetail(ctx context.Context, page Page, item browser.Element, index int) (*models.RawListing, error) {
	itemHTML, err := page.OuterHTML(ctx, item)
	if err != nil {
		return nil, err
	}
	itemSel, err := Fragment(itemHTML)
	if err != nil {
		return nil, err
	}

	if err := page.Click(ctx, item); err != nil {
		d.logger.Warn("[discovery] Could not click result %d, reading current pane: %v", index+1, err)
	} else if err := utils.Sleep(ctx, d.timings.DetailSettle); err != nil {
		return nil, err
	}

	docHTML, err := page.OuterHTML(ctx, browser.Query("html"))
	if err != nil {
		return nil, err
	}
	doc, err := Fragment(docHTML)
	if err != nil {
		return nil, err
	}

	name := FirstText(doc, "", filterAll(nameStrategies(detailNameSelectors...), SanitizeName)...)
	if name == "" {
		name = FirstText(itemSel, "", filterAll(Texts(".fontHeadlineSmall", "h3"), SanitizeName)...)
	}
	if name == "" {
		return nil, errNoName
	}

	location, err := page.Location(ctx)
	if err != nil {
		return nil, err
	}

	return &models.RawListing{
		Name:       name,
		RatingText: ratingText(doc, detailRatingSelectors),
		Address:    FirstText(doc, "", Texts(detailAddressSelectors...)...),
		Phone:      FirstText(doc, "", Texts(detailPhoneSelectors...)...),
		URL:        location,
		Index:      index,
		Source:     "detail",
		ScrapedAt:  time.Now(),
	}, nil
}

// extractListItem reads the result node without navigating.
func (d *Discovery) extractListItem(ctx context.Context, page Page, item browser.Element, index int) (*models.RawListing, error) {
	html, err := page.OuterHTML(ctx, item)
	if err != nil {
		return nil, err
	}
	sel, err := Fragment(html)
	if err != nil {
		return nil, err
	}

	name := FirstText(sel, "", filterAll(nameStrategies(listNameSelectors...), SanitizeName)...)
	if name == "" {
		return nil, errNoName
	}

	url := placeholderURL(name)
	if href := FirstText(sel, "", Href("a.hfpxzc")); strings.Contains(href, "/place/") {
		url = href
	}

	address := FirstText(sel, "", filterAll(Texts(listAddressSelectors...), notRatingText)...)

	return &models.RawListing{
		Name:       name,
		RatingText: ratingText(sel, listRatingSelectors),
		Address:    address,
		URL:        url,
		Index:      index,
		Source:     "list",
		ScrapedAt:  time.Now(),
	}, nil
}

// ratingText returns the first candidate text that parses to a positive
// rating, else the last non-empty candidate.
func ratingText(sel *goquery.Selection, selectors []string) string {
	var last string
	for _, s := range selectors {
		text, ok := Text(s)(sel)
		if !ok {
			continue
		}
		last = text
		if ParseRating(text) > 0 {
			return text
		}
	}
	return last
}

// nameStrategies reads title links by aria-label, since their visible text
// is often empty, and everything else by text.
func nameStrategies(selectors ...string) []Extractor {
	out := make([]Extractor, len(selectors))
	for i, s := range selectors {
		if strings.Contains(s, "a.hfpxzc") {
			out[i] = AriaOrText(s)
			continue
		}
		out[i] = Text(s)
	}
	return out
}

func filterAll(extractors []Extractor, accept func(string) string) []Extractor {
	out := make([]Extractor, len(extractors))
	for i, e := range extractors {
		out[i] = Filtered(e, accept)
	}
	return out
}

func notRatingText(s string) string {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "rating") || strings.Contains(lower, "star") {
		return ""
	}
	return s
}
