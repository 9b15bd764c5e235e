package maps

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"competitor-sentiment/browser"
	"competitor-sentiment/utils"
)

// Extractor reads one field from a parsed fragment. ok is false when the
// strategy found nothing usable.
type Extractor func(sel *goquery.Selection) (value string, ok bool)

// Text extracts the trimmed text of the first node matching selector.
func Text(selector string) Extractor {
	return func(sel *goquery.Selection) (string, bool) {
		node := sel.Find(selector).First()
		if node.Length() == 0 {
			return "", false
		}
		text := utils.NormaliseText(node.Text())
		return text, text != ""
	}
}

// AriaOrText prefers the aria-label of the first match, then its text.
func AriaOrText(selector string) Extractor {
	return func(sel *goquery.Selection) (string, bool) {
		node := sel.Find(selector).First()
		if node.Length() == 0 {
			return "", false
		}
		if label, ok := node.Attr("aria-label"); ok && strings.TrimSpace(label) != "" {
			return strings.TrimSpace(label), true
		}
		text := utils.NormaliseText(node.Text())
		return text, text != ""
	}
}

// Href extracts the href of the first match.
func Href(selector string) Extractor {
	return func(sel *goquery.Selection) (string, bool) {
		href, ok := sel.Find(selector).First().Attr("href")
		href = strings.TrimSpace(href)
		return href, ok && href != ""
	}
}

// Texts builds a Text extractor per selector.
func Texts(selectors ...string) []Extractor {
	out := make([]Extractor, len(selectors))
	for i, s := range selectors {
		out[i] = Text(s)
	}
	return out
}

// Filtered wraps an extractor so values rejected by accept count as misses.
func Filtered(e Extractor, accept func(string) string) Extractor {
	return func(sel *goquery.Selection) (string, bool) {
		v, ok := e(sel)
		if !ok {
			return "", false
		}
		v = accept(v)
		return v, v != ""
	}
}

// FirstText tries extractors in order and returns the first success, or
// fallback when none succeeds.
func FirstText(sel *goquery.Selection, fallback string, extractors ...Extractor) string {
	for _, e := range extractors {
		if v, ok := e(sel); ok {
			return v
		}
	}
	return fallback
}

// FirstMatch returns the first selector with at least one match in the
// document, together with its match count.
func FirstMatch(ctx context.Context, page Page, selectors []string) (string, int) {
	for _, s := range selectors {
		n, err := page.Count(ctx, browser.Query(s))
		if err != nil {
			continue
		}
		if n > 0 {
			return s, n
		}
	}
	return "", 0
}

// Fragment parses markup returned by Page.OuterHTML.
func Fragment(html string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	return doc.Selection, nil
}
