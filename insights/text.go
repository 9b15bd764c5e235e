package insights

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/russross/blackfriday/v2"

	"competitor-sentiment/utils"
)

const (
	summaryRunes       = 300
	maxRecommendations = 8
	maxActionItems     = 5
)

var (
	listItemRegexp  = regexp.MustCompile(`^(?:[•\-*]|\d+[.)])\s*`)
	actionKeywords  = []string{"action", "implement", "address", "fix", "improve"}
	markdownLinkExp = regexp.MustCompile(`\[(.*?)\]\((https?://[^\s)]+)\)`)
)

// FlattenMarkdown renders model output to HTML and keeps only its text.
func FlattenMarkdown(md string) string {
	md = markdownLinkExp.ReplaceAllString(md, "$1")
	html := blackfriday.Run([]byte(md), blackfriday.WithNoExtensions())
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return utils.NormaliseText(md)
	}
	return utils.NormaliseText(doc.Text())
}

// Summarize keeps the first 300 characters of the flattened text, marking
// a cut with "...".
func Summarize(text string) string {
	flat := []rune(FlattenMarkdown(text))
	if len(flat) <= summaryRunes {
		return string(flat)
	}
	return string(flat[:summaryRunes]) + "..."
}

// Recommendations collects bulleted or numbered lines.
func Recommendations(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !listItemRegexp.MatchString(line) {
			continue
		}
		if item := FlattenMarkdown(listItemRegexp.ReplaceAllString(line, "")); item != "" {
			out = append(out, item)
		}
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}

// ActionItems collects lines that mention a remedial verb.
func ActionItems(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		for _, kw := range actionKeywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			if item := FlattenMarkdown(listItemRegexp.ReplaceAllString(strings.TrimSpace(line), "")); item != "" {
				out = append(out, item)
			}
			break
		}
		if len(out) == maxActionItems {
			break
		}
	}
	return out
}
