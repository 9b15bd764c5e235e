package maps

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const mapsBaseURL = "https://www.google.com/maps"

var (
	// ratingRegexp captures the leading decimal of "4.5 (123 reviews)"
	ratingRegexp = regexp.MustCompile(`^(\d+\.?\d*)`)
	// reviewCountRegexp captures "(123 reviews)" or "1,234 review"
	reviewCountRegexp = regexp.MustCompile(`(?i)\(?(\d[\d,]*)\s*reviews?\)?`)
	// starRegexp captures the first decimal anywhere in a star label
	starRegexp = regexp.MustCompile(`(\d+\.?\d*)`)

	placeIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/place/[^/]+/@[^/]+/(\d+),`),
		regexp.MustCompile(`!3d[^!]*!4d[^!]*!16s([^!]+)`),
		regexp.MustCompile(`place_id=([^&]+)`),
	}
)

// placeholderNames are result-pane headers that are never business names.
var placeholderNames = map[string]struct{}{
	"النتائج": {},
	"النتايج": {},
	"نتائج":   {},
	"Results": {},
	"RESULTS": {},
}

// Query is one discovery search.
type Query struct {
	Industry string
	Region   string
}

// String renders the query the way it is typed into the search box.
func (q Query) String() string {
	return strings.TrimSpace(q.Industry) + " in " + strings.TrimSpace(q.Region)
}

// SearchURL builds the maps search URL for q.
func SearchURL(q Query) string {
	return mapsBaseURL + "/search/" + strings.ReplaceAll(q.String(), " ", "+")
}

// placeholderURL is used for listings read from the result list without a place link.
func placeholderURL(name string) string {
	return mapsBaseURL + "/search/" + strings.ReplaceAll(name, " ", "+")
}

// SanitizeName trims raw and returns "" for header strings and names of
// two characters or fewer.
func SanitizeName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}
	if _, bad := placeholderNames[name]; bad {
		return ""
	}
	if utf8.RuneCountInString(name) <= 2 {
		return ""
	}
	return name
}

// asciiDigits maps Arabic-Indic and Eastern Arabic-Indic digits, and the
// Arabic decimal and thousands separators, to their ASCII forms.
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '\u0660' && r <= '\u0669':
			return '0' + (r - '\u0660')
		case r >= '\u06F0' && r <= '\u06F9':
			return '0' + (r - '\u06F0')
		case r == '\u066B':
			return '.'
		case r == '\u066C':
			return ','
		}
		return r
	}, s)
}

// ParseRating extracts a 0.0–5.0 rating from text like "4.5 (123 reviews)".
// Unparseable or out-of-range text yields 0.
func ParseRating(raw string) float64 {
	match := ratingRegexp.FindStringSubmatch(strings.TrimSpace(asciiDigits(raw)))
	if len(match) < 2 {
		return 0
	}
	val, err := strconv.ParseFloat(match[1], 64)
	if err != nil || val < 0 || val > 5 {
		return 0
	}
	return val
}

// ParseReviewCount extracts N from "(N reviews)", tolerating thousands separators.
func ParseReviewCount(raw string) int {
	match := reviewCountRegexp.FindStringSubmatch(asciiDigits(raw))
	if len(match) < 2 {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// PlaceID extracts the provider place identifier from a maps URL. The
// patterns are heuristic; "" is a valid result.
func PlaceID(url string) string {
	for _, re := range placeIDPatterns {
		if m := re.FindStringSubmatch(url); len(m) >= 2 {
			return m[1]
		}
	}
	return ""
}

// ReviewsURL turns a place URL into its reviews URL. Non-place URLs are
// returned unchanged.
func ReviewsURL(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if !strings.Contains(url, "/place/") || strings.HasSuffix(trimmed, "/reviews") {
		return url
	}
	return trimmed + "/reviews"
}

// StarRating reads the first number in a star label such as "5 stars" or
// "Rated 4.0 out of 5". Anything outside 1..5 falls back to 3.
func StarRating(raw string) int {
	match := starRegexp.FindStringSubmatch(asciiDigits(raw))
	if len(match) < 2 {
		return 3
	}
	val, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 3
	}
	stars := int(val)
	if stars < 1 || stars > 5 {
		return 3
	}
	return stars
}
