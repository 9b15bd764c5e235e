package sentiment

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

var isoLanguages = map[string]lingua.Language{
	"ar": lingua.Arabic,
	"de": lingua.German,
	"en": lingua.English,
	"es": lingua.Spanish,
	"fa": lingua.Persian,
	"fr": lingua.French,
	"hi": lingua.Hindi,
	"id": lingua.Indonesian,
	"it": lingua.Italian,
	"ja": lingua.Japanese,
	"ko": lingua.Korean,
	"nl": lingua.Dutch,
	"pt": lingua.Portuguese,
	"ru": lingua.Russian,
	"tr": lingua.Turkish,
	"ur": lingua.Urdu,
	"zh": lingua.Chinese,
}

// LanguageDetector tags review text with an ISO 639-1 code.
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

// NewLanguageDetector restricts detection to the given ISO codes. Unknown
// codes are ignored; English and Arabic fill in when fewer than two remain.
func NewLanguageDetector(codes []string) *LanguageDetector {
	seen := make(map[lingua.Language]bool)
	var langs []lingua.Language
	for _, c := range codes {
		l, ok := isoLanguages[strings.ToLower(strings.TrimSpace(c))]
		if ok && !seen[l] {
			seen[l] = true
			langs = append(langs, l)
		}
	}
	for _, l := range []lingua.Language{lingua.English, lingua.Arabic} {
		if len(langs) >= 2 {
			break
		}
		if !seen[l] {
			seen[l] = true
			langs = append(langs, l)
		}
	}

	return &LanguageDetector{
		detector: lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build(),
	}
}

// Detect returns the lowercase ISO 639-1 code, or "" when undetermined.
func (d *LanguageDetector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
