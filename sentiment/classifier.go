// Package sentiment maps review text to a 5-point label, a 3-way bucket and
// a polarity in [-1, 1].
package sentiment

import (
	"regexp"
	"strconv"
	"strings"

	"competitor-sentiment/models"
	"competitor-sentiment/utils"
)

// maxInputRunes caps what is sent to a model; tokenizers truncate further.
const maxInputRunes = 2000

// subjectivity is reported for every model-scored text; no model here
// produces a real subjectivity signal.
const subjectivity = 0.5

var digitRegexp = regexp.MustCompile(`(\d)`)

// Model scores one text with a label on the 5-point scale
// (Very Negative .. Very Positive) and a confidence.
type Model interface {
	Predict(text string) (label string, score float64, err error)
	Name() string
}

// Classifier turns model output into SentimentResults. It never fails.
type Classifier struct {
	model  Model
	logger *utils.Logger
}

// NewClassifier wraps a loaded model.
func NewClassifier(model Model, logger *utils.Logger) *Classifier {
	return &Classifier{model: model, logger: logger}
}

// ModelName reports the backing model.
func (c *Classifier) ModelName() string {
	return c.model.Name()
}

// Classify scores text. Empty text and model errors yield the neutral
// default result.
func (c *Classifier) Classify(text string) models.SentimentResult {
	text = strings.TrimSpace(text)
	if text == "" {
		return defaultResult()
	}

	if r := []rune(text); len(r) > maxInputRunes {
		text = string(r[:maxInputRunes])
	}

	label, score, err := c.model.Predict(text)
	if err != nil {
		c.logger.Error("[sentiment] Error analyzing sentiment: %v", err)
		return defaultResult()
	}

	stars := LabelToStars(label)
	return models.SentimentResult{
		Label:          Bucket(stars),
		Polarity:       Polarity(stars),
		Subjectivity:   subjectivity,
		Confidence:     clamp(score, 0, 1),
		StarEquivalent: stars,
	}
}

// ClassifyAll scores texts in order.
func (c *Classifier) ClassifyAll(texts []string) []models.SentimentResult {
	out := make([]models.SentimentResult, len(texts))
	for i, t := range texts {
		out[i] = c.Classify(t)
	}
	return out
}

// LabelToStars maps a model label onto 1..5. "very" labels are matched
// before their plain forms; unknown labels use their first digit, else 3.
func LabelToStars(label string) int {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(l, "very negative"):
		return 1
	case strings.Contains(l, "very positive"):
		return 5
	case strings.Contains(l, "negative"):
		return 2
	case strings.Contains(l, "positive"):
		return 4
	case strings.Contains(l, "neutral"):
		return 3
	}

	if m := digitRegexp.FindStringSubmatch(l); len(m) == 2 {
		n, _ := strconv.Atoi(m[1])
		return int(clamp(float64(n), 1, 5))
	}
	return 3
}

// Bucket derives the 3-way sentiment from a star equivalent.
func Bucket(stars int) models.Sentiment {
	switch {
	case stars >= 4:
		return models.Positive
	case stars <= 2:
		return models.Negative
	default:
		return models.Neutral
	}
}

// Polarity maps 1..5 linearly onto [-1, 1].
func Polarity(stars int) float64 {
	return (float64(stars) - 3) / 2.0
}

func defaultResult() models.SentimentResult {
	return models.SentimentResult{Label: models.Neutral}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
