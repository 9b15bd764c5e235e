package sentiment

import (
	"math"
	"regexp"

	"github.com/jonreiter/govader"
)

var urlRegexp = regexp.MustCompile(`https?://\S+|www\.\S+`)

// VaderModel scores text with the VADER lexicon. It is English-centric and
// serves when the ONNX model cannot be loaded.
type VaderModel struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderModel creates a lexicon model.
func NewVaderModel() *VaderModel {
	return &VaderModel{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (m *VaderModel) Name() string { return "vader" }

// Predict maps the compound score onto the 5-point label scale. The score
// is the compound magnitude, or 1-|compound| for neutral labels.
func (m *VaderModel) Predict(text string) (string, float64, error) {
	compound := m.analyzer.PolarityScores(urlRegexp.ReplaceAllString(text, "")).Compound
	label := CompoundLabel(compound)
	if label == "Neutral" {
		return label, 1 - math.Abs(compound), nil
	}
	return label, math.Abs(compound), nil
}

// CompoundLabel buckets a VADER compound score in [-1, 1].
func CompoundLabel(compound float64) string {
	switch {
	case compound <= -0.6:
		return "Very Negative"
	case compound <= -0.2:
		return "Negative"
	case compound < 0.2:
		return "Neutral"
	case compound < 0.6:
		return "Positive"
	default:
		return "Very Positive"
	}
}
