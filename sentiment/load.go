package sentiment

import (
	"competitor-sentiment/config"
	"competitor-sentiment/utils"
)

// Load builds the classifier from config. The ONNX model is preferred; when
// it cannot be downloaded or started, the VADER lexicon takes over. The
// returned func releases model resources.
func Load(cfg *config.Config, logger *utils.Logger) (*Classifier, func()) {
	model, err := NewHugotModel(HugotOptions{
		ModelName:       cfg.SentimentModel,
		ModelDir:        cfg.SentimentModelDir,
		UseGPU:          cfg.SentimentUseGPU,
		OnnxLibraryPath: cfg.OnnxLibraryPath,
	}, logger)
	if err != nil {
		logger.Warn("[sentiment] %v; falling back to VADER", err)
		return NewClassifier(NewVaderModel(), logger), func() {}
	}

	return NewClassifier(model, logger), func() {
		if err := model.Close(); err != nil {
			logger.Warn("[sentiment] close session: %v", err)
		}
	}
}
