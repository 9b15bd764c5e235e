package sentiment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"

	"competitor-sentiment/utils"
)

// HugotOptions configures the ONNX text-classification model.
type HugotOptions struct {
	ModelName       string
	ModelDir        string
	UseGPU          bool
	OnnxLibraryPath string
}

// HugotModel runs a multilingual 5-point sentiment model through ONNX Runtime.
type HugotModel struct {
	name     string
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	mu       sync.Mutex
}

// NewHugotModel downloads the model on first use, opens an ONNX Runtime
// session (CUDA preferred, CPU otherwise) and builds the pipeline.
func NewHugotModel(opts HugotOptions, logger *utils.Logger) (*HugotModel, error) {
	modelPath, err := ensureModel(opts, logger)
	if err != nil {
		return nil, err
	}

	session, err := newSession(opts, logger)
	if err != nil {
		return nil, fmt.Errorf("hugot: session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "reviewSentimentPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("hugot: pipeline: %w", err)
	}

	logger.Info("[sentiment] Loaded %s from %s", opts.ModelName, modelPath)
	return &HugotModel{name: opts.ModelName, session: session, pipeline: pipeline}, nil
}

func ensureModel(opts HugotOptions, logger *utils.Logger) (string, error) {
	if err := os.MkdirAll(opts.ModelDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("hugot: create model dir: %w", err)
	}

	modelPath := filepath.Join(opts.ModelDir, strings.ReplaceAll(opts.ModelName, "/", "_"))
	if _, err := os.Stat(modelPath); err == nil {
		logger.Debug("[sentiment] Using existing model at %s", modelPath)
		return modelPath, nil
	}

	logger.Info("[sentiment] Model not found, downloading %s...", opts.ModelName)
	path, err := hugot.DownloadModel(opts.ModelName, opts.ModelDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("hugot: download %s: %w", opts.ModelName, err)
	}
	return path, nil
}

func newSession(opts HugotOptions, logger *utils.Logger) (*hugot.Session, error) {
	var base []options.WithOption
	if opts.OnnxLibraryPath != "" {
		base = append(base, options.WithOnnxLibraryPath(opts.OnnxLibraryPath))
	}

	if opts.UseGPU {
		gpu := append(append([]options.WithOption{}, base...),
			options.WithCuda(map[string]string{"device_id": "0"}))
		session, err := hugot.NewORTSession(gpu...)
		if err == nil {
			logger.Info("[sentiment] ONNX Runtime session on CUDA")
			return session, nil
		}
		logger.Warn("[sentiment] CUDA unavailable, using CPU: %v", err)
	}

	return hugot.NewORTSession(base...)
}

// Name returns the model identifier.
func (m *HugotModel) Name() string {
	return m.name
}

// Predict returns the highest-scoring label for text.
func (m *HugotModel) Predict(text string) (string, float64, error) {
	m.mu.Lock()
	out, err := m.pipeline.RunPipeline([]string{text})
	m.mu.Unlock()
	if err != nil {
		return "", 0, fmt.Errorf("hugot: run: %w", err)
	}
	if len(out.ClassificationOutputs) == 0 || len(out.ClassificationOutputs[0]) == 0 {
		return "", 0, fmt.Errorf("hugot: empty output")
	}

	best := out.ClassificationOutputs[0][0]
	for _, c := range out.ClassificationOutputs[0][1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best.Label, float64(best.Score), nil
}

// Close releases the ONNX Runtime session.
func (m *HugotModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Destroy()
}
