// Package insights produces free-text narratives about sentiment results
// through a hosted text-generation model, with templated fallbacks.
package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"competitor-sentiment/config"
)

// ErrNoCredential means no API key is configured for the selected provider.
var ErrNoCredential = errors.New("no narrative API key configured")

// Generator sends one system instruction and one prompt to a text model.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int) (string, error)
	Name() string
}

// NewGenerator builds the provider selected by NARRATIVE_PROVIDER.
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	if cfg.NarrativeAPIKey() == "" {
		return nil, ErrNoCredential
	}

	switch strings.ToLower(cfg.NarrativeProvider) {
	case "openai":
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case "gemini", "":
		return NewGeminiGenerator(ctx, cfg.GoogleAIAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown narrative provider %q", cfg.NarrativeProvider)
	}
}

// nonEmpty returns an error for blank provider output.
func nonEmpty(provider, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s returned an empty response", provider)
	}
	return text, nil
}
