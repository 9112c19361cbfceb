package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// NewInferenceClient builds the multimodal client selected by config.Provider.
func NewInferenceClient(ctx context.Context, config *Config, logger *slog.Logger) (InferenceClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch strings.ToLower(config.Provider) {
	case ProviderGemini, "":
		client, err := NewGeminiClient(ctx, config.GoogleProject, config.GoogleLocation, config.GeminiAPIKey, config.GeminiModel)
		if err != nil {
			return nil, err
		}
		logger.Info("inference provider enabled", "provider", ProviderGemini, "model", client.model)
		return client, nil
	case ProviderOpenAI:
		if config.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		client := NewOpenAIClient(config.OpenAIAPIKey, config.OpenAIModel)
		logger.Info("inference provider enabled", "provider", ProviderOpenAI, "model", client.model)
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported inference provider: %s", config.Provider)
	}
}
