package client

import (
	"context"
	"fmt"

	"github.com/sonicalchemist/api/internal/config"
	"github.com/sonicalchemist/api/internal/logger"
)

// NewTextGenerator returns the provider selected by cfg.LLM.Provider.
// An unconfigured provider falls back to MockClient.
func NewTextGenerator(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	var gen TextGenerator

	switch cfg.LLM.Provider {
	case providerNameGroq, "":
		gen = NewGroqClient(&cfg.Groq)
	case providerNameOpenAI:
		gen = NewOpenAIClient(&cfg.OpenAI)
	case providerNameGemini:
		gemini, err := NewGeminiClient(ctx, &cfg.Gemini)
		if err != nil {
			return nil, err
		}
		gen = gemini
	case providerNameOllama:
		gen = NewOllamaClient(&cfg.Ollama)
	case providerNameMock:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (allowed: groq, openai, gemini, ollama, mock)", cfg.LLM.Provider)
	}

	if !gen.IsConfigured() {
		logger.Warn("LLM provider not configured, using mock responses", logger.Fields{
			"provider": gen.Name(),
		})
		return NewMockClient(), nil
	}

	return gen, nil
}
