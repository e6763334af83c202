package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sonicalchemist/api/internal/logger"
)

// TextGenerator is an external text-generation provider.
// Implementations make exactly one upstream call per Generate and never retry.
type TextGenerator interface {
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error)
	Name() string
	IsConfigured() bool
}

// GenerationRequest contains everything a provider needs for one call
type GenerationRequest struct {
	Model        string // optional override of the configured model
	SystemPrompt string
	Prompt       string
	OutputSchema *OutputSchema
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// GenerationResponse contains the raw provider output
type GenerationResponse struct {
	RawOutput string
	Model     string
	Usage     Usage
}

// Usage holds token counts reported by the provider.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// schemaInstruction tells providers without native structured output how to
// shape their answer.
func schemaInstruction(schema *OutputSchema) (string, error) {
	encoded, err := json.Marshal(schema.Schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal output schema: %w", err)
	}
	return fmt.Sprintf(`Always output your response as a single valid JSON object named %q (%s) matching this JSON Schema:
%s
Do not include any text outside the JSON structure.`, schema.Name, schema.Description, encoded), nil
}

func modelOr(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

const maxLoggedBody = 2048

// logUpstreamError records a non-200 provider body. Bodies stay out of
// returned errors since those reach the composer page.
func logUpstreamError(provider string, status int, body []byte) {
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}
	logger.Warn("LLM provider returned an error status", logger.Fields{
		"provider": provider,
		"status":   status,
		"body":     string(body),
	})
}
