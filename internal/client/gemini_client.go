package client

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/sonicalchemist/api/internal/config"
)

const (
	providerNameGemini = "gemini"
	mimeTypeJSON       = "application/json"
	geminiUserRole     = "user"
)

// GeminiClient calls Gemini with a native response schema.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini client. Without an API key the returned
// client reports itself as unconfigured.
func NewGeminiClient(ctx context.Context, cfg *config.GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return &GeminiClient{model: cfg.Model}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: cfg.Model}, nil
}

func (c *GeminiClient) Name() string {
	return providerNameGemini
}

func (c *GeminiClient) IsConfigured() bool {
	return c.client != nil
}

func (c *GeminiClient) Generate(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error) {
	if c.client == nil {
		return nil, fmt.Errorf("gemini client not configured")
	}
	model := modelOr(req.Model, c.model)

	genConfig := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if req.OutputSchema != nil {
		genConfig.ResponseMIMEType = mimeTypeJSON
		genConfig.ResponseSchema = convertSchemaToGemini(req.OutputSchema.Schema)
	}

	contents := []*genai.Content{{
		Role:  geminiUserRole,
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}

	result, err := c.client.Models.GenerateContent(ctx, model, contents, genConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := geminiText(result)
	if text == "" {
		return nil, fmt.Errorf("no candidates in gemini response")
	}

	out := &GenerationResponse{RawOutput: text, Model: model}
	if result.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

func geminiText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	content := result.Candidates[0].Content
	if content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// convertSchemaToGemini maps the subset of JSON Schema used by the flows
// onto genai.Schema.
func convertSchemaToGemini(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{}
	if t, ok := schema["type"].(string); ok {
		switch t {
		case "object":
			out.Type = genai.TypeObject
		case "string":
			out.Type = genai.TypeString
		case "number":
			out.Type = genai.TypeNumber
		case "integer":
			out.Type = genai.TypeInteger
		case "boolean":
			out.Type = genai.TypeBoolean
		case "array":
			out.Type = genai.TypeArray
		}
	}
	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if prop, ok := raw.(map[string]any); ok {
				out.Properties[name] = convertSchemaToGemini(prop)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = convertSchemaToGemini(items)
	}
	switch required := schema["required"].(type) {
	case []string:
		out.Required = append([]string(nil), required...)
	case []any:
		for _, r := range required {
			if s, ok := r.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}
	return out
}
