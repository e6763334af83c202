package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sonicalchemist/api/internal/config"
)

const providerNameOllama = "ollama"

// OllamaClient talks to a local Ollama API. The output schema is passed as
// the structured "format" of /api/generate.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// ollamaGenerateRequest is the Ollama /api/generate request body.
type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Format  map[string]any `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

// ollamaGenerateResponse is the Ollama /api/generate response.
type ollamaGenerateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func NewOllamaClient(cfg *config.OllamaConfig) *OllamaClient {
	return &OllamaClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *OllamaClient) Name() string {
	return providerNameOllama
}

func (c *OllamaClient) IsConfigured() bool {
	return c.baseURL != "" && c.model != ""
}

func (c *OllamaClient) Generate(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error) {
	body := ollamaGenerateRequest{
		Model:  modelOr(req.Model, c.model),
		Prompt: req.Prompt,
		System: req.SystemPrompt,
		Stream: false,
		Options: map[string]any{
			"temperature": 0.7,
		},
	}
	if req.OutputSchema != nil {
		body.Format = req.OutputSchema.Schema
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logUpstreamError(providerNameOllama, resp.StatusCode, bodyBytes)
		return nil, fmt.Errorf("ollama status %d", resp.StatusCode)
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return &GenerationResponse{
		RawOutput: strings.TrimSpace(result.Response),
		Model:     body.Model,
		Usage: Usage{
			InputTokens:  result.PromptEvalCount,
			OutputTokens: result.EvalCount,
			TotalTokens:  result.PromptEvalCount + result.EvalCount,
		},
	}, nil
}
