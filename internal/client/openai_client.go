package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/sonicalchemist/api/internal/config"
)

const providerNameOpenAI = "openai"

// OpenAIClient calls the OpenAI Responses API with a JSON schema text format.
type OpenAIClient struct {
	client *openai.Client
	apiKey string
	model  string
}

func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(opts...)
	return &OpenAIClient{
		client: &client,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (c *OpenAIClient) Name() string {
	return providerNameOpenAI
}

func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *OpenAIClient) Generate(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error) {
	model := modelOr(req.Model, c.model)

	params := responses.ResponseNewParams{
		Model: model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(req.Prompt, responses.EasyInputMessageRoleUser),
			},
		},
	}
	if req.SystemPrompt != "" {
		params.Instructions = openai.String(req.SystemPrompt)
	}
	if req.OutputSchema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema(
				req.OutputSchema.Name,
				req.OutputSchema.Schema,
			),
		}
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return nil, fmt.Errorf("openai returned no text output")
	}

	return &GenerationResponse{
		RawOutput: text,
		Model:     model,
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}, nil
}
