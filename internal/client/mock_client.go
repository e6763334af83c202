package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const providerNameMock = "mock"

// MockClient returns canned structured output for development and tests
// when no real provider is configured.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) Name() string {
	return providerNameMock
}

func (c *MockClient) IsConfigured() bool {
	return true
}

func (c *MockClient) Generate(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var payload map[string]string
	if req.OutputSchema != nil && req.OutputSchema.Name == "metadata_summary" {
		payload = map[string]string{
			"summary": fmt.Sprintf("A %s BPM track in %s featuring %s, with a %s feel.",
				promptField(req.Prompt, "BPM"),
				promptField(req.Prompt, "Key"),
				promptField(req.Prompt, "Instruments"),
				strings.ToLower(promptField(req.Prompt, "Mood"))),
		}
	} else {
		payload = map[string]string{
			"description": fmt.Sprintf(
				"A %s soundtrack with a %s mood, running %s.\n\nBPM: 96\nKey: D minor\nInstruments: felt piano, warm pads, soft strings, brushed percussion\nMood tags: %s, atmospheric, evolving",
				promptField(req.Prompt, "Genre"),
				strings.ToLower(promptField(req.Prompt, "Mood")),
				promptField(req.Prompt, "Length"),
				strings.ToLower(promptField(req.Prompt, "Mood"))),
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mock response: %w", err)
	}

	return &GenerationResponse{
		RawOutput: string(raw),
		Model:     providerNameMock,
	}, nil
}

// promptField returns the value of a "Name: value" line in a rendered prompt.
func promptField(prompt, name string) string {
	prefix := name + ":"
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return "unknown"
}
