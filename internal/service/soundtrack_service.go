package service

import (
	"context"

	"github.com/sonicalchemist/api/internal/model"
	"github.com/sonicalchemist/api/internal/prompt"
	"github.com/sonicalchemist/api/internal/schema"
)

const FlowSoundtrack = "soundtrack"

// SoundtrackService turns a genre, mood and length into a soundtrack concept.
type SoundtrackService struct {
	invoker   *Invoker
	validator *schema.Validator
}

func NewSoundtrackService(invoker *Invoker, validator *schema.Validator) *SoundtrackService {
	return &SoundtrackService{
		invoker:   invoker,
		validator: validator,
	}
}

// Generate validates req, renders the prompt and invokes the provider.
// A *schema.ValidationError means no call was made.
func (s *SoundtrackService) Generate(ctx context.Context, req model.SoundtrackRequest) (*model.SoundtrackResult, error) {
	req, err := s.validator.SoundtrackRequest(req)
	if err != nil {
		return nil, err
	}

	return Invoke(ctx, s.invoker, FlowSoundtrack, prompt.Soundtrack(req), schema.SoundtrackOutput)
}
