package service

import (
	"context"

	"github.com/sonicalchemist/api/internal/model"
	"github.com/sonicalchemist/api/internal/prompt"
	"github.com/sonicalchemist/api/internal/schema"
)

const FlowMetadataSummary = "metadata_summary"

// MetadataService summarizes soundtrack metadata.
type MetadataService struct {
	invoker   *Invoker
	validator *schema.Validator
}

func NewMetadataService(invoker *Invoker, validator *schema.Validator) *MetadataService {
	return &MetadataService{
		invoker:   invoker,
		validator: validator,
	}
}

func (s *MetadataService) Summarize(ctx context.Context, req model.MetadataSummaryRequest) (*model.MetadataSummaryResult, error) {
	if err := s.validator.MetadataSummaryRequest(req); err != nil {
		return nil, err
	}

	return Invoke(ctx, s.invoker, FlowMetadataSummary, prompt.MetadataSummary(req), schema.MetadataSummaryOutput)
}
