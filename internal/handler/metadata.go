package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sonicalchemist/api/internal/model"
	"github.com/sonicalchemist/api/internal/service"
	"github.com/sonicalchemist/api/pkg/response"
)

type MetadataHandler struct {
	service *service.MetadataService
}

func NewMetadataHandler(svc *service.MetadataService) *MetadataHandler {
	return &MetadataHandler{service: svc}
}

// Summarize handles POST /api/metadata/summarize
func (h *MetadataHandler) Summarize(c *fiber.Ctx) error {
	var req model.MetadataSummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	result, err := h.service.Summarize(c.UserContext(), req)
	if err != nil {
		return respondFlowError(c, err)
	}

	return response.OK(c, result)
}
