package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sonicalchemist/api/internal/model"
	"github.com/sonicalchemist/api/internal/service"
	"github.com/sonicalchemist/api/pkg/response"
)

type SoundtrackHandler struct {
	service *service.SoundtrackService
}

func NewSoundtrackHandler(svc *service.SoundtrackService) *SoundtrackHandler {
	return &SoundtrackHandler{service: svc}
}

// Generate handles POST /api/soundtrack/generate
func (h *SoundtrackHandler) Generate(c *fiber.Ctx) error {
	var req model.SoundtrackRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	result, err := h.service.Generate(c.UserContext(), req)
	if err != nil {
		return respondFlowError(c, err)
	}

	return response.OK(c, result)
}
