package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/sonicalchemist/api/internal/logger"
	"github.com/sonicalchemist/api/internal/schema"
	"github.com/sonicalchemist/api/internal/service"
	"github.com/sonicalchemist/api/pkg/response"
)

// respondFlowError maps a flow error onto the JSON error envelope.
func respondFlowError(c *fiber.Ctx, err error) error {
	if verr, ok := schema.AsValidationError(err); ok {
		return response.ValidationError(c, "Validation failed", verr.Details())
	}

	if ierr, ok := service.AsInvocationError(err); ok {
		return response.AIError(c, ierr.Error())
	}

	logger.Error("Unexpected flow error", err, logger.WithContext(c))
	return response.ServiceError(c, "Internal server error")
}

func isValidationError(err error) bool {
	var verr *schema.ValidationError
	return errors.As(err, &verr)
}
