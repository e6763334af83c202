package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/sonicalchemist/api/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID stores an id for each request in Locals and echoes it in the
// response header. A valid incoming X-Request-ID is reused.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		c.Locals(logger.RequestIDKey, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

// GetRequestID returns the id set by RequestID.
func GetRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(logger.RequestIDKey).(string); ok {
		return id
	}
	return ""
}
