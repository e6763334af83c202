package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sonicalchemist/api/internal/logger"
	"github.com/sonicalchemist/api/pkg/response"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit creates a rate limiting middleware keyed by client IP
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s:%s", keyPrefix, c.IP())
		ctx := context.Background()

		// Increment counter
		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			// If Redis fails, allow the request but log the error
			logger.Warn("Rate limiter unavailable, allowing request", logger.WithContext(c).With(logger.Fields{
				"error": err.Error(),
			}))
			return c.Next()
		}

		// Set expiration on first request
		if count == 1 {
			rl.redis.Expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			// Get TTL for retry-after header
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			c.Set("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		// Add rate limit headers
		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", maxRequests-int(count)))

		return c.Next()
	}
}

// SoundtrackLimit returns a rate limiter for the soundtrack flow
func (rl *RateLimiter) SoundtrackLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("soundtrack", maxPerMin, time.Minute)
}

// MetadataLimit returns a rate limiter for the metadata summary flow
func (rl *RateLimiter) MetadataLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("metadata", maxPerMin, time.Minute)
}

// ComposeLimit returns a rate limiter for composer submissions
func (rl *RateLimiter) ComposeLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("compose", maxPerMin, time.Minute)
}
