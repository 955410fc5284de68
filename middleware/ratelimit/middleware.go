package ratelimit

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// New creates a Fiber middleware enforcing the rate limit for the given
// route group, keyed by client IP. On Redis errors the request is
// allowed through (fail-open).
func New(client *redis.Client, group string, opts ...Option) fiber.Handler {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	limiter := NewLimiter(client, config.KeyPrefix)
	limit, window := config.limitForGroup(group)
	logger := slog.Default()

	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("%s:%s", group, c.IP())

		result, err := limiter.Allow(c.UserContext(), key, limit, window)
		if err != nil {
			logger.Error("Rate limit check failed", "key", key, "error", err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":    "rate limit exceeded",
				"limit":    result.Limit,
				"reset_at": result.ResetAt,
			})
		}

		return c.Next()
	}
}
