package ratelimit

import (
	"strconv"

	"github.com/example/task-manager/domain/ratelimit"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// UserIDKey is the Fiber local holding the authenticated user's ID.
const UserIDKey = "user_id"

// Middleware provides rate limiting middleware for Fiber.
type Middleware struct {
	userLimiter *SlidingWindowLimiter
	ipLimiter   *SlidingWindowLimiter
	logger      types.Logger
}

// NewMiddleware creates a new rate limiting middleware.
func NewMiddleware(client *redis.Client, config ratelimit.MiddlewareConfig, logger types.Logger) *Middleware {
	return &Middleware{
		userLimiter: NewSlidingWindowLimiter(client, config.UserConfig, config.KeyPrefix+"user:"),
		ipLimiter:   NewSlidingWindowLimiter(client, config.IPConfig, config.KeyPrefix+"ip:"),
		logger:      logger,
	}
}

// UserRateLimit returns middleware that limits requests by user ID.
// It expects the user ID in c.Locals(UserIDKey) and falls back to the client IP.
// Redis failures let the request through.
func (m *Middleware) UserRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limiter := m.userLimiter
		key, ok := c.Locals(UserIDKey).(string)
		if !ok || key == "" {
			limiter = m.ipLimiter
			key = c.IP()
		}

		result, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			m.logger.Warn("Rate limit check failed, allowing request", "key", key, "error", err)
			c.Set("X-RateLimit-Error", "unavailable")
			return c.Next()
		}

		setRateLimitHeaders(c, result, limiter.Config().RequestsPerWindow)

		if !result.Allowed {
			return sendRateLimitExceeded(c, result)
		}

		return c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(c *fiber.Ctx, result *ratelimit.Result, limit int) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// sendRateLimitExceeded sends a 429 Too Many Requests response in the API envelope.
func sendRateLimitExceeded(c *fiber.Ctx, result *ratelimit.Result) error {
	retryAfter := int(result.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	c.Set("Retry-After", strconv.Itoa(retryAfter))

	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"success":     false,
		"message":     "Too Many Requests",
		"retry_after": retryAfter,
	})
}
