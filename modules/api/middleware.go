package api

import (
	"strings"

	domain "github.com/example/task-manager/domain/user"
	"github.com/example/task-manager/modules/auth"
	"github.com/example/task-manager/modules/ratelimit"
	"github.com/gofiber/fiber/v2"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
)

// AuthMiddleware creates a middleware that validates bearer tokens.
// Every failure produces the same 401 response.
func AuthMiddleware(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthenticated(c)
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return unauthenticated(c)
		}

		claims, err := authAdapter.ValidateToken(c.UserContext(), token)
		if err != nil || claims == nil || claims.UserID == "" {
			return unauthenticated(c)
		}

		// Store claims in context for use in handlers
		c.Locals(UserContextKey, claims)
		c.Locals(ratelimit.UserIDKey, claims.UserID)

		return c.Next()
	}
}

// claimsFrom returns the claims stored by AuthMiddleware.
func claimsFrom(c *fiber.Ctx) (*domain.Claims, bool) {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	return claims, ok && claims != nil
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(Envelope{
		Success: false,
		Message: MessageUnauthenticated,
	})
}
