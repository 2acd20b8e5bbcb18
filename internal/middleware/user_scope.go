package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// UserIDHeader carries the caller identity resolved by the upstream gateway
	UserIDHeader = "X-User-ID"
	// UserIDKey stores the user ID in fiber Locals
	UserIDKey = "userID"
)

// UserScope ensures every request under /v1/me carries a user id.
// Authentication happens upstream; the header is trusted as is.
func UserScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(UserIDHeader))
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "missing user context",
			})
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// GetUserID extracts the user ID from Fiber context
// Should only be called after UserScope middleware
func GetUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}
