package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quietlotus/hadane/internal/services"
)

const userIDContextKey = "user_id"

// RequireAuth accepts a signed bearer token and stashes its subject as the
// current user id. There is no session machinery behind this; the token is
// the whole identity story of the reference service.
func (handler *Handler) RequireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return apiError(c, fiber.StatusUnauthorized, "missing bearer token")
	}

	claims, err := services.ParseAccessToken(handler.secretKey, strings.TrimSpace(header[len(prefix):]), time.Now().In(handler.location))
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "invalid or expired token")
	}

	c.Locals(userIDContextKey, claims.Subject)
	return c.Next()
}

func currentUserID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
