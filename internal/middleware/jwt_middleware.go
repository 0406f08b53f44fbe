package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"photoshare/internal/common"
	"photoshare/internal/services"
)

// SessionCookie is the cookie that carries the session token for browser
// clients.
const SessionCookie = "session"

const userIDKey = "user_id"

// AuthRequired is a Fiber middleware to check for a valid JWT token. The
// token is read from the Authorization header or, failing that, from the
// session cookie. Tokens of deleted accounts are rejected.
func AuthRequired(authService *services.AuthService, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if authHeader := c.Get("Authorization"); authHeader != "" {
			// Expected format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if !(len(parts) == 2 && parts[0] == "Bearer") {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Authorization header format must be 'Bearer <token>'",
				})
			}
			tokenString = parts[1]
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		userID, err := authService.SessionUser(c.UserContext(), tokenString)
		if err != nil {
			if !errors.Is(err, common.ErrUnauthenticated) {
				log.WithError(err).Error("Failed to resolve session")
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Could not resolve session",
					"error":   err.Error(),
				})
			}
			log.WithError(err).Debug("JWT validation failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		// Store identity in Fiber context for subsequent handlers
		c.Locals(userIDKey, userID)

		return c.Next()
	}
}

// CurrentUserID returns the authenticated user's id. ok is false outside
// AuthRequired.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(userIDKey).(uint)
	return id, ok && id != 0
}
