package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lsjscarlett/store-locator/pkg/auth"
)

const (
	localsUserID = "userID"
	localsEmail  = "email"
	localsRole   = "role"
)

// AuthRequired validates the bearer access token and stores the caller's
// identity in Locals.
func AuthRequired(secretKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		claims, err := auth.ValidateAccessToken(parts[1], secretKey)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(localsUserID, claims.UserID)
		c.Locals(localsEmail, claims.Email)
		c.Locals(localsRole, claims.Role)
		return c.Next()
	}
}

// RequireRoles allows the request when the authenticated role is one of
// roles. It must run after AuthRequired.
func RequireRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := allowed[CurrentRole(c)]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Not enough permissions",
			})
		}
		return c.Next()
	}
}

// InternalAPIKey guards internal endpoints with the X-API-Key header. An
// empty key disables the endpoints entirely.
func InternalAPIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := c.Get("X-API-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or missing API key",
			})
		}
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user's id, or 0.
func CurrentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localsUserID).(uint)
	return id
}

// CurrentRole returns the authenticated user's role name, or "".
func CurrentRole(c *fiber.Ctx) string {
	role, _ := c.Locals(localsRole).(string)
	return role
}
