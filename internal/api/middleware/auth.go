package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/audit"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

// Auth checks the bearer token against the configured API key. Both sides
// are hashed first so the comparison is constant time regardless of length.
func Auth(apiKey string) fiber.Handler {
	want := sha256.Sum256([]byte(apiKey))

	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return domain.ErrUnauthorized
		}

		got := sha256.Sum256([]byte(token))
		if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
			return domain.ErrUnauthorized
		}

		return c.Next()
	}
}

// RequestContext copies the request id assigned by the requestid middleware
// into the user context, where services pick it up for audit events
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := c.GetRespHeader(fiber.HeaderXRequestID); id != "" {
			c.SetUserContext(audit.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
