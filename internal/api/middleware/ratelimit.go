package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/ratelimit"
)

// Limiter counts one request against key
type Limiter interface {
	Allow(ctx context.Context, key string, limit int) (ratelimit.Result, error)
}

// RateLimit caps face submissions per client IP. When the counter store is
// unreachable the request is let through and the failure logged.
func RateLimit(limiter Limiter, limit int, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil || limit <= 0 {
			return c.Next()
		}

		result, err := limiter.Allow(c.UserContext(), "face:"+c.IP(), limit)
		if err != nil && !errors.Is(err, domain.ErrRateLimited) {
			logger.Warn("rate limiter unavailable",
				slog.String("ip", c.IP()),
				slog.Any("error", err),
			)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.ResetAt.IsZero() {
			c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		}

		if err != nil {
			return err
		}
		return c.Next()
	}
}
