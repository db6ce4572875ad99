package middleware

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

// Recover turns a panic into an internal error so the error handler and the
// request logger still see the request
func Recover(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					slog.Any("panic", r),
					slog.String("path", c.Path()),
					slog.String("method", c.Method()),
				)
				err = domain.ErrInternal.WithError(fmt.Errorf("panic: %v", r))
			}
		}()
		return c.Next()
	}
}
