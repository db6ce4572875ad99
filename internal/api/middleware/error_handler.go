package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Error: ErrorBody{Code: "HTTP_ERROR", Message: fiberErr.Message},
			})
		}

		// Services wrap extractor and repository errors, so the AppError
		// may sit anywhere in the chain.
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			body := ErrorBody{Code: appErr.Code, Message: appErr.Message}

			if appErr.StatusCode >= 500 {
				logger.Error("internal error",
					slog.String("code", appErr.Code),
					slog.String("path", c.Path()),
					slog.Any("error", err),
				)
			} else if appErr.Err != nil {
				body.Detail = appErr.Err.Error()
			}

			return c.Status(appErr.StatusCode).JSON(ErrorResponse{Error: body})
		}

		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("request timed out", slog.String("path", c.Path()), slog.Any("error", err))
			return c.Status(fiber.StatusGatewayTimeout).JSON(ErrorResponse{
				Error: ErrorBody{Code: "TIMEOUT", Message: "The request took too long to complete"},
			})
		}

		logger.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Path()),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: ErrorBody{Code: domain.ErrInternal.Code, Message: domain.ErrInternal.Message},
		})
	}
}
