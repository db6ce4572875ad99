package handler

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/imaging"
)

const statusSuccess = "success"

// Response wraps the result of every mutating endpoint
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *fiber.Ctx, code int, message string, data any) error {
	return c.Status(code).JSON(Response{
		Status:  statusSuccess,
		Message: message,
		Data:    data,
	})
}

// paramID reads a positive integer path parameter
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrBadRequest.WithError(fmt.Errorf("%s must be a positive integer", name))
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	return nil
}

// readImage returns the raw image bytes from either a base64 field or an
// uploaded "image" file. The base64 field wins when both are present.
func readImage(c *fiber.Ctx, encoded string) ([]byte, error) {
	if encoded != "" {
		return imaging.DecodeBase64(encoded)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(errors.New("image is required"))
	}
	if file.Size == 0 {
		return nil, domain.ErrInvalidImage.WithError(errors.New("empty upload"))
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	return data, nil
}
