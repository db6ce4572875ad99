package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/database"
)

const version = "0.1.0"

type HealthHandler struct {
	db database.Pinger
}

// NewHealthHandler creates the liveness and readiness handler; db may be nil
// when the server runs without a database.
func NewHealthHandler(db database.Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: version,
	})
}

// Ready reports 503 until the database answers a ping
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.db != nil {
		if err := database.HealthCheck(c.UserContext(), h.db); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
				Status: "unavailable",
				Error:  err.Error(),
			})
		}
	}

	return c.JSON(HealthResponse{
		Status: "ready",
	})
}
