package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

type VisitorService interface {
	Create(ctx context.Context, name, personToMeet string, image []byte) (*domain.Visitor, error)
	List(ctx context.Context) ([]domain.Visitor, error)
	Get(ctx context.Context, id int64) (*domain.Visitor, error)
	Update(ctx context.Context, id int64, update domain.VisitorUpdate) (*domain.Visitor, error)
	Decide(ctx context.Context, id int64, decision string) (*domain.Visitor, error)
	Delete(ctx context.Context, id int64) error
}

type VisitorHandler struct {
	service VisitorService
	logger  *slog.Logger
}

func NewVisitorHandler(service VisitorService, logger *slog.Logger) *VisitorHandler {
	return &VisitorHandler{service: service, logger: logger}
}

type CreateVisitorRequest struct {
	Name         string `json:"name" form:"name"`
	PersonToMeet string `json:"person_to_meet" form:"person_to_meet"`
	Image        string `json:"image" form:"image"`
}

// UpdateVisitorRequest is a partial update; omitted fields are kept
type UpdateVisitorRequest struct {
	Name         *string `json:"name" form:"name"`
	PersonToMeet *string `json:"person_to_meet" form:"person_to_meet"`
	Status       *string `json:"status" form:"status"`
}

type DecisionRequest struct {
	Decision string `json:"decision" form:"decision"`
}

// Create POST /v1/visitors
func (h *VisitorHandler) Create(c *fiber.Ctx) error {
	var req CreateVisitorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	image, err := readImage(c, req.Image)
	if err != nil {
		return err
	}

	visitor, err := h.service.Create(c.UserContext(), req.Name, req.PersonToMeet, image)
	if err != nil {
		return err
	}

	return success(c, fiber.StatusCreated,
		fmt.Sprintf("Visitor %s created successfully", visitorLabel(visitor)),
		fiber.Map{"visitor_id": visitor.ID},
	)
}

// List GET /v1/visitors
func (h *VisitorHandler) List(c *fiber.Ctx) error {
	visitors, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(visitors)
}

// Get GET /v1/visitors/:id
func (h *VisitorHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	visitor, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(visitor)
}

// Update PUT /v1/visitors/:id
func (h *VisitorHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateVisitorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	update := domain.VisitorUpdate{Name: req.Name, PersonToMeet: req.PersonToMeet}
	if req.Status != nil {
		status, err := domain.ParseVisitorStatus(*req.Status)
		if err != nil {
			return err
		}
		update.Status = &status
	}

	visitor, err := h.service.Update(c.UserContext(), id, update)
	if err != nil {
		return err
	}

	return success(c, fiber.StatusOK, fmt.Sprintf("Visitor %d updated successfully", id), visitor)
}

// Decide PUT /v1/visitors/:id/decision
func (h *VisitorHandler) Decide(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req DecisionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	visitor, err := h.service.Decide(c.UserContext(), id, req.Decision)
	if err != nil {
		return err
	}

	verb := "rejected"
	if visitor.Status == domain.VisitorApproved {
		verb = "approved"
	}

	return success(c, fiber.StatusOK, fmt.Sprintf("Visitor %d %s", id, verb), visitor)
}

// Delete DELETE /v1/visitors/:id
func (h *VisitorHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}

	h.logger.InfoContext(c.UserContext(), "visitor deleted", slog.Int64("visitor_id", id))

	return success(c, fiber.StatusOK, fmt.Sprintf("Visitor %d deleted successfully", id), nil)
}

func visitorLabel(v *domain.Visitor) string {
	if v.Name != nil && *v.Name != "" {
		return *v.Name
	}
	return fmt.Sprintf("visitor %d", v.ID)
}
