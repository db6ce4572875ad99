package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

type EmployeeService interface {
	Register(ctx context.Context, name string, image []byte) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	Get(ctx context.Context, id int64) (*domain.Employee, error)
	Rename(ctx context.Context, id int64, name string) (*domain.Employee, error)
	Delete(ctx context.Context, id int64) error
}

type EmployeeHandler struct {
	service EmployeeService
	logger  *slog.Logger
}

func NewEmployeeHandler(service EmployeeService, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{service: service, logger: logger}
}

// RegisterEmployeeRequest accepts the image as base64 (optionally a data URL)
// or, for multipart requests, as an uploaded "image" file
type RegisterEmployeeRequest struct {
	Name  string `json:"name" form:"name"`
	Image string `json:"image" form:"image"`
}

type UpdateEmployeeRequest struct {
	Name string `json:"name" form:"name"`
}

// Register POST /v1/employees
func (h *EmployeeHandler) Register(c *fiber.Ctx) error {
	var req RegisterEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	image, err := readImage(c, req.Image)
	if err != nil {
		return err
	}

	employee, err := h.service.Register(c.UserContext(), req.Name, image)
	if err != nil {
		return err
	}

	return success(c, fiber.StatusCreated,
		fmt.Sprintf("Employee %s registered successfully", employee.Name),
		fiber.Map{"employee_id": employee.ID},
	)
}

// List GET /v1/employees
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	employees, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(employees)
}

// Get GET /v1/employees/:id
func (h *EmployeeHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	employee, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(employee)
}

// Update PUT /v1/employees/:id
func (h *EmployeeHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	employee, err := h.service.Rename(c.UserContext(), id, req.Name)
	if err != nil {
		return err
	}

	return success(c, fiber.StatusOK,
		fmt.Sprintf("Employee %d updated successfully", id),
		employee,
	)
}

// Delete DELETE /v1/employees/:id
func (h *EmployeeHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}

	h.logger.InfoContext(c.UserContext(), "employee deleted", slog.Int64("employee_id", id))

	return success(c, fiber.StatusOK, fmt.Sprintf("Employee %d deleted successfully", id), nil)
}
