package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/match"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/service"
)

type AttendanceService interface {
	Mark(ctx context.Context, image []byte) (*service.AttendanceResult, error)
	List(ctx context.Context, date string) ([]domain.Attendance, error)
}

type AttendanceHandler struct {
	service AttendanceService
	logger  *slog.Logger
}

func NewAttendanceHandler(service AttendanceService, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{service: service, logger: logger}
}

type MarkAttendanceRequest struct {
	Image string `json:"image" form:"image"`
}

// EmployeeAttendanceData is returned when the face belongs to an employee
type EmployeeAttendanceData struct {
	EmployeeID int64    `json:"employee_id"`
	Name       string   `json:"name"`
	Date       string   `json:"date"`
	Time       string   `json:"time"`
	Distance   *float64 `json:"distance,omitempty"`
}

// VisitorAttendanceData is returned for returning and unknown visitors
type VisitorAttendanceData struct {
	VisitorID int64    `json:"visitor_id"`
	Name      *string  `json:"name,omitempty"`
	Status    string   `json:"status"`
	Distance  *float64 `json:"distance,omitempty"`
}

// Mark POST /v1/attendance
func (h *AttendanceHandler) Mark(c *fiber.Ctx) error {
	var req MarkAttendanceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	image, err := readImage(c, req.Image)
	if err != nil {
		return err
	}

	result, err := h.service.Mark(c.UserContext(), image)
	if err != nil {
		return err
	}

	switch result.Kind {
	case match.KindEmployee:
		return success(c, fiber.StatusOK,
			fmt.Sprintf("Attendance marked for %s", result.Employee.Name),
			EmployeeAttendanceData{
				EmployeeID: result.Employee.ID,
				Name:       result.Attendance.Name,
				Date:       result.Attendance.Date,
				Time:       result.Attendance.Time,
				Distance:   result.Distance,
			},
		)
	case match.KindVisitor:
		return success(c, fiber.StatusOK,
			fmt.Sprintf("Returning visitor %s detected", visitorLabel(result.Visitor)),
			VisitorAttendanceData{
				VisitorID: result.Visitor.ID,
				Name:      result.Visitor.Name,
				Status:    string(result.Visitor.Status),
				Distance:  result.Distance,
			},
		)
	default:
		return success(c, fiber.StatusOK, "Unknown Face Detected",
			VisitorAttendanceData{
				VisitorID: result.Visitor.ID,
				Status:    "visitor",
			},
		)
	}
}

// List GET /v1/attendance?date=YYYY-MM-DD
func (h *AttendanceHandler) List(c *fiber.Ctx) error {
	records, err := h.service.List(c.UserContext(), c.Query("date"))
	if err != nil {
		return err
	}
	return c.JSON(records)
}
