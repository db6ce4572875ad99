package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

// Event types published after a successful operation
const (
	EventEmployeeRegistered = "employee.registered"
	EventAttendanceMarked   = "attendance.marked"
	EventVisitorRecognized  = "visitor.recognized"
	EventVisitorArrived     = "visitor.arrived"
	EventVisitorCreated     = "visitor.created"
	EventVisitorDecided     = "visitor.decided"
)

// Publisher fans an event out to whoever watches the front desk: the live
// dashboard feed and outbound webhooks.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// Publishers publishes to every member and joins their errors
type Publishers []Publisher

func (p Publishers) Publish(ctx context.Context, eventType string, data any) error {
	var errs []error
	for _, pub := range p {
		if err := pub.Publish(ctx, eventType, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }

// AttendanceEvent is the payload of attendance.marked
type AttendanceEvent struct {
	AttendanceID int64   `json:"attendance_id"`
	EmployeeID   int64   `json:"employee_id"`
	Name         string  `json:"name"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Distance     float64 `json:"distance"`
}

// VisitorEvent is the payload of every visitor.* event
type VisitorEvent struct {
	VisitorID    int64    `json:"visitor_id"`
	Name         *string  `json:"name"`
	PersonToMeet *string  `json:"person_to_meet"`
	Status       string   `json:"status"`
	Distance     *float64 `json:"distance,omitempty"`
}

func newVisitorEvent(v *domain.Visitor, distance *float64) VisitorEvent {
	return VisitorEvent{
		VisitorID:    v.ID,
		Name:         v.Name,
		PersonToMeet: v.PersonToMeet,
		Status:       string(v.Status),
		Distance:     distance,
	}
}

// EmployeeEvent is the payload of employee.registered
type EmployeeEvent struct {
	EmployeeID int64  `json:"employee_id"`
	Name       string `json:"name"`
}

// publish never fails the caller: the outcome is already persisted and
// delivery problems are only logged.
func publish(ctx context.Context, logger *slog.Logger, p Publisher, eventType string, data any) {
	if err := p.Publish(ctx, eventType, data); err != nil {
		logger.WarnContext(ctx, "failed to publish event",
			slog.String("event", eventType),
			slog.String("error", err.Error()),
		)
	}
}
