package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of auditable event
type EventType string

const (
	EventEmployeeRegistered EventType = "EMPLOYEE_REGISTERED"
	EventEmployeeRenamed    EventType = "EMPLOYEE_RENAMED"
	EventEmployeeDeleted    EventType = "EMPLOYEE_DELETED"
	EventAttendanceMarked   EventType = "ATTENDANCE_MARKED"
	EventVisitorRecognized  EventType = "VISITOR_RECOGNIZED"
	EventVisitorRecorded    EventType = "VISITOR_RECORDED"
	EventVisitorCreated     EventType = "VISITOR_CREATED"
	EventVisitorUpdated     EventType = "VISITOR_UPDATED"
	EventVisitorDecided     EventType = "VISITOR_DECIDED"
	EventVisitorDeleted     EventType = "VISITOR_DELETED"
	EventFaceRejected       EventType = "FACE_REJECTED"
)

// Event records who was seen or changed. Biometric data is never logged.
type Event struct {
	ID          uuid.UUID         `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	EventType   EventType         `json:"event_type"`
	SubjectKind string            `json:"subject_kind,omitempty"`
	SubjectID   int64             `json:"subject_id,omitempty"`
	Extractor   string            `json:"extractor,omitempty"`
	Distance    *float64          `json:"distance,omitempty"`
	Success     bool              `json:"success"`
	Error       string            `json:"error,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	RequestID   string            `json:"request_id,omitempty"`
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a new audit logger using slog
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	event = stamp(ctx, event)

	eventJSON, err := json.Marshal(event)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to marshal audit event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(event.EventType)),
		)
		return err
	}

	attrs := []any{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.Bool("success", event.Success),
		slog.String("event_data", string(eventJSON)),
	}
	if event.SubjectID != 0 {
		attrs = append(attrs, slog.String("subject", event.SubjectKind+":"+strconv.FormatInt(event.SubjectID, 10)))
	}

	l.logger.InfoContext(ctx, "audit_event", attrs...)

	return nil
}

func stamp(ctx context.Context, event Event) Event {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = RequestIDFromContext(ctx)
	}
	return event
}

// NoOpLogger is a logger that does nothing (for testing or when audit is disabled)
type NoOpLogger struct{}

// Log does nothing and returns nil
func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}

type requestIDKey struct{}

// WithRequestID tags ctx so events logged with it carry the request id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the id set by WithRequestID, or ""
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
