package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/audit"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/match"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/provider"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/repository"
)

// AttendanceResult reports what Mark did with the submitted face.
// Exactly one of Attendance (employee), Visitor (returning or new) is set.
type AttendanceResult struct {
	Kind       match.Kind
	Employee   *domain.Employee
	Attendance *domain.Attendance
	Visitor    *domain.Visitor
	// Distance to the accepted candidate; nil for a new visitor
	Distance *float64
}

type AttendanceService struct {
	attendance AttendanceRepositoryInterface
	visitors   VisitorRepositoryInterface
	pools      PoolLoader
	images     ImageStore
	faces      faceReader
	audit      audit.Logger
	events     Publisher
	logger     *slog.Logger
	now        func() time.Time
}

func NewAttendanceService(
	attendance AttendanceRepositoryInterface,
	visitors VisitorRepositoryInterface,
	pools PoolLoader,
	images ImageStore,
	extractor provider.EmbeddingExtractor,
	maxImageSize int64,
	auditLogger audit.Logger,
	logger *slog.Logger,
) *AttendanceService {
	return &AttendanceService{
		attendance: attendance,
		visitors:   visitors,
		pools:      pools,
		images:     images,
		faces:      faceReader{extractor: extractor, maxImageSize: maxImageSize},
		audit:      auditLogger,
		events:     noopPublisher{},
		logger:     logger,
		now:        time.Now,
	}
}

// WithPublisher sets where attendance and visitor arrival events are published
func (s *AttendanceService) WithPublisher(p Publisher) *AttendanceService {
	s.events = p
	return s
}

// WithClock overrides the clock used to stamp attendance records
func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	s.now = now
	return s
}

// Mark identifies the face and records the outcome: an attendance row for
// an employee, nothing for a returning visitor, and a pending visitor
// without embedding for an unknown face.
func (s *AttendanceService) Mark(ctx context.Context, image []byte) (*AttendanceResult, error) {
	normalized, query, err := s.faces.read(ctx, image)
	if err != nil {
		_ = s.audit.Log(ctx, audit.Event{
			EventType: audit.EventFaceRejected,
			Extractor: s.faces.extractor.Name(),
			Error:     err.Error(),
			Metadata:  map[string]string{"flow": "attendance"},
		})
		return nil, err
	}

	pools, err := s.pools.LoadPools(ctx)
	if err != nil {
		return nil, err
	}

	employees := employeeCandidates(pools.Employees)
	visitors := visitorCandidates(pools.Visitors)

	if err := match.ValidateDimensions(query, employees); err != nil {
		return nil, fmt.Errorf("employee pool: %w", err)
	}
	if err := match.ValidateDimensions(query, visitors); err != nil {
		return nil, fmt.Errorf("visitor pool: %w", err)
	}

	decision := match.Decide(query, employees, visitors)

	s.logger.DebugContext(ctx, "attendance decision",
		slog.String("kind", decision.Kind.String()),
		slog.String("employee_match", decision.Employee.Status.String()),
		slog.Float64("employee_distance", decision.Employee.Distance),
		slog.String("visitor_match", decision.Visitor.Status.String()),
		slog.Float64("visitor_distance", decision.Visitor.Distance),
	)

	switch decision.Kind {
	case match.KindEmployee:
		return s.markEmployee(ctx, &pools.Employees[decision.Employee.Index], decision.Distance)
	case match.KindVisitor:
		return s.returningVisitor(ctx, &pools.Visitors[decision.Visitor.Index], decision.Distance)
	default:
		return s.recordNewVisitor(ctx, normalized)
	}
}

func (s *AttendanceService) markEmployee(ctx context.Context, employee *domain.Employee, distance float64) (*AttendanceResult, error) {
	record := domain.NewAttendance(employee, s.now())
	if err := s.attendance.Create(ctx, record); err != nil {
		return nil, err
	}

	_ = s.audit.Log(ctx, audit.Event{
		EventType:   audit.EventAttendanceMarked,
		SubjectKind: "employee",
		SubjectID:   employee.ID,
		Extractor:   s.faces.extractor.Name(),
		Distance:    &distance,
		Success:     true,
	})
	publish(ctx, s.logger, s.events, EventAttendanceMarked, AttendanceEvent{
		AttendanceID: record.ID,
		EmployeeID:   employee.ID,
		Name:         record.Name,
		Date:         record.Date,
		Time:         record.Time,
		Distance:     distance,
	})

	return &AttendanceResult{
		Kind:       match.KindEmployee,
		Employee:   employee,
		Attendance: record,
		Distance:   &distance,
	}, nil
}

func (s *AttendanceService) returningVisitor(ctx context.Context, visitor *domain.Visitor, distance float64) (*AttendanceResult, error) {
	_ = s.audit.Log(ctx, audit.Event{
		EventType:   audit.EventVisitorRecognized,
		SubjectKind: "visitor",
		SubjectID:   visitor.ID,
		Extractor:   s.faces.extractor.Name(),
		Distance:    &distance,
		Success:     true,
		Metadata:    map[string]string{"status": string(visitor.Status)},
	})
	publish(ctx, s.logger, s.events, EventVisitorRecognized, newVisitorEvent(visitor, &distance))

	return &AttendanceResult{
		Kind:     match.KindVisitor,
		Visitor:  visitor,
		Distance: &distance,
	}, nil
}

// recordNewVisitor stores a walk-up without embedding, so it never joins the
// visitor pool until someone creates the visitor explicitly
func (s *AttendanceService) recordNewVisitor(ctx context.Context, image []byte) (*AttendanceResult, error) {
	path, err := s.images.Save(ctx, visitorImagePrefix, image, imageExt)
	if err != nil {
		return nil, fmt.Errorf("save visitor image: %w", err)
	}

	visitor := &domain.Visitor{
		Status:    domain.VisitorPending,
		ImagePath: path,
	}
	if err := s.visitors.Create(ctx, visitor); err != nil {
		removeImage(ctx, s.logger, s.images, path)
		return nil, err
	}

	_ = s.audit.Log(ctx, audit.Event{
		EventType:   audit.EventVisitorRecorded,
		SubjectKind: "visitor",
		SubjectID:   visitor.ID,
		Extractor:   s.faces.extractor.Name(),
		Success:     true,
	})
	publish(ctx, s.logger, s.events, EventVisitorArrived, newVisitorEvent(visitor, nil))

	return &AttendanceResult{
		Kind:    match.KindNewVisitor,
		Visitor: visitor,
	}, nil
}

// List returns attendance records, optionally for a single YYYY-MM-DD date
func (s *AttendanceService) List(ctx context.Context, date string) ([]domain.Attendance, error) {
	if date != "" {
		if _, err := time.Parse(domain.AttendanceDateLayout, date); err != nil {
			return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("date must be YYYY-MM-DD: %w", err))
		}
	}
	return s.attendance.List(ctx, date)
}

func employeeCandidates(employees []domain.Employee) []match.Candidate {
	candidates := make([]match.Candidate, len(employees))
	for i, e := range employees {
		candidates[i] = match.Candidate{ID: e.ID, Label: e.Name, Embedding: e.Embedding}
	}
	return candidates
}

func visitorCandidates(visitors []domain.Visitor) []match.Candidate {
	candidates := make([]match.Candidate, len(visitors))
	for i, v := range visitors {
		label := fmt.Sprintf("visitor %d", v.ID)
		if v.Name != nil {
			label = *v.Name
		}
		candidates[i] = match.Candidate{ID: v.ID, Label: label, Embedding: v.Embedding}
	}
	return candidates
}

var _ PoolLoader = (*repository.PoolRepository)(nil)
