package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/audit"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/provider"
)

type EmployeeService struct {
	repo   EmployeeRepositoryInterface
	images ImageStore
	faces  faceReader
	audit  audit.Logger
	events Publisher
	logger *slog.Logger
}

func NewEmployeeService(
	repo EmployeeRepositoryInterface,
	images ImageStore,
	extractor provider.EmbeddingExtractor,
	maxImageSize int64,
	auditLogger audit.Logger,
	logger *slog.Logger,
) *EmployeeService {
	return &EmployeeService{
		repo:   repo,
		images: images,
		faces:  faceReader{extractor: extractor, maxImageSize: maxImageSize},
		audit:  auditLogger,
		events: noopPublisher{},
		logger: logger,
	}
}

// WithPublisher sets where registration events are published
func (s *EmployeeService) WithPublisher(p Publisher) *EmployeeService {
	s.events = p
	return s
}

// Register enrolls an employee. The image is stored only once a face has
// been found, and removed again if the row cannot be written.
func (s *EmployeeService) Register(ctx context.Context, name string, image []byte) (*domain.Employee, error) {
	name, err := domain.ValidateName(name)
	if err != nil {
		return nil, err
	}

	normalized, embedding, err := s.faces.read(ctx, image)
	if err != nil {
		s.logRejected(ctx, err)
		return nil, err
	}

	path, err := s.images.Save(ctx, employeeImagePrefix, normalized, imageExt)
	if err != nil {
		return nil, fmt.Errorf("save employee image: %w", err)
	}

	employee := &domain.Employee{
		Name:      name,
		Embedding: embedding,
		ImagePath: path,
	}

	if err := s.repo.Create(ctx, employee); err != nil {
		removeImage(ctx, s.logger, s.images, path)
		return nil, err
	}

	_ = s.audit.Log(ctx, audit.Event{
		EventType:   audit.EventEmployeeRegistered,
		SubjectKind: "employee",
		SubjectID:   employee.ID,
		Extractor:   s.faces.extractor.Name(),
		Success:     true,
	})
	publish(ctx, s.logger, s.events, EventEmployeeRegistered, EmployeeEvent{
		EmployeeID: employee.ID,
		Name:       employee.Name,
	})

	return employee, nil
}

func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.List(ctx)
}

func (s *EmployeeService) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

// Rename changes the display name; the stored embedding is untouched
func (s *EmployeeService) Rename(ctx context.Context, id int64, name string) (*domain.Employee, error) {
	name, err := domain.ValidateName(name)
	if err != nil {
		return nil, err
	}

	employee, err := s.repo.UpdateName(ctx, id, name)
	if err != nil {
		return nil, err
	}

	_ = s.audit.Log(ctx, audit.Event{
		EventType:   audit.EventEmployeeRenamed,
		SubjectKind: "employee",
		SubjectID:   id,
		Success:     true,
	})

	return employee, nil
}

// Delete removes the employee row and then its image. Attendance history is
// kept with the employee reference cleared.
func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	employee, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	removeImage(ctx, s.logger, s.images, employee.ImagePath)

	_ = s.audit.Log(ctx, audit.Event{
		EventType:   audit.EventEmployeeDeleted,
		SubjectKind: "employee",
		SubjectID:   id,
		Success:     true,
	})

	return nil
}

func (s *EmployeeService) logRejected(ctx context.Context, err error) {
	_ = s.audit.Log(ctx, audit.Event{
		EventType: audit.EventFaceRejected,
		Extractor: s.faces.extractor.Name(),
		Error:     err.Error(),
		Metadata:  map[string]string{"flow": "employee_register"},
	})
}
