package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/audit"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/provider"
)

type VisitorService struct {
	repo   VisitorRepositoryInterface
	images ImageStore
	faces  faceReader
	audit  audit.Logger
	events Publisher
	logger *slog.Logger
}

func NewVisitorService(
	repo VisitorRepositoryInterface,
	images ImageStore,
	extractor provider.EmbeddingExtractor,
	maxImageSize int64,
	auditLogger audit.Logger,
	logger *slog.Logger,
) *VisitorService {
	return &VisitorService{
		repo:   repo,
		images: images,
		faces:  faceReader{extractor: extractor, maxImageSize: maxImageSize},
		audit:  auditLogger,
		events: noopPublisher{},
		logger: logger,
	}
}

// WithPublisher sets where visitor events are published
func (s *VisitorService) WithPublisher(p Publisher) *VisitorService {
	s.events = p
	return s
}

// Create registers a named visitor together with an embedding, so later
// attendance checks recognise them.
func (s *VisitorService) Create(ctx context.Context, name, personToMeet string, image []byte) (*domain.Visitor, error) {
	name, err := domain.ValidateName(name)
	if err != nil {
		return nil, err
	}
	personToMeet, err = validatePersonToMeet(personToMeet)
	if err != nil {
		return nil, err
	}

	normalized, embedding, err := s.faces.read(ctx, image)
	if err != nil {
		_ = s.audit.Log(ctx, audit.Event{
			EventType: audit.EventFaceRejected,
			Extractor: s.faces.extractor.Name(),
			Error:     err.Error(),
			Metadata:  map[string]string{"flow": "visitor_create"},
		})
		return nil, err
	}

	path, err := s.images.Save(ctx, visitorImagePrefix, normalized, imageExt)
	if err != nil {
		return nil, fmt.Errorf("save visitor image: %w", err)
	}

	visitor := &domain.Visitor{
		Name:         &name,
		PersonToMeet: &personToMeet,
		Status:       domain.VisitorPending,
		ImagePath:    path,
		Embedding:    embedding,
	}

	if err := s.repo.Create(ctx, visitor); err != nil {
		removeImage(ctx, s.logger, s.images, path)
		return nil, err
	}

	_ = s.audit.Log(ctx, audit.Event{
		EventType:   audit.EventVisitorCreated,
		SubjectKind: "visitor",
		SubjectID:   visitor.ID,
		Extractor:   s.faces.extractor.Name(),
		Success:     true,
	})
	publish(ctx, s.logger, s.events, EventVisitorCreated, newVisitorEvent(visitor, nil))

	return visitor, nil
}

func (s *VisitorService) List(ctx context.Context) ([]domain.Visitor, error) {
	return s.repo.List(ctx)
}

func (s *VisitorService) Get(ctx context.Context, id int64) (*domain.Visitor, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update. An empty update returns the current record.
func (s *VisitorService) Update(ctx context.Context, id int64, update domain.VisitorUpdate) (*domain.Visitor, error) {
	if update.IsEmpty() {
		return s.repo.GetByID(ctx, id)
	}

	if update.Name != nil {
		name, err := domain.ValidateName(*update.Name)
		if err != nil {
			return nil, err
		}
		update.Name = &name
	}
	if update.PersonToMeet != nil {
		personToMeet, err := validatePersonToMeet(*update.PersonToMeet)
		if err != nil {
			return nil, err
		}
		update.PersonToMeet = &personToMeet
	}

	visitor, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	_ = s.audit.Log(ctx, audit.Event{
		EventType:   audit.EventVisitorUpdated,
		SubjectKind: "visitor",
		SubjectID:   id,
		Success:     true,
	})

	return visitor, nil
}

// Decide approves or rejects a visitor. An unknown visitor is reported
// before an invalid decision.
func (s *VisitorService) Decide(ctx context.Context, id int64, decision string) (*domain.Visitor, error) {
	status, err := domain.ParseDecision(decision)
	if err != nil {
		if _, lookupErr := s.repo.GetByID(ctx, id); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, err
	}

	visitor, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	_ = s.audit.Log(ctx, audit.Event{
		EventType:   audit.EventVisitorDecided,
		SubjectKind: "visitor",
		SubjectID:   id,
		Success:     true,
		Metadata:    map[string]string{"status": string(status)},
	})
	publish(ctx, s.logger, s.events, EventVisitorDecided, newVisitorEvent(visitor, nil))

	return visitor, nil
}

// Delete removes the visitor row and then its image
func (s *VisitorService) Delete(ctx context.Context, id int64) error {
	visitor, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	removeImage(ctx, s.logger, s.images, visitor.ImagePath)

	_ = s.audit.Log(ctx, audit.Event{
		EventType:   audit.EventVisitorDeleted,
		SubjectKind: "visitor",
		SubjectID:   id,
		Success:     true,
	})

	return nil
}

func validatePersonToMeet(personToMeet string) (string, error) {
	personToMeet = strings.TrimSpace(personToMeet)
	if personToMeet == "" {
		return "", domain.ErrValidationFailed.WithError(errors.New("person_to_meet is required"))
	}
	if len(personToMeet) > 255 {
		return "", domain.ErrValidationFailed.WithError(errors.New("person_to_meet must be at most 255 characters"))
	}
	return personToMeet, nil
}
