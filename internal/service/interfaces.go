package service

import (
	"context"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/repository"
)

type EmployeeRepositoryInterface interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	UpdateName(ctx context.Context, id int64, name string) (*domain.Employee, error)
	Delete(ctx context.Context, id int64) (*domain.Employee, error)
}

type VisitorRepositoryInterface interface {
	Create(ctx context.Context, visitor *domain.Visitor) error
	GetByID(ctx context.Context, id int64) (*domain.Visitor, error)
	List(ctx context.Context) ([]domain.Visitor, error)
	Update(ctx context.Context, id int64, update domain.VisitorUpdate) (*domain.Visitor, error)
	UpdateStatus(ctx context.Context, id int64, status domain.VisitorStatus) (*domain.Visitor, error)
	Delete(ctx context.Context, id int64) (*domain.Visitor, error)
}

type AttendanceRepositoryInterface interface {
	Create(ctx context.Context, attendance *domain.Attendance) error
	List(ctx context.Context, date string) ([]domain.Attendance, error)
}

type PoolLoader interface {
	LoadPools(ctx context.Context) (*repository.Pools, error)
}

// ImageStore persists the normalized image of every enrolled or detected face
type ImageStore interface {
	Save(ctx context.Context, prefix string, data []byte, ext string) (string, error)
	Delete(path string) error
}
