package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool the repositories use.
// pgxmock.PgxPoolIface satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// EmployeeRepositoryInterface defines operations for employee data access
type EmployeeRepositoryInterface interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	UpdateName(ctx context.Context, id int64, name string) (*domain.Employee, error)
	Delete(ctx context.Context, id int64) (*domain.Employee, error)
}

// VisitorRepositoryInterface defines operations for visitor data access
type VisitorRepositoryInterface interface {
	Create(ctx context.Context, visitor *domain.Visitor) error
	GetByID(ctx context.Context, id int64) (*domain.Visitor, error)
	List(ctx context.Context) ([]domain.Visitor, error)
	Update(ctx context.Context, id int64, update domain.VisitorUpdate) (*domain.Visitor, error)
	UpdateStatus(ctx context.Context, id int64, status domain.VisitorStatus) (*domain.Visitor, error)
	Delete(ctx context.Context, id int64) (*domain.Visitor, error)
}

// AttendanceRepositoryInterface defines operations for attendance records
type AttendanceRepositoryInterface interface {
	Create(ctx context.Context, attendance *domain.Attendance) error
	List(ctx context.Context, date string) ([]domain.Attendance, error)
}

// PoolRepositoryInterface loads the candidate pools used for matching
type PoolRepositoryInterface interface {
	LoadPools(ctx context.Context) (*Pools, error)
	ImagePaths(ctx context.Context) (map[string]struct{}, error)
}
