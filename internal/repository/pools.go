package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

// Pools is a consistent snapshot of everyone a face can be matched against
type Pools struct {
	Employees []domain.Employee
	// Visitors holds only visitors that have an embedding
	Visitors []domain.Visitor
}

type PoolRepository struct {
	pool PgxPool
}

func NewPoolRepository(pool PgxPool) *PoolRepository {
	return &PoolRepository{pool: pool}
}

// LoadPools reads both pools in one read-only repeatable-read transaction so
// a concurrent enrollment is either fully visible or not at all. Both pools
// are ordered by id, which fixes the tie-break order for matching.
func (r *PoolRepository) LoadPools(ctx context.Context) (*Pools, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("load pools: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	employeeRows, err := tx.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load pools: employees: %w", err)
	}
	employees, err := collectEmployees(employeeRows)
	employeeRows.Close()
	if err != nil {
		return nil, fmt.Errorf("load pools: employees: %w", err)
	}

	visitorRows, err := tx.Query(ctx, `SELECT `+visitorColumns+` FROM visitors WHERE embedding IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load pools: visitors: %w", err)
	}
	visitors, err := collectVisitors(visitorRows)
	visitorRows.Close()
	if err != nil {
		return nil, fmt.Errorf("load pools: visitors: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("load pools: commit: %w", err)
	}

	return &Pools{Employees: employees, Visitors: visitors}, nil
}

// ImagePaths returns every image path referenced by an employee or visitor
func (r *PoolRepository) ImagePaths(ctx context.Context) (map[string]struct{}, error) {
	query := `
		SELECT image_path FROM employees
		UNION
		SELECT image_path FROM visitors
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list image paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan image path: %w", err)
		}
		paths[path] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list image paths: %w", err)
	}

	return paths, nil
}
