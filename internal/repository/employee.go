package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

const employeeColumns = `id, name, embedding, image_path, created_at, updated_at`

type EmployeeRepository struct {
	pool PgxPool
}

func NewEmployeeRepository(pool PgxPool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	query := `
		INSERT INTO employees (name, embedding, image_path, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	if len(employee.Embedding) == 0 {
		return fmt.Errorf("create employee: embedding is required")
	}

	err := r.pool.QueryRow(ctx, query,
		employee.Name,
		toVector(employee.Embedding),
		employee.ImagePath,
	).Scan(&employee.ID, &employee.CreatedAt, &employee.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}

	return nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	employee, err := scanEmployee(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}

	return employee, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees, err := collectEmployees(rows)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

func (r *EmployeeRepository) UpdateName(ctx context.Context, id int64, name string) (*domain.Employee, error) {
	query := `
		UPDATE employees SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + employeeColumns

	employee, err := scanEmployee(r.pool.QueryRow(ctx, query, id, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}

	return employee, nil
}

// Delete removes the row and returns it so the caller can clean up the image
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) (*domain.Employee, error) {
	query := `DELETE FROM employees WHERE id = $1 RETURNING ` + employeeColumns

	employee, err := scanEmployee(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete employee: %w", err)
	}

	return employee, nil
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var employee domain.Employee
	var embedding *pgvector.Vector

	err := row.Scan(
		&employee.ID,
		&employee.Name,
		&embedding,
		&employee.ImagePath,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	employee.Embedding = fromVector(embedding)
	return &employee, nil
}

func collectEmployees(rows pgx.Rows) ([]domain.Employee, error) {
	employees := make([]domain.Employee, 0)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, *employee)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}
