package repository

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

func (r *AttendanceRepository) Create(ctx context.Context, attendance *domain.Attendance) error {
	query := `
		INSERT INTO attendance (employee_id, name, date, time, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		attendance.EmployeeID,
		attendance.Name,
		attendance.Date,
		attendance.Time,
	).Scan(&attendance.ID, &attendance.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrEmployeeNotFound.WithError(err)
		}
		return fmt.Errorf("create attendance: %w", err)
	}

	return nil
}

// List returns attendance records in insertion order. An empty date returns
// every record.
func (r *AttendanceRepository) List(ctx context.Context, date string) ([]domain.Attendance, error) {
	query := `
		SELECT id, employee_id, name, date, time, created_at
		FROM attendance
		WHERE ($1::text = '' OR date = $1::text)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	records := make([]domain.Attendance, 0)
	for rows.Next() {
		var a domain.Attendance
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.Name, &a.Date, &a.Time, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	return records, nil
}
