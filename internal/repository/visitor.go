package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

const visitorColumns = `id, name, person_to_meet, status, image_path, embedding, created_at, updated_at`

type VisitorRepository struct {
	pool PgxPool
}

func NewVisitorRepository(pool PgxPool) *VisitorRepository {
	return &VisitorRepository{pool: pool}
}

// Create inserts a visitor. The embedding is optional; walk-ups recorded by
// the attendance flow are stored without one.
func (r *VisitorRepository) Create(ctx context.Context, visitor *domain.Visitor) error {
	query := `
		INSERT INTO visitors (name, person_to_meet, status, image_path, embedding, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	if visitor.Status == "" {
		visitor.Status = domain.VisitorPending
	}

	err := r.pool.QueryRow(ctx, query,
		visitor.Name,
		visitor.PersonToMeet,
		string(visitor.Status),
		visitor.ImagePath,
		toVector(visitor.Embedding),
	).Scan(&visitor.ID, &visitor.CreatedAt, &visitor.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create visitor: %w", err)
	}

	return nil
}

func (r *VisitorRepository) GetByID(ctx context.Context, id int64) (*domain.Visitor, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors WHERE id = $1`

	visitor, err := scanVisitor(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVisitorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get visitor: %w", err)
	}

	return visitor, nil
}

func (r *VisitorRepository) List(ctx context.Context) ([]domain.Visitor, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}
	defer rows.Close()

	visitors, err := collectVisitors(rows)
	if err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}
	return visitors, nil
}

// Update applies a partial update; nil fields keep their stored value
func (r *VisitorRepository) Update(ctx context.Context, id int64, update domain.VisitorUpdate) (*domain.Visitor, error) {
	query := `
		UPDATE visitors SET
			name = COALESCE($2, name),
			person_to_meet = COALESCE($3, person_to_meet),
			status = COALESCE($4, status),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + visitorColumns

	var status *string
	if update.Status != nil {
		s := string(*update.Status)
		status = &s
	}

	visitor, err := scanVisitor(r.pool.QueryRow(ctx, query, id, update.Name, update.PersonToMeet, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVisitorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update visitor: %w", err)
	}

	return visitor, nil
}

func (r *VisitorRepository) UpdateStatus(ctx context.Context, id int64, status domain.VisitorStatus) (*domain.Visitor, error) {
	query := `
		UPDATE visitors SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + visitorColumns

	visitor, err := scanVisitor(r.pool.QueryRow(ctx, query, id, string(status)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVisitorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update visitor status: %w", err)
	}

	return visitor, nil
}

// Delete removes the row and returns it so the caller can clean up the image
func (r *VisitorRepository) Delete(ctx context.Context, id int64) (*domain.Visitor, error) {
	query := `DELETE FROM visitors WHERE id = $1 RETURNING ` + visitorColumns

	visitor, err := scanVisitor(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVisitorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete visitor: %w", err)
	}

	return visitor, nil
}

func scanVisitor(row pgx.Row) (*domain.Visitor, error) {
	var visitor domain.Visitor
	var status string
	var embedding *pgvector.Vector

	err := row.Scan(
		&visitor.ID,
		&visitor.Name,
		&visitor.PersonToMeet,
		&status,
		&visitor.ImagePath,
		&embedding,
		&visitor.CreatedAt,
		&visitor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	visitor.Status = domain.VisitorStatus(status)
	visitor.Embedding = fromVector(embedding)
	return &visitor, nil
}

func collectVisitors(rows pgx.Rows) ([]domain.Visitor, error) {
	visitors := make([]domain.Visitor, 0)
	for rows.Next() {
		visitor, err := scanVisitor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		visitors = append(visitors, *visitor)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return visitors, nil
}
