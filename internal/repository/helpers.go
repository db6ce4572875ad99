package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

const foreignKeyViolation = "23503"

// isForeignKeyViolation checks if the error is a foreign key constraint violation
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

// toVector converts an embedding for storage. pgvector keeps float32
// components, so values round-trip with float32 precision.
func toVector(embedding []float64) *pgvector.Vector {
	if len(embedding) == 0 {
		return nil
	}
	floats := make([]float32, len(embedding))
	for i, v := range embedding {
		floats[i] = float32(v)
	}
	vec := pgvector.NewVector(floats)
	return &vec
}

func fromVector(vec *pgvector.Vector) []float64 {
	if vec == nil || len(vec.Slice()) == 0 {
		return nil
	}
	embedding := make([]float64, len(vec.Slice()))
	for i, v := range vec.Slice() {
		embedding[i] = float64(v)
	}
	return embedding
}
