// Package ratelimit counts face submissions per client in fixed windows
// stored in PostgreSQL, so every API instance shares the same budget.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

// DB interface for database operations
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Result describes the caller's budget after a request was counted
type Result struct {
	Limit     int
	Count     int
	ResetAt   time.Time
	Remaining int
}

// RateLimiter provides PostgreSQL-based fixed window rate limiting
type RateLimiter struct {
	db     DB
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates a rate limiter whose windows last window
func NewRateLimiter(db DB, window time.Duration) *RateLimiter {
	return &RateLimiter{
		db:     db,
		window: window,
		now:    time.Now,
	}
}

// Allow counts one request for key. It returns domain.ErrRateLimited once
// more than limit requests fell into the current window. A limit of zero
// or less disables limiting.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int) (Result, error) {
	if limit <= 0 {
		return Result{}, nil
	}

	now := r.now()
	windowEnd := now.Add(r.window)

	// A window that has ended is restarted by the same upsert
	query := `
		INSERT INTO rate_limit_counters (key, count, window_start, window_end)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET
			count = CASE
				WHEN rate_limit_counters.window_end <= $2 THEN 1
				ELSE rate_limit_counters.count + 1
			END,
			window_start = CASE
				WHEN rate_limit_counters.window_end <= $2 THEN $2
				ELSE rate_limit_counters.window_start
			END,
			window_end = CASE
				WHEN rate_limit_counters.window_end <= $2 THEN $3
				ELSE rate_limit_counters.window_end
			END
		RETURNING count, window_end
	`

	var result Result
	err := r.db.QueryRow(ctx, query, key, now, windowEnd).Scan(&result.Count, &result.ResetAt)
	if err != nil {
		return Result{}, fmt.Errorf("check rate limit: %w", err)
	}

	result.Limit = limit
	result.Remaining = max(limit-result.Count, 0)

	if result.Count > limit {
		return result, domain.ErrRateLimited.WithError(
			fmt.Errorf("%d/%d requests in window", result.Count, limit),
		)
	}

	return result, nil
}

// CleanupExpired removes counters whose window ended more than an hour ago
func (r *RateLimiter) CleanupExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM rate_limit_counters WHERE window_end < NOW() - INTERVAL '1 hour'`
	result, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("cleanup rate limits: %w", err)
	}
	return result.RowsAffected(), nil
}

// Count returns the number of requests counted for key in the current window
func (r *RateLimiter) Count(ctx context.Context, key string) (int, error) {
	query := `
		SELECT count
		FROM rate_limit_counters
		WHERE key = $1 AND window_end > $2
	`

	var count int
	err := r.db.QueryRow(ctx, query, key, r.now()).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count rate limit: %w", err)
	}

	return count, nil
}

// Reset forgets the counter for key
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	query := `DELETE FROM rate_limit_counters WHERE key = $1`
	if _, err := r.db.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("reset rate limit: %w", err)
	}
	return nil
}

// RunCleanup deletes expired counters every interval until ctx is canceled
func (r *RateLimiter) RunCleanup(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := r.CleanupExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("rate limit cleanup failed", slog.Any("error", err))
				}
				continue
			}
			if deleted > 0 {
				logger.Debug("expired rate limit counters removed", slog.Int64("deleted", deleted))
			}
		}
	}
}
