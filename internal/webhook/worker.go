package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const batchSize = 10

type Worker struct {
	db       DB
	service  *Service
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

func NewWorker(db DB, service *Service, logger *slog.Logger, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Worker{
		db:       db,
		service:  service,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("webhook worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("webhook worker stopped")
			return
		case <-ticker.C:
			if _, err := w.ProcessQueue(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("failed to process webhook queue", slog.Any("error", err))
			}
		}
	}
}

// ProcessQueue delivers one batch of due jobs and returns how many were
// attempted. Rows stay locked until the batch is recorded, so concurrent
// workers on other instances skip them.
func (w *Worker) ProcessQueue(ctx context.Context) (int, error) {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		SELECT id, event_type, payload, attempts, max_attempts
		FROM webhook_queue
		WHERE status = 'pending' AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := tx.Query(ctx, query, batchSize)
	if err != nil {
		return 0, fmt.Errorf("query webhook queue: %w", err)
	}

	jobs := make([]*Job, 0, batchSize)
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.EventType, &job.Payload, &job.Attempts, &job.MaxAttempts); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan webhook job: %w", err)
		}
		jobs = append(jobs, &job)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("read webhook queue: %w", err)
	}

	for _, job := range jobs {
		sendErr := w.service.Send(ctx, job)
		if err := w.record(ctx, tx, job, sendErr); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return len(jobs), nil
}

// record stores the outcome of one attempt. Retries back off
// exponentially: 1s, 2s, 4s and so on.
func (w *Worker) record(ctx context.Context, tx pgx.Tx, job *Job, sendErr error) error {
	if sendErr == nil {
		_, err := tx.Exec(ctx, `
			UPDATE webhook_queue
			SET status = 'delivered',
			    attempts = attempts + 1,
			    last_error = NULL,
			    updated_at = NOW()
			WHERE id = $1
		`, job.ID)
		if err != nil {
			return fmt.Errorf("mark delivered: %w", err)
		}
		w.logger.Info("webhook delivered",
			slog.String("job_id", job.ID.String()),
			slog.String("event", job.EventType),
		)
		return nil
	}

	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_, err := tx.Exec(ctx, `
			UPDATE webhook_queue
			SET status = 'failed',
			    attempts = $1,
			    last_error = $2,
			    updated_at = NOW()
			WHERE id = $3
		`, attempts, sendErr.Error(), job.ID)
		if err != nil {
			return fmt.Errorf("mark failed: %w", err)
		}
		w.logger.Warn("webhook delivery abandoned",
			slog.String("job_id", job.ID.String()),
			slog.String("event", job.EventType),
			slog.Int("attempts", attempts),
			slog.String("error", sendErr.Error()),
		)
		return nil
	}

	nextRetry := w.now().Add(time.Duration(1<<job.Attempts) * time.Second)
	_, err := tx.Exec(ctx, `
		UPDATE webhook_queue
		SET attempts = $1,
		    next_retry_at = $2,
		    last_error = $3,
		    updated_at = NOW()
		WHERE id = $4
	`, attempts, nextRetry, sendErr.Error(), job.ID)
	if err != nil {
		return fmt.Errorf("schedule retry: %w", err)
	}

	w.logger.Info("webhook job scheduled for retry",
		slog.String("job_id", job.ID.String()),
		slog.Int("attempts", attempts),
		slog.Time("next_retry", nextRetry),
	)
	return nil
}
