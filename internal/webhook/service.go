package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	SignatureHeader = "X-Frontdesk-Signature"
	EventHeader     = "X-Frontdesk-Event"
	DeliveryHeader  = "X-Frontdesk-Delivery"
)

// DB is the subset of *pgxpool.Pool the outbox uses
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Config struct {
	URL         string
	Secret      string
	MaxAttempts int
	Timeout     time.Duration
}

type Service struct {
	db     DB
	client *http.Client
	config Config
	now    func() time.Time
}

func NewService(db DB, config Config) *Service {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &Service{
		db: db,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
		now:    time.Now,
	}
}

// Publish queues an event for delivery by the worker
func (s *Service) Publish(ctx context.Context, eventType string, data any) error {
	payload, err := json.Marshal(EventPayload{
		ID:        uuid.New(),
		Type:      eventType,
		Data:      data,
		Timestamp: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	query := `
		INSERT INTO webhook_queue (event_type, payload, max_attempts, next_retry_at)
		VALUES ($1, $2, $3, NOW())
	`

	if _, err := s.db.Exec(ctx, query, eventType, payload, s.config.MaxAttempts); err != nil {
		return fmt.Errorf("enqueue webhook: %w", err)
	}

	return nil
}

// Send posts one signed payload. Transport failures and non-2xx replies
// are errors.
func (s *Service) Send(ctx context.Context, job *Job) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(job.Payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, Sign(s.config.Secret, job.Payload))
	req.Header.Set(EventHeader, job.EventType)
	req.Header.Set(DeliveryHeader, job.ID.String())
	req.Header.Set("User-Agent", "Frontdesk-Webhook/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("deliver webhook: HTTP %d", resp.StatusCode)
	}

	return nil
}
