// Package webhook delivers front desk events to an external endpoint, such
// as a chat integration that tells hosts their visitor has arrived. Events
// go through a PostgreSQL outbox so a slow or failing endpoint never holds
// up a request.
package webhook

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

// Job is one queued delivery
type Job struct {
	ID          uuid.UUID  `json:"id"`
	EventType   string     `json:"event_type"`
	Payload     []byte     `json:"payload"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
	Status      string     `json:"status"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EventPayload is the JSON body posted to the endpoint. ID stays the same
// across retries so receivers can deduplicate.
type EventPayload struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
