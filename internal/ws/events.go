package ws

import (
	"time"
)

// Event is one message pushed to every connected dashboard
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
