// Package ws pushes front desk events (arrivals, recognitions, approvals)
// to connected dashboards over websockets.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *slog.Logger
	now        func() time.Time
	mu         sync.RWMutex
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
		now:        time.Now,
	}
}

// Run serves registrations and broadcasts until ctx is canceled, then
// disconnects every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.broadcastAll(event)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// broadcastAll drops clients whose buffer is full rather than blocking
// the hub on a slow dashboard
func (h *Hub) broadcastAll(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("type", event.Type),
			slog.Any("error", err),
		)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// Publish queues an event for every connected dashboard. It never blocks;
// an event is dropped when the hub is saturated.
func (h *Hub) Publish(_ context.Context, eventType string, data any) error {
	event := Event{
		Type:      eventType,
		Data:      data,
		Timestamp: h.now(),
	}

	select {
	case h.broadcast <- event:
		return nil
	default:
		return fmt.Errorf("ws: hub saturated, dropped %s", eventType)
	}
}

func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
