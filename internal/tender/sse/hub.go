// Package sse pushes change notifications to connected browsers. Clients
// treat every event as "invalidate and refetch", never as a granular patch,
// so an echo of a locally-initiated write is harmless.
package sse

import (
	"fmt"
	"log"
	"sync"
)

// Event is one Server-Sent Event.
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client is one connected SSE consumer.
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub manages all SSE client connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register adds a new client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[SSE] Client registered: id=%s user=%s (total: %d)", client.ID, client.UserID, len(h.clients))
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		log.Printf("[SSE] Client unregistered: id=%s (total: %d)", clientID, len(h.clients))
	}
}

// Broadcast sends an event to all connected clients. Slow clients are
// skipped rather than blocked on.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			log.Printf("[SSE] Client %s buffer full, skipping event", client.ID)
		}
	}
}

// PublishListingUpdate notifies all clients that a tender changed
// (created/updated/status_change/deleted) and the listing cache must be
// refetched.
func (h *Hub) PublishListingUpdate(code, action string) {
	h.Broadcast(Event{
		EventType: "listing_update",
		Data:      fmt.Sprintf(`{"code":%q,"action":%q}`, code, action),
	})
}

// PublishLineItemUpdate notifies all clients that the line items of a tender
// were rewritten.
func (h *Hub) PublishLineItemUpdate(code string) {
	h.Broadcast(Event{
		EventType: "line_item_update",
		Data:      fmt.Sprintf(`{"code":%q}`, code),
	})
}
