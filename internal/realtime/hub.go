package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"taskbuddy-api/internal/models"
)

// Event types pushed to clients
const (
	EventSession     = "session"
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskDeleted = "task_deleted"
	EventTaskMoved   = "task_moved"
)

// Event is the JSON message sent over a client connection.
type Event struct {
	Type    string         `json:"type"`
	UserID  string         `json:"userId"`
	TaskID  string         `json:"taskId,omitempty"`
	Task    *models.Task   `json:"task,omitempty"`
	Tasks   []models.Task  `json:"tasks,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at"`
	Version int            `json:"version"`
}

// Client represents a single websocket client connection.
// The actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains active user connections and broadcasts events to them.
type Hub struct {
	mu              sync.RWMutex
	userIdToClients map[string]map[Client]struct{}
}

var hubInstance *Hub
var once sync.Once

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		userIdToClients: make(map[string]map[Client]struct{}),
	}
}

// GetHub returns the process-wide hub instance.
func GetHub() *Hub {
	once.Do(func() {
		hubInstance = NewHub()
	})
	return hubInstance
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userIdToClients[userID]; !ok {
		h.userIdToClients[userID] = make(map[Client]struct{})
	}
	h.userIdToClients[userID][client] = struct{}{}
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.userIdToClients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userIdToClients, userID)
		}
	}
}

// Clients returns how many connections a user has open.
func (h *Hub) Clients(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userIdToClients[userID])
}

// Broadcast sends a raw message to all clients of a user and returns how
// many accepted it. Failed clients are cleaned up by their handler.
func (h *Hub) Broadcast(userID string, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for c := range h.userIdToClients[userID] {
		if c.Send(message) {
			sent++
		}
	}
	return sent
}

// Publish encodes an event and broadcasts it to the event's user.
func (h *Hub) Publish(evt Event) {
	if evt.Version == 0 {
		evt.Version = 1
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("encode %s event: %v", evt.Type, err)
		return
	}
	h.Broadcast(evt.UserID, data)
}
