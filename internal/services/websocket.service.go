package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"framecheck/internal/models"
)

// Message types pushed to and read from feed clients
const (
	MessageStats       = "stats"
	MessageEstimation  = "estimation"
	MessagePing        = "ping"
	MessagePong        = "pong"
	MessageAuth        = "auth"
	MessageAuthSuccess = "auth_success"
	MessageAuthError   = "auth_error"
)

// DefaultStatsInterval is the stats push period used when none is configured
const DefaultStatsInterval = 5 * time.Second

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Token     string    `json:"token,omitempty"` // For auth messages from client
}

// StatsSource provides the engine snapshot pushed to clients
type StatsSource interface {
	Stats() models.EngineStats
}

// StatsFunc adapts a function to StatsSource
type StatsFunc func() models.EngineStats

func (f StatsFunc) Stats() models.EngineStats {
	return f()
}

// ClientConnection represents a connected WebSocket client
type ClientConnection struct {
	ID    string
	Conn  *websocket.Conn
	Send  chan WebSocketMessage
	Close chan bool
}

// WebSocketHub fans estimation events and periodic engine stats out to
// every connected client
type WebSocketHub struct {
	clients    map[string]*ClientConnection
	broadcast  chan WebSocketMessage
	register   chan *ClientConnection
	unregister chan string
	mu         sync.RWMutex
	stats      StatsSource
	interval   time.Duration
	done       chan struct{}
}

// NewWebSocketHub creates a hub; call Run to start it
func NewWebSocketHub(stats StatsSource, interval time.Duration) *WebSocketHub {
	if interval <= 0 {
		interval = DefaultStatsInterval
	}
	return &WebSocketHub{
		clients:    make(map[string]*ClientConnection),
		broadcast:  make(chan WebSocketMessage, 256),
		register:   make(chan *ClientConnection),
		unregister: make(chan string),
		stats:      stats,
		interval:   interval,
		done:       make(chan struct{}),
	}
}

// Run manages the hub's event loop until ctx is done
func (h *WebSocketHub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Client connected: %s (total: %d)", client.ID, total)

		case clientID := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(clientID)
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Client disconnected: %s (total: %d)", clientID, total)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- msg:
				default:
					// Client's send channel is full, skip this message
				}
			}
			h.mu.RUnlock()

		case <-ticker.C:
			if h.stats == nil {
				continue
			}
			h.enqueue(WebSocketMessage{
				Type:      MessageStats,
				Timestamp: time.Now(),
				Data:      h.stats.Stats(),
			})
		}
	}
}

func (h *WebSocketHub) removeLocked(clientID string) {
	if client, exists := h.clients[clientID]; exists {
		delete(h.clients, clientID)
		close(client.Send)
	}
}

// shutdown signals Close instead of closing Send, since read pumps may
// still be writing pongs to Send
func (h *WebSocketHub) shutdown() {
	h.mu.Lock()
	for id, client := range h.clients {
		delete(h.clients, id)
		if client.Close != nil {
			close(client.Close)
		}
	}
	h.mu.Unlock()
	close(h.done)
	log.Printf("[WS] Hub stopped")
}

// enqueue drops the message when the broadcast buffer is full
func (h *WebSocketHub) enqueue(msg WebSocketMessage) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// ObserveEstimation pushes an estimation event to every client. It never
// blocks the estimating request.
func (h *WebSocketHub) ObserveEstimation(record models.EstimationRecord) {
	h.enqueue(WebSocketMessage{
		Type:      MessageEstimation,
		Timestamp: record.Timestamp,
		Data:      record,
	})
}

// Register adds a new client to the hub. It returns false once the hub has stopped.
func (h *WebSocketHub) Register(client *ClientConnection) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *WebSocketHub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
