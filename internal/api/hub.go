package api

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/history"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local dashboard tool; origin restrictions can come from config later.
		return true
	},
}

// client is one connected dashboard stream.
type client struct {
	id   string
	conn *websocket.Conn
	send chan StreamMessage
}

// Hub fans per-cycle snapshots out to connected WebSocket clients. Slow
// clients are skipped, never waited on: the monitor loop must not block on
// presentation.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// BroadcastCycle implements pipeline.Broadcaster.
func (h *Hub) BroadcastCycle(metrics *pipeline.CycleMetrics, stats history.Stats) {
	msg := StreamMessage{
		Type:      "cycle",
		Timestamp: time.Now(),
		Metrics:   metrics,
		Stats:     &stats,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Client buffer full, drop this snapshot for them.
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleWS upgrades the connection and starts the read/write pumps.
func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan StreamMessage, 64),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()
	log.Printf("[WS] Client connected: %s (total: %d)", c.id, total)

	go h.writePump(c)
	go h.readPump(c)
}

// readPump drains client messages until the connection closes; clients
// only ever subscribe, so incoming payloads are discarded.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			return
		}
	}
}

// writePump serializes queued snapshots to the client.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Write error: %v", err)
			}
			return
		}
	}

	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// drop unregisters and closes a client.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, exists := h.clients[c.id]; exists {
		delete(h.clients, c.id)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	c.conn.Close()
	log.Printf("[WS] Client disconnected: %s (total: %d)", c.id, total)
}
