package notification

import (
	"sync"

	"github.com/gorilla/websocket"
)

// client wraps a websocket connection with a write lock. Broadcast runs on
// the request goroutine of every submission and decision, so concurrent
// writes to one connection must be serialized; gorilla/websocket allows a
// single writer at a time.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(message)
}

// Hub tracks the websocket connections of administrators watching the
// rental review feed.
type Hub struct {
	connections map[int64]*client
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]*client),
	}
}

func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if old, exists := h.connections[userID]; exists && old != nil {
		_ = old.conn.Close()
	}

	h.connections[userID] = &client{conn: conn}
}

func (h *Hub) Unregister(userID int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if c, exists := h.connections[userID]; exists && c != nil {
		_ = c.conn.Close()
		delete(h.connections, userID)
	}
}

// Broadcast sends the message to every connected watcher. Connections that
// fail to write are dropped.
func (h *Hub) Broadcast(message interface{}) {
	h.mutex.RLock()
	clients := make(map[int64]*client, len(h.connections))
	for id, c := range h.connections {
		clients[id] = c
	}
	h.mutex.RUnlock()

	for id, c := range clients {
		if c == nil {
			continue
		}
		if err := c.send(message); err != nil {
			h.Unregister(id)
		}
	}
}

func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.connections)
}
