// Package realtime implements the WebSocket echo channel.  Every connection
// runs its own read/echo loop; the Hub only tracks which connections are
// open so the process can report counts and close them on shutdown.
package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub is the set of open connections keyed by connection id.
type Hub struct {
	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*websocket.Conn)}
}

// Add registers an open connection.
func (h *Hub) Add(id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = conn
}

// Remove unregisters a connection.  Removing an unknown id is a no-op.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// CloseAll closes every registered connection.  Each connection loop then
// fails its next read and removes itself.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}
