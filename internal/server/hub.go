package server

import (
	"log"
	"sync"
)

// Hub indexes live peers by handle. It is the delivery surface the
// relay and all notifications go through: a send to a handle that is no
// longer live is dropped, never an error.
type Hub struct {
	mu    sync.RWMutex
	peers map[string]Peer
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{peers: make(map[string]Peer)}
}

// Add registers a peer under its handle
func (h *Hub) Add(p Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p.Handle()] = p
}

// Remove drops a peer from the index
func (h *Hub) Remove(handle string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, handle)
}

// Get returns the peer registered under a handle
func (h *Hub) Get(handle string) (Peer, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.peers[handle]
	return p, ok
}

// Send delivers one event to a handle. It reports whether the event
// was handed to a live connection; a missing or failing peer drops the
// event.
func (h *Hub) Send(handle, event string, data any) bool {
	h.mu.RLock()
	p, ok := h.peers[handle]
	h.mu.RUnlock()

	if !ok {
		return false
	}
	if err := p.Send(event, data); err != nil {
		log.Printf("[WS] Failed to send %s to %s: %v", event, handle, err)
		return false
	}
	return true
}

// Broadcast delivers one event to every given handle
func (h *Hub) Broadcast(handles []string, event string, data any) {
	for _, handle := range handles {
		h.Send(handle, event, data)
	}
}

// Count returns the number of connected peers
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}
