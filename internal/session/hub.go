package session

import "sync"

// Hub is the process-wide room table. Rooms are created lazily on first
// join and kept for the life of the process: there is intentionally no
// eviction, matching the coordinator's contract that a room identifier
// stays resolvable once it has ever been joined (see DESIGN.md for the
// unbounded-growth tradeoff).
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewHub() *Hub { return &Hub{rooms: make(map[string]*Room)} }

func (h *Hub) GetOrCreate(id string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[id]; ok {
		return r
	}
	r := NewRoom(id)
	h.rooms[id] = r
	return r
}

// Get looks up a room without creating it. Events referencing a room
// that was never joined are silently dropped by callers.
func (h *Hub) Get(id string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[id]
	return r, ok
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
