// Package hub tracks live websocket connections and fans payloads out to
// them. A Hub instance is created once at startup and shared by reference;
// it owns registered clients until they are removed.
package hub

import (
	"sync"

	"github.com/Abduqodir7007/twitter-clone/internal/config"
	"github.com/Abduqodir7007/twitter-clone/pkg/log"
)

// Hub maps chat room ids to the clients subscribed to them, plus a flat
// set of clients listening on the unscoped live feed. All operations are
// safe for concurrent use; the two maps are the only shared mutable state
// of the realtime layer and this mutex is their single synchronization
// point.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	global map[*Client]bool
	cfg    config.WebSocketConfig
}

// NewHub creates an empty Hub.
func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]bool),
		global: make(map[*Client]bool),
		cfg:    cfg,
	}
}

// Register adds client to roomID's set, creating the set if absent.
// A client may be registered to any number of rooms.
func (h *Hub) Register(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true

	log.L().Debug().Str(log.FieldClientID, c.ID).Str(log.FieldChatID, roomID).Msg("client joined room")
}

// Unregister removes client from roomID's set. Removing an absent client
// or room is a no-op. Emptied rooms are deleted so the map does not grow
// over the life of the process.
func (h *Hub) Unregister(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[roomID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}

	log.L().Debug().Str(log.FieldClientID, c.ID).Str(log.FieldChatID, roomID).Msg("client left room")
}

// RegisterGlobal adds client to the unscoped feed set.
func (h *Hub) RegisterGlobal(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.global[c] = true
}

// UnregisterGlobal removes client from the feed set and from every room
// it was part of. A disconnect is one event; both structures are cleaned
// in a single critical section.
func (h *Hub) UnregisterGlobal(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeEverywhere(c)
}

// Dispatch delivers payload to every client currently registered under
// roomID. Delivery is a single non-blocking attempt per client: a client
// whose send buffer is full is treated as dead and evicted from the whole
// registry. An unknown room is a silent no-op.
func (h *Hub) Dispatch(roomID string, payload []byte) {
	h.mu.RLock()
	var dead []*Client
	for c := range h.rooms[roomID] {
		if !c.trySend(payload) {
			dead = append(dead, c)
		}
	}
	h.mu.RUnlock()

	h.evict(dead)
}

// Broadcast delivers payload to every client in the feed set, with the
// same failure handling as Dispatch.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	var dead []*Client
	for c := range h.global {
		if !c.trySend(payload) {
			dead = append(dead, c)
		}
	}
	h.mu.RUnlock()

	h.evict(dead)
}

// RoomSize reports how many clients are registered under roomID.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// evict removes dead clients from the registry and closes their send
// channels so their write pumps shut down. The client's own mutex orders
// the close against any late send attempt.
func (h *Hub) evict(dead []*Client) {
	if len(dead) == 0 {
		return
	}

	h.mu.Lock()
	for _, c := range dead {
		h.removeEverywhere(c)
		c.closeSend()
	}
	h.mu.Unlock()

	for _, c := range dead {
		log.L().Warn().Str(log.FieldClientID, c.ID).Msg("evicted unresponsive client")
	}
}

// removeEverywhere must be called with h.mu held for writing.
func (h *Hub) removeEverywhere(c *Client) {
	delete(h.global, c)
	for roomID, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}
