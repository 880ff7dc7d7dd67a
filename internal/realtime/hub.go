package realtime

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"messenger-service/internal/observability"
)

var ErrInvalidRoom = errors.New("invalid room id")

// Hub is the per-process connection registry: room to connections, the
// reverse index for O(rooms joined) cleanup on disconnect, and a user index
// for personal-channel delivery. It is mutated only by this process's own
// connection events; cross-process delivery goes through the relay.
type Hub struct {
	mu          sync.RWMutex
	rooms       map[string]map[*Client]struct{}
	clientRooms map[*Client]map[string]struct{}
	userClients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[string]map[*Client]struct{}),
		clientRooms: make(map[*Client]map[string]struct{}),
		userClients: make(map[string]map[*Client]struct{}),
	}
}

// Register adds the client to the user index and returns how many
// connections the user now has.
func (h *Hub) Register(client *Client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[*Client]struct{})
	}
	h.userClients[client.UserID][client] = struct{}{}
	h.clientRooms[client] = make(map[string]struct{})
	return len(h.userClients[client.UserID])
}

// Unregister removes the client from every room it joined and from the user
// index, pruning empty entries. It returns the user's remaining connection
// count. The send channel is closed under the write lock, so no broadcast
// can be enqueueing concurrently.
func (h *Hub) Unregister(client *Client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clientRooms[client]; !ok {
		// Already unregistered.
		if conns, ok := h.userClients[client.UserID]; ok {
			return len(conns)
		}
		return 0
	}
	for roomID := range h.clientRooms[client] {
		h.removeFromRoom(client, roomID)
	}
	delete(h.clientRooms, client)

	remaining := 0
	if conns, ok := h.userClients[client.UserID]; ok {
		delete(conns, client)
		remaining = len(conns)
		if remaining == 0 {
			delete(h.userClients, client.UserID)
		}
	}
	close(client.send)
	return remaining
}

// Join adds the client to a room. Idempotent; an empty room id is rejected.
func (h *Hub) Join(client *Client, roomID string) error {
	if roomID == "" {
		return ErrInvalidRoom
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clientRooms[client]; !ok {
		// Client already unregistered; nothing to join.
		return nil
	}
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][client] = struct{}{}
	h.clientRooms[client][roomID] = struct{}{}
	return nil
}

func (h *Hub) removeFromRoom(client *Client, roomID string) {
	if conns, ok := h.rooms[roomID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Broadcast delivers the event to every connection currently in the room.
func (h *Hub) Broadcast(roomID string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("broadcast %s: marshal: %v", event.Event, err)
		return
	}
	h.mu.RLock()
	stale := enqueueAll(h.rooms[roomID], data)
	h.mu.RUnlock()
	h.finish(event.Event, stale)
}

// BroadcastToUsers delivers the event to every connection owned by one of
// the given users, regardless of room membership.
func (h *Hub) BroadcastToUsers(userIDs []string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("broadcast %s: marshal: %v", event.Event, err)
		return
	}
	h.mu.RLock()
	var stale []*Client
	for _, userID := range userIDs {
		stale = append(stale, enqueueAll(h.userClients[userID], data)...)
	}
	h.mu.RUnlock()
	h.finish(event.Event, stale)
}

// BroadcastAll delivers the event to every connection on this process.
// Reserved for low-cardinality events such as presence changes.
func (h *Hub) BroadcastAll(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("broadcast %s: marshal: %v", event.Event, err)
		return
	}
	h.mu.RLock()
	var stale []*Client
	for client := range h.clientRooms {
		if !client.enqueue(data) {
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()
	h.finish(event.Event, stale)
}

// SendTo delivers the event to a single connection.
func (h *Hub) SendTo(client *Client, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("send %s: marshal: %v", event.Event, err)
		return
	}
	h.mu.RLock()
	var stale []*Client
	if _, ok := h.clientRooms[client]; ok {
		if !client.enqueue(data) {
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()
	h.finish(event.Event, stale)
}

// UserConnectionCount reports how many live connections a user has on this
// process.
func (h *Hub) UserConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID])
}

// RoomSize reports the number of connections currently joined to a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func enqueueAll(clients map[*Client]struct{}, data []byte) []*Client {
	var stale []*Client
	for client := range clients {
		if !client.enqueue(data) {
			stale = append(stale, client)
		}
	}
	return stale
}

func (h *Hub) finish(eventName string, stale []*Client) {
	observability.IncWSEvent(eventName)
	// Slow consumers are disconnected rather than allowed to stall the hub;
	// closing the socket makes their read pump unregister them.
	for _, client := range stale {
		log.Printf("dropping slow websocket consumer conn=%s user=%s", client.ConnID, client.UserID)
		client.conn.Close()
	}
}
