package core

import "sort"

// Reserved room names.
const (
	// OversightRoom receives a mirrored copy of every message.
	OversightRoom = "admin_oversight"
	// GlobalRoomSuffix is appended to a room type to form its global room.
	GlobalRoomSuffix = "_global"
)

// GlobalRoom returns the global room for a room type, e.g. "vendors_global".
func GlobalRoom(roomType string) string {
	return roomType + GlobalRoomSuffix
}

// Room groups the connections subscribed to the same room id.
type Room struct {
	Name    string
	clients map[*Client]struct{}
}

// NewRoom constructs a room with no clients.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Has reports whether c is in the room.
func (r *Room) Has(c *Client) bool {
	_, ok := r.clients[c]
	return ok
}

// Clients returns the room's connections ordered by connection id.
func (r *Room) Clients() []*Client {
	out := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Broadcast sends an event to all clients in the room and returns how many
// accepted it.
func (r *Room) Broadcast(event *Event) int {
	return r.BroadcastExcept(event, nil)
}

// BroadcastExcept sends an event to all clients in the room but skip.
func (r *Room) BroadcastExcept(event *Event, skip *Client) int {
	delivered := 0
	for client := range r.clients {
		if client == skip {
			continue
		}
		// Drop if slow consumer.
		if client.deliver(event.clone()) {
			delivered++
		}
	}
	return delivered
}

// Len returns the number of clients in the room.
func (r *Room) Len() int {
	return len(r.clients)
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}

// Membership is the room side of the identity/room relation: which
// connections each room fans out to. A room exists only while it has members.
// It is not safe for concurrent use; the hub goroutine owns it.
type Membership struct {
	rooms map[string]*Room
}

// NewMembership returns an empty index.
func NewMembership() *Membership {
	return &Membership{rooms: make(map[string]*Room)}
}

// Add puts c into room, creating the room on first join.
func (m *Membership) Add(room string, c *Client) *Room {
	r, ok := m.rooms[room]
	if !ok {
		r = NewRoom(room)
		m.rooms[room] = r
	}
	r.AddClient(c)
	return r
}

// Remove takes c out of room. It returns the room if members remain, nil if
// the room is gone.
func (m *Membership) Remove(room string, c *Client) *Room {
	r, ok := m.rooms[room]
	if !ok {
		return nil
	}
	r.RemoveClient(c)
	if r.Empty() {
		delete(m.rooms, room)
		return nil
	}
	return r
}

// Get returns the room if it currently has members.
func (m *Membership) Get(room string) (*Room, bool) {
	r, ok := m.rooms[room]
	return r, ok
}

// Len returns the number of live rooms.
func (m *Membership) Len() int {
	return len(m.rooms)
}
