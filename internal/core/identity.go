package core

import "sort"

// Role is the role label a client claims at identification time.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleRider    Role = "rider"
	RoleAdmin    Role = "admin"
)

// autoRoom returns the room a role is placed in at identification time.
func (r Role) autoRoom() string {
	switch r {
	case RoleVendor:
		return GlobalRoom("vendors")
	case RoleRider:
		return GlobalRoom("riders")
	case RoleAdmin:
		return OversightRoom
	default:
		return ""
	}
}

// Identity is an application-level participant and its live connection.
type Identity struct {
	ID    string
	Name  string
	Role  Role
	Conn  *Client
	Rooms map[string]struct{}
}

// NewIdentity builds an identity bound to conn with no joined rooms.
func NewIdentity(id, name string, role Role, conn *Client) *Identity {
	return &Identity{
		ID:    id,
		Name:  name,
		Role:  role,
		Conn:  conn,
		Rooms: make(map[string]struct{}),
	}
}

// InRoom reports whether the identity has joined room.
func (i *Identity) InRoom(room string) bool {
	_, ok := i.Rooms[room]
	return ok
}

// RoomList returns the joined rooms in sorted order.
func (i *Identity) RoomList() []string {
	rooms := make([]string, 0, len(i.Rooms))
	for room := range i.Rooms {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}

func (i *Identity) member() Member {
	return Member{ID: i.ID, Name: i.Name, Role: i.Role}
}

// Registry maps identities to their current connection. It is the single
// source of truth for who is online. Not safe for concurrent use; the hub
// goroutine owns it.
type Registry struct {
	byID   map[string]*Identity
	byConn map[*Client]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*Identity),
		byConn: make(map[*Client]string),
	}
}

// Put upserts ident. If the identity was bound to another connection, that
// connection no longer resolves to it.
func (r *Registry) Put(ident *Identity) {
	if prev, ok := r.byID[ident.ID]; ok && prev.Conn != ident.Conn {
		delete(r.byConn, prev.Conn)
	}
	r.byID[ident.ID] = ident
	if ident.Conn != nil {
		r.byConn[ident.Conn] = ident.ID
	}
}

// Get looks an identity up by id.
func (r *Registry) Get(id string) (*Identity, bool) {
	ident, ok := r.byID[id]
	return ident, ok
}

// Lookup resolves the identity currently bound to a connection.
func (r *Registry) Lookup(c *Client) (*Identity, bool) {
	id, ok := r.byConn[c]
	if !ok {
		return nil, false
	}
	ident, ok := r.byID[id]
	if !ok || ident.Conn != c {
		return nil, false
	}
	return ident, true
}

// Remove deletes the identity record.
func (r *Registry) Remove(id string) {
	ident, ok := r.byID[id]
	if !ok {
		return
	}
	if r.byConn[ident.Conn] == id {
		delete(r.byConn, ident.Conn)
	}
	delete(r.byID, id)
}

// Len returns the number of identities online.
func (r *Registry) Len() int {
	return len(r.byID)
}
