package core

import (
	"slices"
	"time"
)

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventUserJoined notifies room members about a new member.
	EventUserJoined EventKind = iota
	// EventUserLeft notifies room members that a member left or disconnected.
	EventUserLeft
	// EventNewMessage carries a chat message to every room member.
	EventNewMessage
	// EventAdminMonitor mirrors a chat message into the oversight room.
	EventAdminMonitor
	// EventUserTyping carries a typing change and the room's typing snapshot.
	EventUserTyping
	// EventMessageRead relays a read receipt.
	EventMessageRead
	// EventGlobalUserJoined announces a join of a role-scoped global room.
	EventGlobalUserJoined
	// EventRoomUsers answers a roster query.
	EventRoomUsers
	// EventError notifies a client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind      EventKind
	Room      string
	RoomType  string
	User      string
	Name      string
	At        time.Time
	Message   Message
	MessageID string
	IsTyping  bool
	Typing    []string // full typing snapshot for EventUserTyping
	Users     []Member // roster for EventRoomUsers
	Error     *CoreError
}

// Member is one roster entry.
type Member struct {
	ID   string
	Name string
	Role Role
}

// clone gives each recipient its own copy.
func (e *Event) clone() *Event {
	cp := *e
	cp.Message = e.Message.clone()
	cp.Typing = slices.Clone(e.Typing)
	cp.Users = slices.Clone(e.Users)
	return &cp
}
