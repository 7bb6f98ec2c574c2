package core

import "sort"

func (h *Hub) handleIdentify(c *Client, cmd *Command) {
	if cmd.User == "" {
		h.sendError(c, coreError(ErrCodeMalformedEvent, "identityId is required"))
		return
	}

	if cmd.Name == "" {
		cmd.Name = cmd.User
	}

	// A connection speaks for one identity at a time.
	if prev, ok := h.registry.Lookup(c); ok && prev.ID != cmd.User {
		h.retract(prev)
		h.log.Info().Str("identity_id", prev.ID).Str("conn_id", c.ID).Msg("connection re-identified, previous identity removed")
	}

	ident, exists := h.registry.Get(cmd.User)
	var staleRoom string
	if !exists {
		ident = NewIdentity(cmd.User, cmd.Name, cmd.Role, c)
	} else {
		if old := ident.Role.autoRoom(); old != cmd.Role.autoRoom() {
			staleRoom = old
		}
		if ident.Conn != c {
			ident = h.rebind(ident, c)
		}
		ident.Name = cmd.Name
		ident.Role = cmd.Role
	}
	h.registry.Put(ident)

	// The room granted by the previous role goes with it.
	if staleRoom != "" && h.leave(ident, staleRoom) {
		h.log.Info().Str("identity_id", ident.ID).Str("room_id", staleRoom).Msg("role changed, left auto-joined room")
	}

	h.log.Info().
		Str("identity_id", ident.ID).
		Str("name", ident.Name).
		Str("role", string(ident.Role)).
		Str("conn_id", c.ID).
		Bool("reconnect", exists).
		Msg("identity registered")

	if room := ident.Role.autoRoom(); room != "" {
		if h.join(ident, room, false) {
			h.log.Debug().Str("identity_id", ident.ID).Str("room_id", room).Msg("auto-joined room")
		}
	}
}

// rebind returns a record for ident bound to c, with every membership moved
// over. The old connection keeps running but no longer resolves to any
// identity once the record is stored.
func (h *Hub) rebind(ident *Identity, c *Client) *Identity {
	moved := NewIdentity(ident.ID, ident.Name, ident.Role, c)
	for _, room := range ident.RoomList() {
		h.rooms.Remove(room, ident.Conn)
		h.rooms.Add(room, c)
		moved.Rooms[room] = struct{}{}
	}
	h.log.Debug().Str("identity_id", ident.ID).Str("old_conn_id", ident.Conn.ID).Str("conn_id", c.ID).Msg("identity moved to new connection")
	return moved
}

func (h *Hub) handleJoin(c *Client, cmd *Command) {
	ident, ok := h.actor(c, cmd.User)
	if !ok {
		return
	}
	if h.join(ident, cmd.Room, true) {
		h.log.Debug().Str("identity_id", ident.ID).Str("room_id", cmd.Room).Msg("joined room")
	}
}

func (h *Hub) handleLeave(c *Client, cmd *Command) {
	ident, ok := h.actor(c, cmd.User)
	if !ok {
		return
	}
	if h.leave(ident, cmd.Room) {
		h.log.Debug().Str("identity_id", ident.ID).Str("room_id", cmd.Room).Msg("left room")
	}
}

func (h *Hub) handleDisconnect(c *Client, reason string) {
	ident, ok := h.registry.Lookup(c)
	if !ok {
		h.log.Debug().Str("conn_id", c.ID).Str("reason", reason).Msg("unidentified connection closed")
		return
	}
	rooms := len(ident.Rooms)
	h.retract(ident)
	h.log.Info().
		Str("identity_id", ident.ID).
		Str("conn_id", c.ID).
		Str("reason", reason).
		Int("rooms", rooms).
		Msg("identity disconnected")
}

// actor resolves the identity bound to c and checks the identity the payload
// claims. Unidentified connections are ignored.
func (h *Hub) actor(c *Client, claimed string) (*Identity, bool) {
	ident, ok := h.registry.Lookup(c)
	if !ok {
		h.log.Debug().Str("conn_id", c.ID).Str("identity_id", claimed).Msg("ignoring event from unidentified connection")
		return nil, false
	}
	if claimed != "" && claimed != ident.ID {
		h.sendError(c, coreError(ErrCodeMalformedEvent, "identity does not match connection"))
		return nil, false
	}
	return ident, true
}

// join adds ident to room. It reports false when ident was already a member,
// in which case nothing is sent.
func (h *Hub) join(ident *Identity, room string, notify bool) bool {
	if ident.InRoom(room) {
		return false
	}
	ident.Rooms[room] = struct{}{}
	r := h.rooms.Add(room, ident.Conn)
	if notify {
		r.BroadcastExcept(&Event{
			Kind: EventUserJoined,
			Room: room,
			User: ident.ID,
			Name: ident.Name,
			At:   h.now(),
		}, ident.Conn)
	}
	return true
}

// leave removes ident from room, drops its typing flag there and tells the
// remaining members. Reports false when ident was not a member.
func (h *Hub) leave(ident *Identity, room string) bool {
	if !ident.InRoom(room) {
		return false
	}
	delete(ident.Rooms, room)
	h.typing.Clear(room, ident.ID)
	if r := h.rooms.Remove(room, ident.Conn); r != nil {
		r.Broadcast(&Event{
			Kind: EventUserLeft,
			Room: room,
			User: ident.ID,
			Name: ident.Name,
			At:   h.now(),
		})
	}
	return true
}

// retract leaves every room ident joined and removes it from the registry.
// The room list must be read before the record goes away.
func (h *Hub) retract(ident *Identity) {
	for _, room := range ident.RoomList() {
		h.leave(ident, room)
	}
	h.registry.Remove(ident.ID)
}

// members returns the identities connected to room, skipping connections
// that no longer resolve to an identity.
func (h *Hub) members(room string) []Member {
	users := make([]Member, 0)
	r, ok := h.rooms.Get(room)
	if !ok {
		return users
	}
	for _, c := range r.Clients() {
		ident, ok := h.registry.Lookup(c)
		if !ok {
			continue
		}
		users = append(users, ident.member())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}
