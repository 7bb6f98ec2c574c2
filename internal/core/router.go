package core

func (h *Hub) handleSend(c *Client, cmd *Command) {
	ident, ok := h.actor(c, cmd.User)
	if !ok {
		return
	}
	msg := h.newMessage(ident, cmd)

	delivered := 0
	if r, ok := h.rooms.Get(msg.Room); ok {
		delivered = r.Broadcast(&Event{Kind: EventNewMessage, Room: msg.Room, Message: msg, At: msg.CreatedAt})
	}

	// Oversight mirroring is fire-and-forget: with no admin online the copy
	// is simply dropped.
	if r, ok := h.rooms.Get(OversightRoom); ok {
		r.Broadcast(&Event{Kind: EventAdminMonitor, Room: msg.Room, Message: msg, At: msg.CreatedAt})
	}

	h.log.Debug().
		Str("message_id", msg.ID).
		Str("room_id", msg.Room).
		Str("identity_id", ident.ID).
		Int("delivered", delivered).
		Msg("message relayed")

	if h.typing.Clear(msg.Room, ident.ID) {
		h.broadcastTyping(c, msg.Room, ident.ID, msg.SenderName, false)
	}
}

func (h *Hub) newMessage(ident *Identity, cmd *Command) Message {
	msg := cmd.Message.clone()
	msg.ID = h.newID()
	msg.Room = cmd.Room
	msg.SenderID = ident.ID
	if msg.SenderName == "" {
		msg.SenderName = ident.Name
	}
	if msg.Type == "" {
		msg.Type = MessageTypeText
	}
	msg.IsRead = false
	msg.CreatedAt = h.now()
	return msg
}

func (h *Hub) handleTyping(c *Client, cmd *Command) {
	ident, ok := h.actor(c, cmd.User)
	if !ok {
		return
	}
	// Only members can be typing in a room.
	if !ident.InRoom(cmd.Room) {
		h.log.Debug().Str("identity_id", ident.ID).Str("room_id", cmd.Room).Msg("typing outside joined room ignored")
		return
	}
	h.typing.Set(cmd.Room, ident.ID, cmd.IsTyping)
	h.broadcastTyping(c, cmd.Room, ident.ID, nameOr(cmd.Name, ident.Name), cmd.IsTyping)
}

// broadcastTyping sends the full typing snapshot of room to everyone but the
// connection that caused the change.
func (h *Hub) broadcastTyping(c *Client, room, identity, name string, isTyping bool) {
	r, ok := h.rooms.Get(room)
	if !ok {
		return
	}
	r.BroadcastExcept(&Event{
		Kind:     EventUserTyping,
		Room:     room,
		User:     identity,
		Name:     name,
		IsTyping: isTyping,
		Typing:   h.typing.Snapshot(room),
		At:       h.now(),
	}, c)
}

func (h *Hub) handleMarkRead(c *Client, cmd *Command) {
	ident, ok := h.actor(c, cmd.User)
	if !ok {
		return
	}
	// A relay keeps no history, so the message id is taken on trust.
	r, ok := h.rooms.Get(cmd.Room)
	if !ok {
		return
	}
	r.Broadcast(&Event{
		Kind:      EventMessageRead,
		Room:      cmd.Room,
		User:      ident.ID,
		MessageID: cmd.MessageID,
		At:        h.now(),
	})
}

func (h *Hub) handleJoinGlobal(c *Client, cmd *Command) {
	ident, ok := h.actor(c, cmd.User)
	if !ok {
		return
	}
	room := GlobalRoom(cmd.RoomType)
	h.join(ident, room, true)

	r, ok := h.rooms.Get(room)
	if !ok {
		return
	}
	r.Broadcast(&Event{
		Kind:     EventGlobalUserJoined,
		Room:     room,
		RoomType: cmd.RoomType,
		User:     ident.ID,
		Name:     nameOr(cmd.Name, ident.Name),
		At:       h.now(),
	})
	h.log.Debug().Str("identity_id", ident.ID).Str("room_id", room).Msg("joined global room")
}

func (h *Hub) handleAdminJoin(c *Client, cmd *Command) {
	ident, ok := h.registry.Lookup(c)
	if !ok || ident.Role != RoleAdmin {
		h.log.Warn().Str("conn_id", c.ID).Str("room_id", cmd.Room).Msg("admin join rejected")
		h.sendError(c, coreError(ErrCodeUnauthorized, "Unauthorized: Admin access required"))
		return
	}
	if cmd.User != "" && cmd.User != ident.ID {
		h.sendError(c, coreError(ErrCodeMalformedEvent, "identity does not match connection"))
		return
	}
	// No user_joined: oversight presence stays hidden from participants.
	if h.join(ident, cmd.Room, false) {
		h.log.Info().Str("identity_id", ident.ID).Str("room_id", cmd.Room).Msg("admin joined room for oversight")
	}
}

func (h *Hub) handleRoomUsers(c *Client, cmd *Command) {
	c.deliver(&Event{
		Kind:  EventRoomUsers,
		Room:  cmd.Room,
		Users: h.members(cmd.Room),
		At:    h.now(),
	})
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
