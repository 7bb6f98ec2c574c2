package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandIdentify binds the connection to an application identity.
	CommandIdentify CommandKind = iota
	// CommandJoinRoom subscribes the identity to a room.
	CommandJoinRoom
	// CommandLeaveRoom unsubscribes the identity from a room.
	CommandLeaveRoom
	// CommandSendMessage delivers a chat message to room participants.
	CommandSendMessage
	// CommandTyping toggles the identity's typing flag in a room.
	CommandTyping
	// CommandMarkRead relays a read receipt to a room.
	CommandMarkRead
	// CommandJoinGlobal joins the role-scoped global room for RoomType.
	CommandJoinGlobal
	// CommandAdminJoin silently joins a room for oversight.
	CommandAdminJoin
	// CommandRoomUsers asks for the roster of a room.
	CommandRoomUsers
)

var commandNames = map[CommandKind]string{
	CommandIdentify:    "identify",
	CommandJoinRoom:    "join_room",
	CommandLeaveRoom:   "leave_room",
	CommandSendMessage: "send_message",
	CommandTyping:      "typing",
	CommandMarkRead:    "mark_read",
	CommandJoinGlobal:  "join_global_room",
	CommandAdminJoin:   "admin_join_room",
	CommandRoomUsers:   "get_room_users",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command represents an action requested by a client. Which fields are
// meaningful depends on Kind; the transport validates them before the
// command reaches the hub.
type Command struct {
	Kind CommandKind
	Room string
	// User is the identity the payload claims to act as. For every kind but
	// CommandIdentify it must match the identity bound to the connection.
	User      string
	Name      string
	Role      Role
	RoomType  string
	MessageID string
	IsTyping  bool
	Message   Message
}
