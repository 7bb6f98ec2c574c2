package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeIdentify     = "identify"
	InboundTypeJoinRoom     = "join_room"
	InboundTypeLeaveRoom    = "leave_room"
	InboundTypeSendMessage  = "send_message"
	InboundTypeTyping       = "typing"
	InboundTypeMarkRead     = "mark_read"
	InboundTypeJoinGlobal   = "join_global_room"
	InboundTypeAdminJoin    = "admin_join_room"
	InboundTypeGetRoomUsers = "get_room_users"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventUserJoined           = "user_joined"
	EventUserLeft             = "user_left"
	EventNewMessage           = "new_message"
	EventAdminMonitor         = "admin_message_monitor"
	EventUserTyping           = "user_typing"
	EventNameMessageRead      = "message_read"
	EventNameGlobalUserJoined = "global_user_joined"
	EventNameRoomUsers        = "room_users"
)

// IdentifyData binds the connection to an identity. When the server requires
// tokens, Token's claims replace the other fields.
type IdentifyData struct {
	IdentityID  string `json:"identityId" validate:"required,max=128"`
	DisplayName string `json:"displayName,omitempty" validate:"max=128"`
	Role        string `json:"role,omitempty" validate:"max=32"`
	Token       string `json:"token,omitempty"`
}

// RoomData joins or leaves a room.
type RoomData struct {
	RoomID      string `json:"roomId" validate:"required,max=256"`
	IdentityID  string `json:"identityId" validate:"required"`
	DisplayName string `json:"displayName,omitempty"`
}

// SendMessageData is a chat message from the client.
type SendMessageData struct {
	RoomID         string          `json:"roomId" validate:"required,max=256"`
	SenderID       string          `json:"senderId" validate:"required"`
	SenderName     string          `json:"senderName,omitempty"`
	SenderImageURL string          `json:"senderImageUrl,omitempty"`
	Body           string          `json:"body" validate:"required"`
	Type           string          `json:"type,omitempty" validate:"max=32"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

// TypingData toggles the typing indicator.
type TypingData struct {
	RoomID      string `json:"roomId" validate:"required,max=256"`
	IdentityID  string `json:"identityId" validate:"required"`
	DisplayName string `json:"displayName,omitempty"`
	IsTyping    bool   `json:"isTyping"`
}

// MarkReadData is a read receipt.
type MarkReadData struct {
	MessageID string `json:"messageId" validate:"required"`
	RoomID    string `json:"roomId" validate:"required,max=256"`
	ReaderID  string `json:"readerId" validate:"required"`
}

// JoinGlobalData joins the global room of a room type, e.g. "vendors".
type JoinGlobalData struct {
	RoomType    string `json:"roomType" validate:"required,max=64"`
	IdentityID  string `json:"identityId" validate:"required"`
	DisplayName string `json:"displayName,omitempty"`
}

// AdminJoinData asks for a silent oversight join.
type AdminJoinData struct {
	RoomID    string `json:"roomId" validate:"required,max=256"`
	AdminID   string `json:"adminId" validate:"required"`
	AdminName string `json:"adminName,omitempty"`
}

// GetRoomUsersData asks for a room roster.
type GetRoomUsersData struct {
	RoomID string `json:"roomId" validate:"required,max=256"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventPresence is the payload of user_joined and user_left.
type EventPresence struct {
	RoomID      string `json:"roomId"`
	IdentityID  string `json:"identityId"`
	DisplayName string `json:"displayName,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// EventMessage is the payload of new_message and admin_message_monitor.
type EventMessage struct {
	ID             string          `json:"id"`
	RoomID         string          `json:"roomId"`
	SenderID       string          `json:"senderId"`
	SenderName     string          `json:"senderName,omitempty"`
	SenderImageURL string          `json:"senderImageUrl,omitempty"`
	Body           string          `json:"body"`
	Type           string          `json:"type"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	IsRead         bool            `json:"isRead"`
	CreatedAt      string          `json:"createdAt"`
}

// EventTyping is the payload of user_typing.
type EventTyping struct {
	RoomID         string   `json:"roomId"`
	IdentityID     string   `json:"identityId"`
	DisplayName    string   `json:"displayName,omitempty"`
	IsTyping       bool     `json:"isTyping"`
	TypingSnapshot []string `json:"typingSnapshot"`
}

// EventMessageRead is the payload of message_read.
type EventMessageRead struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
	ReadBy    string `json:"readBy"`
	ReadAt    string `json:"readAt"`
}

// EventGlobalUserJoined is the payload of global_user_joined.
type EventGlobalUserJoined struct {
	RoomType    string `json:"roomType"`
	IdentityID  string `json:"identityId"`
	DisplayName string `json:"displayName,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// RoomUser is one roster entry.
type RoomUser struct {
	IdentityID  string `json:"identityId"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// EventRoomUsers is the payload of room_users.
type EventRoomUsers struct {
	RoomID string     `json:"roomId"`
	Users  []RoomUser `json:"users"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
