package core

import (
	"encoding/json"
	"time"
)

// Message types known to clients. Other values are relayed untouched.
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeSystem = "system"
)

// Message is a chat message. It only lives for the duration of one fan-out.
type Message struct {
	ID             string
	Room           string
	SenderID       string
	SenderName     string
	SenderImageURL string
	Body           string
	Type           string
	Metadata       json.RawMessage
	IsRead         bool
	CreatedAt      time.Time
}

func (m Message) clone() Message {
	if m.Metadata != nil {
		m.Metadata = append(json.RawMessage(nil), m.Metadata...)
	}
	return m
}
