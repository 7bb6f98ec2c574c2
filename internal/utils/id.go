package utils

import "github.com/google/uuid"

// NewID returns a random identifier for a transport connection.
func NewID() string {
	return uuid.NewString()
}

// NewMessageID returns a globally unique chat message id.
func NewMessageID() string {
	return "msg_" + uuid.NewString()
}
