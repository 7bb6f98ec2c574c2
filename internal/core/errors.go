package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeMalformedEvent = "malformed_event"
	ErrCodeUnknownEvent   = "unknown_event"
	ErrCodeRateLimited    = "rate_limited"
)

// ErrHubStopped is returned by hub queries once Run has returned.
var ErrHubStopped = errors.New("hub stopped")

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
