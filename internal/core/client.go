package core

import "sync"

const defaultClientBuffer = 64

// Client is one live transport connection as seen by the core layer.
// The transport writes Commands in arrival order and drains Events; the hub
// never closes Events.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	closeOnce sync.Once
	reason    string
}

// NewClient constructs a client with initialized channels. A non-positive
// buffer falls back to the default event buffer size.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, buffer),
	}
}

// close ends the command stream. The hub sees the disconnect only after every
// command queued before it has been handled.
func (c *Client) close(reason string) {
	c.closeOnce.Do(func() {
		c.reason = reason
		close(c.Commands)
	})
}

// deliver hands an event to the client without blocking.
// Slow consumers lose the event.
func (c *Client) deliver(event *Event) bool {
	select {
	case c.Events <- event:
		return true
	default:
		return false
	}
}
