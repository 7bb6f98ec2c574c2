package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/leta-relay/internal/utils"
)

// IdentityStore is the identity registry as the hub uses it.
type IdentityStore interface {
	Put(ident *Identity)
	Get(id string) (*Identity, bool)
	Lookup(c *Client) (*Identity, bool)
	Remove(id string)
	Len() int
}

// RoomIndex is the room membership index as the hub uses it.
type RoomIndex interface {
	Add(room string, c *Client) *Room
	Remove(room string, c *Client) *Room
	Get(room string) (*Room, bool)
	Len() int
}

// TypingStore is the typing aggregator as the hub uses it.
type TypingStore interface {
	Set(room, identity string, typing bool) bool
	Clear(room, identity string) bool
	Snapshot(room string) []string
}

// Hub owns the registry, the membership index and the typing aggregator and
// mutates them from a single goroutine, so every command, disconnect and
// query is atomic with respect to all others.
type Hub struct {
	registry IdentityStore
	rooms    RoomIndex
	typing   TypingStore

	inbox chan envelope
	done  chan struct{}

	log   *zerolog.Logger
	now   func() time.Time
	newID func() string
}

type envelope struct {
	client     *Client
	cmd        *Command
	disconnect bool
	reason     string
	query      func()
}

// Option customizes a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.log = logger
		}
	}
}

// WithStores replaces the default in-memory stores. Nil arguments keep the
// defaults.
func WithStores(registry IdentityStore, rooms RoomIndex, typing TypingStore) Option {
	return func(h *Hub) {
		if registry != nil {
			h.registry = registry
		}
		if rooms != nil {
			h.rooms = rooms
		}
		if typing != nil {
			h.typing = typing
		}
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// WithIDGenerator overrides how message ids are generated.
func WithIDGenerator(gen func() string) Option {
	return func(h *Hub) { h.newID = gen }
}

// NewHub creates a hub with empty stores.
func NewHub(opts ...Option) *Hub {
	nop := zerolog.Nop()
	h := &Hub{
		registry: NewRegistry(),
		rooms:    NewMembership(),
		typing:   NewTyping(),
		inbox:    make(chan envelope, 256),
		done:     make(chan struct{}),
		log:      &nop,
		now:      time.Now,
		newID:    utils.NewMessageID,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes envelopes until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	h.log.Debug().Msg("hub started")
	for {
		select {
		case <-ctx.Done():
			h.log.Debug().Int("identities", h.registry.Len()).Msg("hub stopped")
			return
		case env := <-h.inbox:
			h.dispatch(env)
		}
	}
}

// RegisterClient starts forwarding the client's commands to the hub.
func (h *Hub) RegisterClient(c *Client) {
	go h.pump(c)
}

// UnregisterClient ends the client's command stream. Commands already queued
// are still handled, then the connection is treated as disconnected.
func (h *Hub) UnregisterClient(c *Client, reason string) {
	c.close(reason)
}

func (h *Hub) pump(c *Client) {
	for cmd := range c.Commands {
		if !h.submit(envelope{client: c, cmd: cmd}) {
			return
		}
	}
	h.submit(envelope{client: c, disconnect: true, reason: c.reason})
}

func (h *Hub) submit(env envelope) bool {
	select {
	case h.inbox <- env:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) dispatch(env envelope) {
	switch {
	case env.query != nil:
		env.query()
	case env.disconnect:
		h.handleDisconnect(env.client, env.reason)
	case env.cmd != nil:
		h.handleCommand(env.client, env.cmd)
	}
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandIdentify:
		h.handleIdentify(c, cmd)
	case CommandJoinRoom:
		h.handleJoin(c, cmd)
	case CommandLeaveRoom:
		h.handleLeave(c, cmd)
	case CommandSendMessage:
		h.handleSend(c, cmd)
	case CommandTyping:
		h.handleTyping(c, cmd)
	case CommandMarkRead:
		h.handleMarkRead(c, cmd)
	case CommandJoinGlobal:
		h.handleJoinGlobal(c, cmd)
	case CommandAdminJoin:
		h.handleAdminJoin(c, cmd)
	case CommandRoomUsers:
		h.handleRoomUsers(c, cmd)
	default:
		h.sendError(c, coreError(ErrCodeUnknownEvent, "unknown command"))
	}
}

// Stats is a point-in-time view of the hub.
type Stats struct {
	Identities int
	Rooms      int
}

// Stats reports how many identities are online and how many rooms exist.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	return query(ctx, h, func() Stats {
		return Stats{Identities: h.registry.Len(), Rooms: h.rooms.Len()}
	})
}

// RoomUsers returns the roster of room.
func (h *Hub) RoomUsers(ctx context.Context, room string) ([]Member, error) {
	return query(ctx, h, func() []Member {
		return h.members(room)
	})
}

// query runs fn on the hub goroutine and waits for its result. The result
// channel is buffered, so a caller that gave up never blocks the hub.
func query[T any](ctx context.Context, h *Hub, fn func() T) (T, error) {
	var zero T
	result := make(chan T, 1)
	env := envelope{query: func() {
		result <- fn()
	}}

	select {
	case h.inbox <- env:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.done:
		return zero, ErrHubStopped
	}

	select {
	case v := <-result:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.done:
		select {
		case v := <-result:
			return v, nil
		default:
			return zero, ErrHubStopped
		}
	}
}

func (h *Hub) sendError(c *Client, err *CoreError) {
	h.log.Debug().Str("conn_id", c.ID).Str("code", err.Code).Msg(err.Message)
	c.deliver(&Event{Kind: EventError, Error: err, At: h.now()})
}
