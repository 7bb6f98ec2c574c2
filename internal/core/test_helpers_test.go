package core

import (
	"context"
	"fmt"
	"testing"
	"time"
)

const flushRoom = "__flush__"

func startHub(t *testing.T, opts ...Option) *Hub {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	hub := NewHub(opts...)
	go hub.Run(ctx)
	return hub
}

func connect(t *testing.T, hub *Hub, connID string) *Client {
	t.Helper()

	c := NewClient(connID, 128)
	hub.RegisterClient(c)
	return c
}

// identified connects a client and identifies it, discarding nothing.
func identified(t *testing.T, hub *Hub, id, name string, role Role) *Client {
	t.Helper()

	c := connect(t, hub, "conn-"+id)
	c.Commands <- &Command{Kind: CommandIdentify, User: id, Name: name, Role: role}
	flush(t, c)
	return c
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// flush waits until every command already queued on c has been handled and
// returns the events c received meanwhile.
func flush(t *testing.T, c *Client) []*Event {
	t.Helper()

	c.Commands <- &Command{Kind: CommandRoomUsers, Room: flushRoom}
	timer := time.NewTimer(2 * time.Second)
	defer timer.Stop()

	var got []*Event
	for {
		select {
		case ev := <-c.Events:
			if ev.Kind == EventRoomUsers && ev.Room == flushRoom {
				return got
			}
			got = append(got, ev)
		case <-timer.C:
			t.Fatalf("flush of %s timed out", c.ID)
			return nil
		}
	}
}

func ofKind(events []*Event, kind EventKind) []*Event {
	var out []*Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func roster(t *testing.T, hub *Hub, room string) []string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	users, err := hub.RoomUsers(ctx, room)
	if err != nil {
		t.Fatalf("room users: %v", err)
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("msg_%d", n)
	}
}
