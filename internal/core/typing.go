package core

import "sort"

// Typing tracks, per room, which identities are composing a message.
// Not safe for concurrent use; the hub goroutine owns it.
type Typing struct {
	rooms map[string]map[string]struct{}
}

// NewTyping returns an empty aggregator.
func NewTyping() *Typing {
	return &Typing{rooms: make(map[string]map[string]struct{})}
}

// Set adds or removes identity from room's typing set and reports whether
// the set changed.
func (t *Typing) Set(room, identity string, typing bool) bool {
	if !typing {
		return t.Clear(room, identity)
	}
	set, ok := t.rooms[room]
	if !ok {
		set = make(map[string]struct{})
		t.rooms[room] = set
	}
	if _, exists := set[identity]; exists {
		return false
	}
	set[identity] = struct{}{}
	return true
}

// Clear removes identity from room's typing set. Returns true if it was there.
func (t *Typing) Clear(room, identity string) bool {
	set, ok := t.rooms[room]
	if !ok {
		return false
	}
	if _, exists := set[identity]; !exists {
		return false
	}
	delete(set, identity)
	if len(set) == 0 {
		delete(t.rooms, room)
	}
	return true
}

// IsTyping reports whether identity is typing in room.
func (t *Typing) IsTyping(room, identity string) bool {
	_, ok := t.rooms[room][identity]
	return ok
}

// Snapshot returns the sorted typing set for room. Never nil.
func (t *Typing) Snapshot(room string) []string {
	set := t.rooms[room]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
