package journal

import (
	"slices"
	"sync"
)

// ChangeKind names the store operation that produced a Change.
type ChangeKind string

const (
	ChangeReplaced ChangeKind = "replaced"
	ChangeCreated  ChangeKind = "created"
	ChangeUpdated  ChangeKind = "updated"
	ChangeRemoved  ChangeKind = "removed"
	ChangeRealtime ChangeKind = "realtime"
)

// Change is published after every mutation that altered the store.
type Change struct {
	Kind ChangeKind
	ID   ID
	Len  int
}

// Store is the client's ordered, id-deduplicated journal collection.
//
// Every mutation builds a new slice and swaps it in under the lock, so a
// snapshot taken before a mutation is never affected by it. Change
// notifications are dropped when the channel buffer is full.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	changes chan Change
}

// NewStore returns an empty store whose Changes channel buffers up to buffer
// notifications.
func NewStore(buffer int) *Store {
	if buffer < 0 {
		buffer = 0
	}
	return &Store{changes: make(chan Change, buffer)}
}

// Changes returns the notification channel.
func (s *Store) Changes() <-chan Change { return s.changes }

// Snapshot returns a copy of the current list.
func (s *Store) Snapshot() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Get returns the entry with id.
func (s *Store) Get(id ID) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.entries, id); i >= 0 {
		return s.entries[i].Clone(), true
	}
	return Entry{}, false
}

// ReplaceAll swaps in a freshly fetched list, keeping the server's order.
// Entries without an id are skipped and later duplicates of an id are dropped.
func (s *Store) ReplaceAll(entries []Entry) {
	seen := make(map[ID]struct{}, len(entries))
	next := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID.IsZero() {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		e = e.Clone()
		e.Normalize()
		next = append(next, e)
	}

	s.mu.Lock()
	s.entries = next
	s.mu.Unlock()
	s.notify(Change{Kind: ChangeReplaced, Len: len(next)})
}

// UpsertCreated puts e at the front after removing any entry with the same id.
// It reports false when e has no id.
func (s *Store) UpsertCreated(e Entry) bool {
	if e.ID.IsZero() {
		return false
	}
	e = e.Clone()
	e.Normalize()

	s.mu.Lock()
	rest := without(s.entries, e.ID)
	next := make([]Entry, 0, len(rest)+1)
	next = append(next, e)
	next = append(next, rest...)
	s.entries = next
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeCreated, ID: e.ID, Len: len(next)})
	return true
}

// UpsertUpdated replaces the entry with e's id in place. Unknown ids leave the
// store unchanged and report false.
func (s *Store) UpsertUpdated(e Entry) bool {
	if e.ID.IsZero() {
		return false
	}
	e = e.Clone()
	e.Normalize()

	s.mu.Lock()
	i := indexOf(s.entries, e.ID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	next := slices.Clone(s.entries)
	next[i] = e
	s.entries = next
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeUpdated, ID: e.ID, Len: len(next)})
	return true
}

// Remove drops the entry with id and reports whether it was present.
func (s *Store) Remove(id ID) bool {
	s.mu.Lock()
	next := without(s.entries, id)
	if len(next) == len(s.entries) {
		s.mu.Unlock()
		return false
	}
	s.entries = next
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeRemoved, ID: id, Len: len(next)})
	return true
}

// ApplyEvent merges a realtime event into the store and reports whether the
// event was usable.
func (s *Store) ApplyEvent(ev Event) bool {
	if ev.Journal == nil || ev.Journal.ID.IsZero() {
		return false
	}
	switch ev.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return false
	}

	s.mu.Lock()
	next := ApplyEvent(s.entries, ev)
	s.entries = next
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeRealtime, ID: ev.Journal.ID, Len: len(next)})
	return true
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
	s.notify(Change{Kind: ChangeReplaced})
}

func (s *Store) notify(c Change) {
	select {
	case s.changes <- c:
	default:
	}
}
