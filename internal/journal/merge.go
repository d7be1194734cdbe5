package journal

import (
	"encoding/json"
	"slices"
	"strings"
)

// Action is the kind of change a realtime event describes.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// EventName is the name realtime channels deliver journal changes under.
const EventName = "JournalUpdated"

// Event is a change pushed over a realtime channel.
type Event struct {
	Action  Action `json:"action"`
	Journal *Entry `json:"journal"`
}

// UnmarshalJSON lowercases the action and tolerates a malformed journal
// object, which leaves Journal nil.
func (ev *Event) UnmarshalJSON(data []byte) error {
	var raw struct {
		Action  string          `json:"action"`
		Journal json.RawMessage `json:"journal"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*ev = Event{Action: Action(strings.ToLower(strings.TrimSpace(raw.Action)))}
	if len(raw.Journal) > 0 {
		var e Entry
		if err := json.Unmarshal(raw.Journal, &e); err == nil {
			ev.Journal = &e
		}
	}
	return nil
}

// ApplyEvent returns list with ev applied. It never modifies list. Events
// lacking an action, a journal or a journal id leave list unchanged.
//
// Created and updated events replace any row with the same id and the result
// is ordered by numeric id, highest first. Realtime events are authoritative,
// so an update for an id that is absent inserts it.
func ApplyEvent(list []Entry, ev Event) []Entry {
	if ev.Journal == nil || ev.Journal.ID.IsZero() {
		return list
	}

	switch ev.Action {
	case ActionDeleted:
		return without(list, ev.Journal.ID)
	case ActionCreated, ActionUpdated:
		fallback := 0.0
		if ev.Journal.Progress != nil {
			fallback = *ev.Journal.Progress
		}
		e := EnsureProgress(*ev.Journal, fallback)
		e.Normalize()

		rest := without(list, e.ID)
		next := make([]Entry, 0, len(rest)+1)
		next = append(next, e)
		next = append(next, rest...)
		SortByID(next)
		return next
	default:
		return list
	}
}

// SortByID orders entries by numeric id, highest first. Entries whose ids are
// not numeric rank as 0 and keep their relative order.
func SortByID(list []Entry) {
	slices.SortStableFunc(list, func(a, b Entry) int {
		an, bn := a.ID.Number(), b.ID.Number()
		switch {
		case an > bn:
			return -1
		case an < bn:
			return 1
		default:
			return 0
		}
	})
}

// without returns list minus the entry with id. The input is returned as is
// when id is absent.
func without(list []Entry, id ID) []Entry {
	idx := indexOf(list, id)
	if idx < 0 {
		return list
	}
	next := make([]Entry, 0, len(list)-1)
	next = append(next, list[:idx]...)
	for _, e := range list[idx+1:] {
		if e.ID != id {
			next = append(next, e)
		}
	}
	return next
}

func indexOf(list []Entry, id ID) int {
	return slices.IndexFunc(list, func(e Entry) bool { return e.ID == id })
}
