// Package journal holds the journal entry model, the id-keyed collection store
// and the merger that applies realtime change events to it.
package journal

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/DikaaDK/Chronos-sub000/internal/dates"
	"github.com/DikaaDK/Chronos-sub000/internal/progress"
)

// ID is the backend-assigned identity of an entry. Numeric ids are kept in
// their integer text form so that 5 and "5" compare equal.
type ID string

// Number returns the numeric value of id, or 0 when id is not numeric.
func (id ID) Number() float64 {
	n, err := strconv.ParseFloat(string(id), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// IsZero reports whether id is missing.
func (id ID) IsZero() bool { return id == "" }

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts a JSON number or string. Anything else decodes to an
// empty id instead of failing the surrounding document.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ParseID(decodeLoose(data))
	return nil
}

// MarshalJSON writes ids in canonical integer form as JSON numbers and
// everything else, including "007" or "+5", as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// ParseID normalizes a loosely typed identity value.
func ParseID(v any) ID {
	switch x := v.(type) {
	case ID:
		return ID(strings.TrimSpace(string(x)))
	case string:
		return ID(strings.TrimSpace(x))
	case json.Number:
		return numberID(string(x))
	case int:
		return ID(strconv.Itoa(x))
	case int64:
		return ID(strconv.FormatInt(x, 10))
	case float64:
		return numberID(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		return ""
	}
}

func numberID(s string) ID {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID(strconv.FormatInt(n, 10))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return ID(strconv.FormatInt(int64(f), 10))
	}
	return ID(s)
}

// Entry is a journal entry as known to the client. Day fields hold canonical
// dates; a zero value means the field was absent or unparseable.
type Entry struct {
	ID          ID
	Title       string
	Content     string
	StartDate   time.Time
	EndDate     time.Time
	Date        time.Time
	JournalDate time.Time
	EntryDate   time.Time
	Progress    *float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// fieldAliases lists every accepted wire spelling per logical field. Wire
// (snake_case) names come first and are used when encoding.
var fieldAliases = struct {
	id, title, content, start, end, date, journalDate, entryDate, progress, created, updated []string
}{
	id:          []string{"id", "journal_id", "journalId"},
	title:       []string{"title", "name"},
	content:     []string{"content", "body", "description"},
	start:       []string{"start_date", "startDate", "start"},
	end:         []string{"end_date", "endDate", "end"},
	date:        []string{"date"},
	journalDate: []string{"journal_date", "journalDate"},
	entryDate:   []string{"entry_date", "entryDate"},
	progress:    []string{"progress"},
	created:     []string{"created_at", "createdAt"},
	updated:     []string{"updated_at", "updatedAt"},
}

// UnmarshalJSON decodes an entry record using either snake_case or camelCase
// field names. Unparseable fields are left at their zero value.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	pick := func(names []string) any {
		for _, n := range names {
			if v, ok := raw[n]; ok {
				if d := decodeLoose(v); d != nil {
					return d
				}
			}
		}
		return nil
	}
	day := func(names []string) time.Time {
		t, _ := dates.Parse(pick(names))
		return t
	}

	*e = Entry{
		ID:          ParseID(pick(fieldAliases.id)),
		Title:       asString(pick(fieldAliases.title)),
		Content:     asString(pick(fieldAliases.content)),
		StartDate:   day(fieldAliases.start),
		EndDate:     day(fieldAliases.end),
		Date:        day(fieldAliases.date),
		JournalDate: day(fieldAliases.journalDate),
		EntryDate:   day(fieldAliases.entryDate),
		Progress:    asProgress(pick(fieldAliases.progress)),
		CreatedAt:   timestamp(pick(fieldAliases.created)),
		UpdatedAt:   timestamp(pick(fieldAliases.updated)),
	}
	e.Normalize()
	return nil
}

type wireEntry struct {
	ID          ID       `json:"id,omitempty"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Date        string   `json:"date,omitempty"`
	JournalDate string   `json:"journal_date,omitempty"`
	EntryDate   string   `json:"entry_date,omitempty"`
	Progress    *float64 `json:"progress,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// MarshalJSON encodes the entry with wire field names.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEntry{
		ID:          e.ID,
		Title:       e.Title,
		Content:     e.Content,
		StartDate:   dates.APIString(e.StartDate),
		EndDate:     dates.APIString(e.EndDate),
		Date:        dates.APIString(e.Date),
		JournalDate: dates.APIString(e.JournalDate),
		EntryDate:   dates.APIString(e.EntryDate),
		Progress:    e.Progress,
		CreatedAt:   rfc3339(e.CreatedAt),
		UpdatedAt:   rfc3339(e.UpdatedAt),
	})
}

// Normalize clamps an end date that precedes the start date.
func (e *Entry) Normalize() {
	if !e.StartDate.IsZero() && !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		e.EndDate = e.StartDate
	}
}

// Window resolves the entry's [start, end] calendar window. The start is the
// first usable value of StartDate, Date, JournalDate, EntryDate and CreatedAt;
// the end falls back to the start and never precedes it. ok is false when no
// start can be resolved.
func (e Entry) Window() (start, end time.Time, ok bool) {
	start, ok = dates.First(e.StartDate, e.Date, e.JournalDate, e.EntryDate, e.CreatedAt)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok = dates.Parse(e.EndDate)
	if !ok || end.Before(start) {
		end = start
	}
	return start, end, true
}

// ProgressInput returns the calculator input for the entry.
func (e Entry) ProgressInput() progress.Input {
	in := progress.Input{Progress: e.Progress, End: e.EndDate}
	if start, end, ok := e.Window(); ok {
		in.Start, in.End = start, end
	}
	return in
}

// Summary computes the entry's derived progress as of now.
func (e Entry) Summary(now time.Time) progress.Summary {
	return progress.Compute(e.ProgressInput(), now)
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	if e.Progress != nil {
		p := *e.Progress
		e.Progress = &p
	}
	return e
}

// EnsureProgress stamps fallback on an entry that carries no progress value.
func EnsureProgress(e Entry, fallback float64) Entry {
	e = e.Clone()
	if e.Progress == nil {
		e.Progress = &fallback
	}
	return e
}

func decodeLoose(data []byte) any {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return ""
	}
}

func asProgress(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return nil
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = n
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// timestamp keeps the time of day when v is a date-time or epoch value and
// otherwise resolves v like any other date field.
func timestamp(v any) time.Time {
	if s, ok := v.(string); ok {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), time.Local); err == nil {
				return t
			}
		}
	}
	if n, ok := v.(json.Number); ok {
		if ms, err := n.Int64(); err == nil && ms > 0 {
			return time.UnixMilli(ms)
		}
	}
	t, _ := dates.Parse(v)
	return t
}

func rfc3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
