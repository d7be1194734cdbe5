// Package calendar projects a journal collection onto calendar days.
package calendar

import (
	"slices"
	"strings"
	"time"

	"github.com/DikaaDK/Chronos-sub000/internal/dates"
	"github.com/DikaaDK/Chronos-sub000/internal/journal"
)

// Ref identifies an entry inside a day bucket.
type Ref struct {
	ID    journal.ID
	Title string
}

// Day is the bucket of entries whose window covers one calendar day.
type Day struct {
	Count    int
	Journals []Ref
}

// Index maps YYYY-MM-DD keys to day buckets.
type Index map[string]Day

// MaxSpanDays caps the number of day buckets a single entry fills. Windows
// longer than that are cut after MaxSpanDays days.
const MaxSpanDays = 3660

// BuildIndex adds every entry to each day of its window, inclusive. Entries
// whose window cannot be resolved are skipped. Blank titles are replaced by
// untitled.
func BuildIndex(entries []journal.Entry, untitled string) Index {
	idx := make(Index)
	for _, e := range entries {
		start, end, _, ok := span(e)
		if !ok {
			continue
		}
		title := strings.TrimSpace(e.Title)
		if title == "" {
			title = untitled
		}
		ref := Ref{ID: e.ID, Title: title}

		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			key := dates.APIString(d)
			b := idx[key]
			b.Count++
			b.Journals = append(b.Journals, ref)
			idx[key] = b
		}
	}
	return idx
}

// Oversized returns the ids of entries whose window exceeds MaxSpanDays.
func Oversized(entries []journal.Entry) []journal.ID {
	var out []journal.ID
	for _, e := range entries {
		if _, _, cut, ok := span(e); ok && cut {
			out = append(out, e.ID)
		}
	}
	return out
}

func span(e journal.Entry) (start, end time.Time, cut, ok bool) {
	start, end, ok = e.Window()
	if !ok {
		return start, end, false, false
	}
	if limit := start.AddDate(0, 0, MaxSpanDays-1); end.After(limit) {
		return start, limit, true, true
	}
	return start, end, false, true
}

// Keys returns the index keys in ascending order.
func (idx Index) Keys() []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Count returns the number of entries on t's calendar day.
func (idx Index) Count(t time.Time) int {
	return idx[dates.APIString(t)].Count
}

// MonthEntries returns the distinct entries that appear on any day of the
// given month, in order of first appearance.
func MonthEntries(idx Index, year int, month time.Month) []Ref {
	prefix := time.Date(year, month, 1, 0, 0, 0, 0, time.Local).Format("2006-01-")
	seen := make(map[journal.ID]struct{})
	var out []Ref
	for _, k := range idx.Keys() {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		for _, r := range idx[k].Journals {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// Cell is one slot of a month grid. Day is 0 for padding slots.
type Cell struct {
	Day   int
	Count int
	Today bool
}

// MonthGrid lays the month out in Monday-first weeks with per-day counts.
func MonthGrid(idx Index, year int, month time.Month, today time.Time) [][]Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysIn := first.AddDate(0, 1, -1).Day()
	lead := (int(first.Weekday()) + 6) % 7
	todayKey := dates.APIString(today)

	var weeks [][]Cell
	week := make([]Cell, lead, 7)
	for d := 1; d <= daysIn; d++ {
		day := time.Date(year, month, d, 0, 0, 0, 0, time.Local)
		key := dates.APIString(day)
		week = append(week, Cell{Day: d, Count: idx[key].Count, Today: key == todayKey})
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]Cell, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, Cell{})
		}
		weeks = append(weeks, week)
	}
	return weeks
}
