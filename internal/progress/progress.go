// Package progress derives the displayed completion of a journal entry from
// either its explicit progress value or its start/end window.
package progress

import (
	"math"
	"time"

	"github.com/DikaaDK/Chronos-sub000/internal/dates"
)

// Label classifies a completion percentage.
type Label string

const (
	NotStarted Label = "not_started"
	InProgress Label = "in_progress"
	Completed  Label = "completed"
)

// String returns a human readable label.
func (l Label) String() string {
	switch l {
	case NotStarted:
		return "Not started"
	case InProgress:
		return "In progress"
	case Completed:
		return "Completed"
	default:
		return string(l)
	}
}

// Input is the subset of a journal entry the calculator needs. Start and End
// are canonical days; a zero value means the date is missing.
type Input struct {
	Progress *float64
	Start    time.Time
	End      time.Time
}

// Summary is the derived, never persisted, progress view of an entry.
type Summary struct {
	Percent int
	Label   Label
	Overdue bool
}

// Compute returns the progress summary of in as of now.
//
// An explicit finite progress value always wins, even when the window has not
// started yet. Otherwise the percentage is the elapsed share of the window.
func Compute(in Input, now time.Time) Summary {
	var percent int
	if p, ok := explicit(in.Progress); ok {
		percent = p
	} else {
		percent = fromWindow(in.Start, in.End, now)
	}
	return Summary{
		Percent: percent,
		Label:   LabelFor(percent),
		Overdue: IsOverdue(in, now),
	}
}

// IsOverdue reports whether the entry carries an explicit progress below 100
// and its end day is strictly in the past. Entries without explicit progress
// are never overdue.
func IsOverdue(in Input, now time.Time) bool {
	p, ok := explicit(in.Progress)
	if !ok || p >= 100 {
		return false
	}
	_, end, ok := window(in.Start, in.End)
	if !ok {
		return false
	}
	return dates.Day(now).After(end)
}

// LabelFor maps a percentage onto its label.
func LabelFor(percent int) Label {
	switch {
	case percent <= 0:
		return NotStarted
	case percent >= 100:
		return Completed
	default:
		return InProgress
	}
}

// Clamp bounds v to [0,100] and rounds half away from zero.
func Clamp(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

func explicit(p *float64) (int, bool) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return Clamp(*p), true
}

// window fills a missing bound from the other one and clamps end to start.
func window(start, end time.Time) (time.Time, time.Time, bool) {
	switch {
	case start.IsZero() && end.IsZero():
		return time.Time{}, time.Time{}, false
	case start.IsZero():
		start = end
	case end.IsZero():
		end = start
	}
	start, end = dates.Day(start), dates.Day(end)
	if end.Before(start) {
		end = start
	}
	return start, end, true
}

func fromWindow(start, end, now time.Time) int {
	start, end, ok := window(start, end)
	if !ok {
		return 0
	}

	s, e, n := civilDays(start), civilDays(end), civilDays(now)
	total := e - s
	if total <= 0 {
		if n >= e {
			return 100
		}
		return 0
	}

	elapsed := math.Max(s, math.Min(n, e)) - s
	return Clamp(elapsed / total * 100)
}

// civilDays counts days since the epoch on the local wall clock, so windows
// spanning a DST change still measure whole days.
func civilDays(t time.Time) float64 {
	l := t.Local()
	wall := time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), time.UTC)
	return float64(wall.UnixNano()) / float64(24*time.Hour)
}
