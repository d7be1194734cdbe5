// Package dates normalizes the date representations seen in journal data
// (API strings, human strings with month names, epoch milliseconds, native
// times) into canonical calendar days and formats them back for the API and
// for display.
//
// A canonical date is local midnight of a calendar day. Every function in this
// package treats malformed input as "no date" and reports it through a boolean
// or a fallback string; none of them panic or return errors.
package dates

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// APILayout is the wire format for calendar days.
const APILayout = "2006-01-02"

// maxEpochMillis mirrors the range of an ECMAScript Date, which is where most
// millisecond timestamps in journal payloads come from.
const maxEpochMillis = 8.64e15

var nowFunc = time.Now

// zoned layouts carry their own offset; the parsed instant is moved to local time.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
}

// naive layouts have no offset and are read as local wall-clock time.
var naiveLayouts = []string{
	APILayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var looseDate = regexp.MustCompile(`^(\d{1,2})[\s\-/]+([\p{L}]+)\.?,?[\s\-/]+(\d{4})$`)

// Day truncates t to local midnight of its local calendar day.
func Day(t time.Time) time.Time {
	l := t.Local()
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.Local)
}

// Today returns the current local calendar day.
func Today() time.Time {
	return Day(nowFunc())
}

// Parse converts v into a canonical date. Supported inputs are time.Time,
// *time.Time, integer and float epoch milliseconds, json.Number, ISO-8601
// strings and "<day> <month-name> <year>" strings using the Indonesian and
// English month table. Anything else reports false.
func Parse(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return Day(x), true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return Parse(*x)
	case int:
		return fromMillis(float64(x))
	case int32:
		return fromMillis(float64(x))
	case int64:
		return fromMillis(float64(x))
	case uint:
		return fromMillis(float64(x))
	case uint32:
		return fromMillis(float64(x))
	case uint64:
		return fromMillis(float64(x))
	case float32:
		return fromMillis(float64(x))
	case float64:
		return fromMillis(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromMillis(f)
	case string:
		return parseString(x)
	case *string:
		if x == nil {
			return time.Time{}, false
		}
		return parseString(*x)
	default:
		return time.Time{}, false
	}
}

// First returns the first candidate Parse accepts.
func First(candidates ...any) (time.Time, bool) {
	for _, c := range candidates {
		if t, ok := Parse(c); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	return Day(time.UnixMilli(int64(ms))), true
}

func parseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Day(t), true
		}
	}

	return parseLoose(s)
}

func parseLoose(s string) (time.Time, bool) {
	m := looseDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	month, ok := lookupMonth(m[2])
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return time.Time{}, false
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes overflow (31 Feb -> 3 Mar); reject instead.
	if t.Day() != day || t.Month() != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}
