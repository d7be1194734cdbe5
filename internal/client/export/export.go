// Package export writes the journal collection to portable formats and backs
// it up to S3-compatible object storage.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/DikaaDK/Chronos-sub000/internal/dates"
	"github.com/DikaaDK/Chronos-sub000/internal/journal"
)

// Record is one exported entry with its derived progress.
type Record struct {
	ID        journal.ID `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content,omitempty"`
	StartDate string     `json:"start_date,omitempty"`
	EndDate   string     `json:"end_date,omitempty"`
	Period    string     `json:"period"`
	Progress  int        `json:"progress"`
	Status    string     `json:"status"`
	Overdue   bool       `json:"overdue"`
}

// Document is the top level of a JSON export.
type Document struct {
	ExportedAt time.Time `json:"exported_at"`
	Locale     string    `json:"locale"`
	Count      int       `json:"count"`
	Journals   []Record  `json:"journals"`
}

// Records derives the export rows of entries as of now.
func Records(entries []journal.Entry, now time.Time, locale string) []Record {
	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		r := Record{ID: e.ID, Title: e.Title, Content: e.Content, Period: "-"}
		if start, end, ok := e.Window(); ok {
			r.StartDate = dates.APIString(start)
			r.EndDate = dates.APIString(end)
			r.Period = dates.FormatPeriod(start, end, "-", locale)
		}
		s := e.Summary(now)
		r.Progress = s.Percent
		r.Status = string(s.Label)
		r.Overdue = s.Overdue
		out = append(out, r)
	}
	return out
}

// ToJSON writes entries as an indented Document.
func ToJSON(w io.Writer, entries []journal.Entry, now time.Time, locale string) error {
	recs := Records(entries, now, locale)
	doc := Document{
		ExportedAt: now.UTC(),
		Locale:     dates.ResolveLocale(locale),
		Count:      len(recs),
		Journals:   recs,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}

var csvHeader = []string{"id", "title", "start_date", "end_date", "period", "progress", "status", "overdue"}

// ToCSV writes entries as CSV with a header row. Content is left out.
func ToCSV(w io.Writer, entries []journal.Entry, now time.Time, locale string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range Records(entries, now, locale) {
		row := []string{
			r.ID.String(),
			r.Title,
			r.StartDate,
			r.EndDate,
			r.Period,
			strconv.Itoa(r.Progress),
			r.Status,
			strconv.FormatBool(r.Overdue),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
