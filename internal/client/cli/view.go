package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/DikaaDK/Chronos-sub000/internal/calendar"
	"github.com/DikaaDK/Chronos-sub000/internal/client/prefs"
	"github.com/DikaaDK/Chronos-sub000/internal/dates"
	"github.com/DikaaDK/Chronos-sub000/internal/journal"
	"github.com/DikaaDK/Chronos-sub000/internal/progress"
)

const barWidth = 10

// theme groups the lipgloss styles used by the views.
type theme struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	ID       lipgloss.Style
	Bar      lipgloss.Style
	Done     lipgloss.Style
	Overdue  lipgloss.Style
	Header   lipgloss.Style
	Day      lipgloss.Style
	Busy     lipgloss.Style
	Today    lipgloss.Style
	Notice   lipgloss.Style
	ErrorMsg lipgloss.Style
}

func newTheme(name string) theme {
	fg, muted, accent := lipgloss.Color("236"), lipgloss.Color("244"), lipgloss.Color("25")
	if name == prefs.ThemeDark {
		fg, muted, accent = lipgloss.Color("252"), lipgloss.Color("245"), lipgloss.Color("81")
	}

	return theme{
		Title:    lipgloss.NewStyle().Foreground(fg).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		ID:       lipgloss.NewStyle().Foreground(muted).Width(5).Align(lipgloss.Right),
		Bar:      lipgloss.NewStyle().Foreground(accent),
		Done:     lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
		Overdue:  lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
		Header:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		Day:      lipgloss.NewStyle().Foreground(fg).Width(4).Align(lipgloss.Right),
		Busy:     lipgloss.NewStyle().Foreground(accent).Bold(true).Width(4).Align(lipgloss.Right),
		Today:    lipgloss.NewStyle().Reverse(true).Width(4).Align(lipgloss.Right),
		Notice:   lipgloss.NewStyle().Foreground(accent).Italic(true),
		ErrorMsg: lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	}
}

// progressBar renders percent as a fixed width bar followed by the number.
func progressBar(percent int) string {
	filled := progress.Clamp(float64(percent)) * barWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "] " + fmt.Sprintf("%3d%%", percent)
}

func titleOf(e journal.Entry) string {
	if t := strings.TrimSpace(e.Title); t != "" {
		return t
	}
	return "Untitled"
}

func (th theme) status(s progress.Summary) string {
	switch {
	case s.Overdue:
		return th.Overdue.Render("OVERDUE")
	case s.Label == progress.Completed:
		return th.Done.Render(s.Label.String())
	default:
		return th.Muted.Render(s.Label.String())
	}
}

func period(e journal.Entry, locale string) string {
	start, end, ok := e.Window()
	if !ok {
		return "-"
	}
	return dates.FormatPeriod(start, end, "-", locale)
}

// renderList renders one row per entry.
func (th theme) renderList(entries []journal.Entry, now time.Time, locale string) string {
	if len(entries) == 0 {
		return th.Muted.Render("No journals yet. Use 'add' to create one.")
	}

	rows := make([]string, 0, len(entries))
	for _, e := range entries {
		s := e.Summary(now)
		rows = append(rows, strings.Join([]string{
			th.ID.Render(e.ID.String()),
			th.Title.Render(titleOf(e)),
			th.Muted.Render(period(e, locale)),
			th.Bar.Render(progressBar(s.Percent)),
			th.status(s),
		}, "  "))
	}
	return strings.Join(rows, "\n")
}

// renderEntry renders the detail view of e.
func (th theme) renderEntry(e journal.Entry, now time.Time, locale string) string {
	s := e.Summary(now)
	lines := []string{
		th.Title.Render(titleOf(e)) + " " + th.Muted.Render("#"+e.ID.String()),
		th.Muted.Render("Period:   ") + period(e, locale),
		th.Muted.Render("Progress: ") + th.Bar.Render(progressBar(s.Percent)) + " " + th.status(s),
	}
	if !e.UpdatedAt.IsZero() {
		lines = append(lines, th.Muted.Render("Updated:  ")+dates.Display(e.UpdatedAt, locale))
	}
	if c := strings.TrimSpace(e.Content); c != "" {
		lines = append(lines, "", c)
	}
	return strings.Join(lines, "\n")
}

var weekdayHeader = map[string][]string{
	"id": {"Sen", "Sel", "Rab", "Kam", "Jum", "Sab", "Min"},
	"en": {"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
}

// renderMonth renders the month grid followed by the entries active in it.
func (th theme) renderMonth(idx calendar.Index, year int, month time.Month, today time.Time, locale string) string {
	locale = dates.ResolveLocale(locale)

	var b strings.Builder
	b.WriteString(th.Header.Render(dates.MonthTitle(year, month, locale)))
	b.WriteString("\n")

	head := make([]string, 0, 7)
	for _, d := range weekdayHeader[locale] {
		head = append(head, th.Muted.Width(4).Align(lipgloss.Right).Render(d))
	}
	b.WriteString(strings.Join(head, ""))

	for _, week := range calendar.MonthGrid(idx, year, month, today) {
		b.WriteString("\n")
		for _, c := range week {
			b.WriteString(th.cell(c))
		}
	}

	refs := calendar.MonthEntries(idx, year, month)
	b.WriteString("\n\n")
	if len(refs) == 0 {
		b.WriteString(th.Muted.Render("No journals this month."))
		return b.String()
	}
	for _, r := range refs {
		b.WriteString("\n")
		b.WriteString(th.ID.Render(r.ID.String()) + "  " + r.Title)
	}
	return b.String()
}

func (th theme) cell(c calendar.Cell) string {
	if c.Day == 0 {
		return th.Day.Render("")
	}
	label := strconv.Itoa(c.Day)
	if c.Count > 0 {
		label += "*"
	}
	switch {
	case c.Today:
		return th.Today.Render(label)
	case c.Count > 0:
		return th.Busy.Render(label)
	default:
		return th.Day.Render(label)
	}
}
