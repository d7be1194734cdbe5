package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/DikaaDK/Chronos-sub000/internal/calendar"
	"github.com/DikaaDK/Chronos-sub000/internal/client/export"
	"github.com/DikaaDK/Chronos-sub000/internal/client/services"
	"github.com/DikaaDK/Chronos-sub000/internal/dates"
	"github.com/DikaaDK/Chronos-sub000/internal/filex"
	"github.com/DikaaDK/Chronos-sub000/internal/journal"
)

var (
	ErrNotFound      = errors.New("journal not found")
	ErrBadMonth      = errors.New("invalid month, use YYYY-MM")
	ErrExportFormat  = errors.New("unknown export format, use json or csv")
	ErrNotConfirmed  = errors.New("cancelled")
	ErrEmptyPassword = errors.New("password is required")
	ErrPrefsCommand  = errors.New("unknown prefs command, use reset")
)

func (a *App) locale() string {
	return a.session.Prefs().Current().Locale
}

func (a *App) Login(ctx context.Context) error {
	remembered := a.session.Prefs().Current().RememberedEmail
	email, err := GetDefaultText(a.reader, "Enter email", remembered, a.out)
	if err != nil {
		return a.report(err)
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return a.report(err)
	}
	defer clear(password)
	if len(password) == 0 {
		return a.report(ErrEmptyPassword)
	}

	id, err := a.session.SignIn(ctx, email, string(password))
	if err != nil {
		if _, ok := a.session.Identity(); !ok {
			return a.report(fmt.Errorf("login unsuccessful: %w", err))
		}
		// signed in, but the first refresh failed
		_ = a.report(err)
	}

	name := id.Name
	if name == "" {
		name = id.Email
	}
	a.println(fmt.Sprintf("Welcome, %s. %d journals loaded.", name, a.session.Store().Len()))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.SignOut(ctx)
	a.println("Logged out.")
	return nil
}

func (a *App) List(ctx context.Context) error {
	a.println(a.style().renderList(a.session.Journals().List(), a.now(), a.locale()))
	return nil
}

func (a *App) find(id string) (journal.Entry, error) {
	e, ok := a.session.Journals().Find(journal.ID(strings.TrimSpace(id)))
	if !ok {
		return journal.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

func (a *App) Show(ctx context.Context, id string) error {
	e, err := a.find(id)
	if err != nil {
		return a.fail(ctx, err)
	}
	a.println(a.style().renderEntry(e, a.now(), a.locale()))
	return nil
}

// inputDraft prompts for every draft field, offering d's values as defaults.
func (a *App) inputDraft(d services.Draft) (services.Draft, error) {
	var err error
	if d.Title, err = GetDefaultText(a.reader, "Title", d.Title, a.out); err != nil {
		return d, err
	}
	if d.StartDate, err = GetDate(a.reader, "Start date (YYYY-MM-DD)", d.StartDate, a.out); err != nil {
		return d, err
	}
	if d.EndDate, err = GetDate(a.reader, "End date (YYYY-MM-DD, empty for same day)", d.EndDate, a.out); err != nil {
		return d, err
	}
	if d.Progress, err = GetPercent(a.reader, "Progress (0-100)", d.Progress, a.out); err != nil {
		return d, err
	}

	prompt := "Content"
	if d.Content != "" {
		prompt = "Content (empty keeps the current text)"
	}
	content, err := GetMultiline(a.reader, prompt, a.out)
	if err != nil {
		return d, err
	}
	if content != "" {
		d.Content = content
	}
	return d, nil
}

func (a *App) Add(ctx context.Context) error {
	d, err := a.inputDraft(services.Draft{StartDate: dates.Day(a.now())})
	if err != nil {
		return a.fail(ctx, err)
	}
	e, err := a.session.Journals().Create(ctx, d)
	if err != nil {
		return a.fail(ctx, err)
	}
	a.println(fmt.Sprintf("Created journal %s.", e.ID))
	return nil
}

func (a *App) Edit(ctx context.Context, id string) error {
	e, err := a.find(id)
	if err != nil {
		return a.fail(ctx, err)
	}
	d, err := a.inputDraft(services.DraftFrom(e))
	if err != nil {
		return a.fail(ctx, err)
	}
	if _, err := a.session.Journals().Update(ctx, e.ID, d); err != nil {
		return a.fail(ctx, err)
	}
	a.println(fmt.Sprintf("Updated journal %s.", e.ID))
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	e, err := a.find(id)
	if err != nil {
		return a.fail(ctx, err)
	}
	answer, err := GetSimpleText(a.reader, fmt.Sprintf("Delete %q? (y/N)", titleOf(e)), a.out)
	if err != nil {
		return a.fail(ctx, err)
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.println("Cancelled.")
		return ErrNotConfirmed
	}
	if err := a.session.Journals().Delete(ctx, e.ID); err != nil {
		return a.fail(ctx, err)
	}
	a.println(fmt.Sprintf("Deleted journal %s.", e.ID))
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.session.Journals().Refresh(ctx); err != nil {
		return a.fail(ctx, err)
	}
	a.println(fmt.Sprintf("%d journals loaded.", a.session.Store().Len()))
	return nil
}

// Calendar renders the month given as YYYY-MM, or the current month.
func (a *App) Calendar(ctx context.Context, month string) error {
	now := a.now()
	year, m := now.Year(), now.Month()
	if month != "" {
		t, err := time.ParseInLocation("2006-01", month, time.Local)
		if err != nil {
			return a.fail(ctx, fmt.Errorf("%w: %q", ErrBadMonth, month))
		}
		year, m = t.Year(), t.Month()
	}

	entries := a.session.Journals().List()
	for _, id := range calendar.Oversized(entries) {
		a.logger.Warn(ctx, "journal window cut for calendar", "id", id, "max_days", calendar.MaxSpanDays)
	}
	idx := calendar.BuildIndex(entries, "Untitled")
	a.println(a.style().renderMonth(idx, year, m, now, a.locale()))
	return nil
}

func (a *App) Locale(ctx context.Context, code string) error {
	if code == "" {
		a.println("Locale: " + a.locale())
		return nil
	}
	got, err := a.session.Prefs().SetLocale(ctx, code)
	if err != nil {
		return a.fail(ctx, err)
	}
	a.println("Locale set to " + got)
	return nil
}

func (a *App) Theme(ctx context.Context, name string) error {
	if name == "" {
		a.println("Theme: " + a.session.Prefs().Current().Display.Theme)
		return nil
	}
	if err := a.session.Prefs().SetTheme(ctx, strings.ToLower(name)); err != nil {
		return a.fail(ctx, err)
	}
	a.setTheme(a.session.Prefs().Current().Display.Theme)
	a.println("Theme set to " + a.session.Prefs().Current().Display.Theme)
	return nil
}

// Prefs lists the stored preferences, or wipes them with "reset".
func (a *App) Prefs(ctx context.Context, cmd string) error {
	p := a.session.Prefs()
	switch strings.ToLower(cmd) {
	case "":
		recs, err := p.Stored(ctx)
		if err != nil {
			return a.fail(ctx, err)
		}
		if len(recs) == 0 {
			a.println("No stored preferences.")
			return nil
		}
		for _, r := range recs {
			line := fmt.Sprintf("%-16s %s", r.Key, r.Value)
			if !r.UpdatedAt.IsZero() {
				line += "  (" + r.UpdatedAt.Format("2006-01-02 15:04") + ")"
			}
			a.println(line)
		}
		return nil
	case "reset":
		if err := p.Reset(ctx); err != nil {
			return a.fail(ctx, err)
		}
		a.setTheme(p.Current().Display.Theme)
		a.println("Preferences reset to defaults.")
		return nil
	default:
		return a.fail(ctx, fmt.Errorf("%w: %q", ErrPrefsCommand, cmd))
	}
}

func (a *App) Export(ctx context.Context, format, path string) error {
	write := export.ToJSON
	switch strings.ToLower(format) {
	case "json":
	case "csv":
		write = export.ToCSV
	default:
		return a.fail(ctx, fmt.Errorf("%w: %q", ErrExportFormat, format))
	}

	list := a.session.Journals().List()
	err := filex.WriteAtomic(path, func(w io.Writer) error {
		return write(w, list, a.now(), a.locale())
	})
	if err != nil {
		return a.fail(ctx, err)
	}
	a.println(fmt.Sprintf("Exported %d journals to %s.", len(list), path))
	return nil
}

func (a *App) Backup(ctx context.Context) error {
	id, _ := a.session.Identity()
	key, err := a.backuper.Backup(ctx, id.UserID, a.session.Journals().List(), a.now(), a.locale())
	if err != nil {
		return a.fail(ctx, err)
	}
	a.println("Backup stored at " + key)
	return nil
}
