// Package prefs keeps the client preferences that survive restarts: the
// remembered login email, the display locale and the display theme.
//
// Values live in the metadata table as JSON. A missing, unreadable or corrupt
// value reads back as its default and is never reported as an error.
package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/DikaaDK/Chronos-sub000/internal/client/repositories/metadata"
	"github.com/DikaaDK/Chronos-sub000/internal/dates"
	"github.com/DikaaDK/Chronos-sub000/internal/dbx"
	"github.com/DikaaDK/Chronos-sub000/internal/logging"
)

const (
	KeyRememberedEmail = "remembered_email"
	KeyLocale          = "locale"
	KeyDisplay         = "display"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	FontSmall  = "small"
	FontMedium = "medium"
	FontLarge  = "large"
)

// Display holds the presentation settings.
type Display struct {
	Theme    string `json:"theme"`
	FontSize string `json:"font_size"`
}

// Values is a snapshot of every preference.
type Values struct {
	RememberedEmail string
	Locale          string
	Display         Display
}

// Defaults returns the values used when nothing valid is stored.
func Defaults() Values {
	return Values{
		Locale:  dates.DefaultLocale,
		Display: Display{Theme: ThemeLight, FontSize: FontMedium},
	}
}

// Prefs caches the preferences in memory and writes changes through to the
// metadata table.
type Prefs struct {
	db     *sql.DB
	logger logging.Logger

	mu     sync.RWMutex
	values Values
}

func New(db *sql.DB, l logging.Logger) *Prefs {
	return &Prefs{db: db, logger: l.With("module", "prefs"), values: Defaults()}
}

// Load reads every stored preference, replacing the cached values.
func (p *Prefs) Load(ctx context.Context) Values {
	repo := metadata.NewSQLiteRepository(p.db)
	v := Defaults()

	var email string
	if p.read(ctx, repo, KeyRememberedEmail, &email) {
		v.RememberedEmail = strings.TrimSpace(email)
	}

	var locale string
	if p.read(ctx, repo, KeyLocale, &locale) && strings.TrimSpace(locale) != "" {
		v.Locale = dates.ResolveLocale(locale)
	}

	var d Display
	if p.read(ctx, repo, KeyDisplay, &d) {
		v.Display = sanitizeDisplay(d)
	}

	p.mu.Lock()
	p.values = v
	p.mu.Unlock()
	return v
}

// Current returns the cached values.
func (p *Prefs) Current() Values {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values
}

// SetLocale stores the resolved form of locale and returns it.
func (p *Prefs) SetLocale(ctx context.Context, locale string) (string, error) {
	resolved := dates.ResolveLocale(locale)
	err := p.update(ctx, func(v *Values) { v.Locale = resolved })
	return resolved, err
}

// SetTheme stores theme, which must be light or dark.
func (p *Prefs) SetTheme(ctx context.Context, theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("%w: theme %q", ErrInvalidValue, theme)
	}
	return p.update(ctx, func(v *Values) { v.Display.Theme = theme })
}

// SetFontSize stores size, which must be small, medium or large.
func (p *Prefs) SetFontSize(ctx context.Context, size string) error {
	size = strings.ToLower(strings.TrimSpace(size))
	if !validFontSize(size) {
		return fmt.Errorf("%w: font size %q", ErrInvalidValue, size)
	}
	return p.update(ctx, func(v *Values) { v.Display.FontSize = size })
}

// RememberEmail stores email for the next login prompt. An empty email
// forgets it.
func (p *Prefs) RememberEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	return p.update(ctx, func(v *Values) { v.RememberedEmail = email })
}

// Stored returns the raw stored preferences with their last write time,
// ordered by key.
func (p *Prefs) Stored(ctx context.Context) ([]metadata.Record, error) {
	recs, err := metadata.NewSQLiteRepository(p.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return recs, nil
}

// Reset removes every stored preference and restores the defaults.
func (p *Prefs) Reset(ctx context.Context) error {
	if err := metadata.NewSQLiteRepository(p.db).Clear(ctx); err != nil {
		return fmt.Errorf("reset preferences: %w", err)
	}
	p.mu.Lock()
	p.values = Defaults()
	p.mu.Unlock()
	return nil
}

// Save writes every cached value in one transaction.
func (p *Prefs) Save(ctx context.Context) error {
	return p.write(ctx, p.Current())
}

func (p *Prefs) update(ctx context.Context, fn func(*Values)) error {
	p.mu.Lock()
	next := p.values
	fn(&next)
	p.mu.Unlock()

	if err := p.write(ctx, next); err != nil {
		return err
	}

	p.mu.Lock()
	p.values = next
	p.mu.Unlock()
	return nil
}

func (p *Prefs) write(ctx context.Context, v Values) error {
	return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		if v.RememberedEmail == "" {
			if err := repo.Delete(ctx, KeyRememberedEmail); err != nil {
				return err
			}
		} else if err := writeJSON(ctx, repo, KeyRememberedEmail, v.RememberedEmail); err != nil {
			return err
		}
		if err := writeJSON(ctx, repo, KeyLocale, v.Locale); err != nil {
			return err
		}
		return writeJSON(ctx, repo, KeyDisplay, v.Display)
	})
}

func writeJSON(ctx context.Context, repo metadata.Repository, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return repo.Set(ctx, key, b)
}

// read decodes key into dst and reports whether a valid value was found.
func (p *Prefs) read(ctx context.Context, repo metadata.Repository, key string, dst any) bool {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		p.logger.Warn(ctx, "preference unreadable, using default", "key", key, "error", err)
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		p.logger.Warn(ctx, "preference corrupt, using default", "key", key, "error", err)
		return false
	}
	return true
}

func sanitizeDisplay(d Display) Display {
	def := Defaults().Display
	d.Theme = strings.ToLower(strings.TrimSpace(d.Theme))
	if d.Theme != ThemeLight && d.Theme != ThemeDark {
		d.Theme = def.Theme
	}
	d.FontSize = strings.ToLower(strings.TrimSpace(d.FontSize))
	if !validFontSize(d.FontSize) {
		d.FontSize = def.FontSize
	}
	return d
}

func validFontSize(s string) bool {
	return s == FontSmall || s == FontMedium || s == FontLarge
}
