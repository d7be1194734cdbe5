// Package services contains the client's application services: signing in
// and the journal workflows that keep the local collection in step with the
// persistence API.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DikaaDK/Chronos-sub000/internal/client/api"
	"github.com/DikaaDK/Chronos-sub000/internal/dates"
	"github.com/DikaaDK/Chronos-sub000/internal/journal"
	"github.com/DikaaDK/Chronos-sub000/internal/logging"
	"github.com/DikaaDK/Chronos-sub000/internal/progress"
)

// JournalAPI is the subset of the persistence API the workflows need.
type JournalAPI interface {
	ListJournals(ctx context.Context) ([]journal.Entry, error)
	CreateJournal(ctx context.Context, p api.Payload) (journal.Entry, error)
	UpdateJournal(ctx context.Context, id journal.ID, p api.Payload) (journal.Entry, error)
	DeleteJournal(ctx context.Context, id journal.ID) error
}

// Draft is the user's input for a new or edited entry.
type Draft struct {
	Title     string
	Content   string
	StartDate time.Time
	EndDate   time.Time
	Progress  float64
}

// DraftFrom prefills a draft from an existing entry.
func DraftFrom(e journal.Entry) Draft {
	d := Draft{Title: e.Title, Content: e.Content}
	if start, end, ok := e.Window(); ok {
		d.StartDate, d.EndDate = start, end
	}
	if e.Progress != nil {
		d.Progress = *e.Progress
	}
	return d
}

// Payload validates d and converts it to a request body. A missing or early
// end date becomes the start date and progress is clamped to [0,100].
func (d Draft) Payload() (api.Payload, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return api.Payload{}, ErrTitleRequired
	}
	if d.StartDate.IsZero() {
		return api.Payload{}, ErrStartRequired
	}
	start := dates.Day(d.StartDate)
	end := start
	if !d.EndDate.IsZero() && dates.Day(d.EndDate).After(start) {
		end = dates.Day(d.EndDate)
	}
	return api.Payload{
		Title:     title,
		Content:   d.Content,
		StartDate: dates.APIString(start),
		EndDate:   dates.APIString(end),
		Date:      dates.APIString(start),
		Progress:  progress.Clamp(d.Progress),
	}, nil
}

// JournalService runs the journal workflows. The store only changes after
// the API confirmed a write; failed calls leave it untouched.
type JournalService interface {
	Refresh(ctx context.Context) error
	Create(ctx context.Context, d Draft) (journal.Entry, error)
	Update(ctx context.Context, id journal.ID, d Draft) (journal.Entry, error)
	Delete(ctx context.Context, id journal.ID) error
	Find(id journal.ID) (journal.Entry, bool)
	List() []journal.Entry
}

type journalService struct {
	api    JournalAPI
	store  *journal.Store
	logger logging.Logger
}

func NewJournalService(a JournalAPI, store *journal.Store, l logging.Logger) JournalService {
	return &journalService{api: a, store: store, logger: l.With("module", "journal_service")}
}

// Refresh replaces the collection with the server's list.
func (s *journalService) Refresh(ctx context.Context) error {
	list, err := s.api.ListJournals(ctx)
	if err != nil {
		return fmt.Errorf("list journals: %w", err)
	}
	s.store.ReplaceAll(list)
	s.logger.Debug(ctx, "journals refreshed", "count", s.store.Len())
	return nil
}

func (s *journalService) Create(ctx context.Context, d Draft) (journal.Entry, error) {
	p, err := d.Payload()
	if err != nil {
		return journal.Entry{}, err
	}

	created, err := s.api.CreateJournal(ctx, p)
	if err != nil {
		return journal.Entry{}, fmt.Errorf("create journal: %w", err)
	}
	if created.ID.IsZero() {
		return journal.Entry{}, ErrMissingID
	}

	created = journal.EnsureProgress(created, float64(p.Progress))
	s.store.UpsertCreated(created)
	s.logger.Info(ctx, "journal created", "id", created.ID)
	return created, nil
}

// Update sends d for id. A confirmed record the store does not know yet is
// inserted at the front so that the server's answer is never dropped.
func (s *journalService) Update(ctx context.Context, id journal.ID, d Draft) (journal.Entry, error) {
	p, err := d.Payload()
	if err != nil {
		return journal.Entry{}, err
	}

	updated, err := s.api.UpdateJournal(ctx, id, p)
	if err != nil {
		return journal.Entry{}, fmt.Errorf("update journal %s: %w", id, err)
	}
	if updated.ID.IsZero() {
		updated.ID = id
	}

	updated = journal.EnsureProgress(updated, float64(p.Progress))
	if !s.store.UpsertUpdated(updated) {
		s.store.UpsertCreated(updated)
	}
	s.logger.Info(ctx, "journal updated", "id", updated.ID)
	return updated, nil
}

// Delete removes id remotely and then locally. A 404 counts as deleted.
func (s *journalService) Delete(ctx context.Context, id journal.ID) error {
	err := s.api.DeleteJournal(ctx, id)
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("delete journal %s: %w", id, err)
	}
	s.store.Remove(id)
	s.logger.Info(ctx, "journal deleted", "id", id)
	return nil
}

func (s *journalService) Find(id journal.ID) (journal.Entry, bool) {
	return s.store.Get(id)
}

func (s *journalService) List() []journal.Entry {
	return s.store.Snapshot()
}
