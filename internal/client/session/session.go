// Package session ties the client's components to the signed-in user: it
// holds the identity, keeps the realtime subscription on that user's channel
// and routes its events into the journal store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/DikaaDK/Chronos-sub000/internal/client/api"
	"github.com/DikaaDK/Chronos-sub000/internal/client/prefs"
	"github.com/DikaaDK/Chronos-sub000/internal/client/realtime"
	"github.com/DikaaDK/Chronos-sub000/internal/client/services"
	"github.com/DikaaDK/Chronos-sub000/internal/journal"
	"github.com/DikaaDK/Chronos-sub000/internal/logging"
)

// TokenHolder is the part of the API client that carries the bearer token.
type TokenHolder interface {
	SetToken(token string)
}

// Subscription is a running realtime subscription.
type Subscription interface {
	Close()
}

// Subscriber opens realtime subscriptions.
type Subscriber interface {
	Subscribe(ctx context.Context, userID, token string, h realtime.Handler) (Subscription, error)
}

type realtimeSubscriber struct {
	c *realtime.Client
}

// FromRealtime adapts a realtime client to Subscriber.
func FromRealtime(c *realtime.Client) Subscriber {
	return realtimeSubscriber{c: c}
}

func (r realtimeSubscriber) Subscribe(ctx context.Context, userID, token string, h realtime.Handler) (Subscription, error) {
	sub, err := r.c.Subscribe(ctx, userID, token, h)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Deps are the components a Session coordinates.
type Deps struct {
	Tokens     TokenHolder
	Auth       services.AuthService
	Journals   services.JournalService
	Store      *journal.Store
	Prefs      *prefs.Prefs
	Subscriber Subscriber
	Logger     logging.Logger
}

type Session struct {
	tokens     TokenHolder
	auth       services.AuthService
	journals   services.JournalService
	store      *journal.Store
	prefs      *prefs.Prefs
	subscriber Subscriber
	logger     logging.Logger

	mu       sync.Mutex
	identity *services.Identity
	sub      Subscription
}

func New(d Deps) *Session {
	return &Session{
		tokens:     d.Tokens,
		auth:       d.Auth,
		journals:   d.Journals,
		store:      d.Store,
		prefs:      d.Prefs,
		subscriber: d.Subscriber,
		logger:     d.Logger.With("module", "session"),
	}
}

func (s *Session) Journals() services.JournalService { return s.journals }
func (s *Session) Store() *journal.Store              { return s.store }
func (s *Session) Prefs() *prefs.Prefs                { return s.prefs }

// Init hydrates the preferences.
func (s *Session) Init(ctx context.Context) prefs.Values {
	return s.prefs.Load(ctx)
}

// Dispose tears down the subscription and flushes the preferences.
func (s *Session) Dispose(ctx context.Context) error {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	if err := s.prefs.Save(ctx); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Identity returns the signed-in user.
func (s *Session) Identity() (services.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return services.Identity{}, false
	}
	return *s.identity, true
}

// SignIn authenticates, moves the realtime subscription to the user's
// channel and loads the journal list. A failed refresh is returned but the
// user stays signed in.
func (s *Session) SignIn(ctx context.Context, email, password string) (services.Identity, error) {
	id, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return services.Identity{}, err
	}
	s.tokens.SetToken(id.Token)

	if err := s.prefs.RememberEmail(ctx, id.Email); err != nil {
		s.logger.Warn(ctx, "remember email failed", "error", err)
	}

	s.mu.Lock()
	prev := s.identity
	old := s.sub
	s.identity = &id
	s.sub = nil
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if prev == nil || prev.UserID != id.UserID {
		s.store.Clear()
	}

	s.subscribe(ctx, id)
	s.logger.Info(ctx, "signed in", "user_id", id.UserID)

	if err := s.journals.Refresh(ctx); err != nil {
		return id, s.Check(ctx, err)
	}
	return id, nil
}

func (s *Session) subscribe(ctx context.Context, id services.Identity) {
	if s.subscriber == nil {
		return
	}
	// The subscription outlives the sign in call.
	sub, err := s.subscriber.Subscribe(context.WithoutCancel(ctx), id.UserID, id.Token, s.handleEvent)
	if err != nil {
		s.logger.Warn(ctx, "realtime unavailable", "error", err)
		return
	}

	s.mu.Lock()
	current := s.identity != nil && s.identity.UserID == id.UserID && s.sub == nil
	if current {
		s.sub = sub
	}
	s.mu.Unlock()

	if !current {
		sub.Close()
	}
}

// SignOut forgets the user, closes the subscription and clears the store.
func (s *Session) SignOut(ctx context.Context) {
	s.mu.Lock()
	sub := s.sub
	was := s.identity
	s.sub = nil
	s.identity = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	s.tokens.SetToken("")
	s.store.Clear()
	if was != nil {
		s.logger.Info(ctx, "signed out", "user_id", was.UserID)
	}
}

// Check signs the user out when err says the token was rejected and returns
// ErrSessionExpired in that case. Other errors are returned unchanged.
func (s *Session) Check(ctx context.Context, err error) error {
	if err == nil || !errors.Is(err, api.ErrUnauthorized) {
		return err
	}
	s.SignOut(ctx)
	return fmt.Errorf("%w: %v", ErrSessionExpired, err)
}

func (s *Session) handleEvent(name string, ev journal.Event) {
	ctx := context.Background()
	if name != journal.EventName {
		s.logger.Debug(ctx, "ignoring realtime event", "event", name)
		return
	}
	if !s.store.ApplyEvent(ev) {
		s.logger.Warn(ctx, "malformed realtime event ignored", "action", ev.Action)
		return
	}
	s.logger.Debug(ctx, "realtime event applied", "action", ev.Action, "id", ev.Journal.ID)
}
