package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/DikaaDK/Chronos-sub000/internal/client/api"
	"github.com/DikaaDK/Chronos-sub000/internal/client/config"
	"github.com/DikaaDK/Chronos-sub000/internal/client/export"
	"github.com/DikaaDK/Chronos-sub000/internal/client/prefs"
	"github.com/DikaaDK/Chronos-sub000/internal/client/realtime"
	"github.com/DikaaDK/Chronos-sub000/internal/client/services"
	"github.com/DikaaDK/Chronos-sub000/internal/client/session"
	"github.com/DikaaDK/Chronos-sub000/internal/client/storage"
	"github.com/DikaaDK/Chronos-sub000/internal/journal"
	"github.com/DikaaDK/Chronos-sub000/internal/logging"
)

// storeBuffer bounds the change notifications waiting for the watcher.
const storeBuffer = 64

type App struct {
	session  *session.Session
	backuper *export.Backuper
	logger   logging.Logger
	closers  []func() error

	reader *bufio.Reader
	out    io.Writer
	outMu  sync.Mutex
	now    func() time.Time

	themeMu sync.RWMutex
	theme   theme
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.NewText(os.Stderr, logging.ParseLevel(c.LogLevel))

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := api.New(c.APIBaseURL, c.RequestTimeout, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	rt, err := realtime.New(c.RealtimeAddr, c.ReconnectInterval, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := journal.NewStore(storeBuffer)
	sess := session.New(session.Deps{
		Tokens:     apiClient,
		Auth:       services.NewAuthService(apiClient),
		Journals:   services.NewJournalService(apiClient, store, logger),
		Store:      store,
		Prefs:      prefs.New(db, logger),
		Subscriber: session.FromRealtime(rt),
		Logger:     logger,
	})

	backuper := export.NewBackuper(export.S3Config{
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Bucket:    c.S3Bucket,
	}, logger)

	return &App{
		session:  sess,
		backuper: backuper,
		logger:   logger.With("module", "cli"),
		closers:  []func() error{rt.Close, db.Close},
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		now:      time.Now,
		theme:    newTheme(prefs.ThemeLight),
	}, nil
}

// Run restores preferences, starts the realtime change watcher and blocks in
// the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close(ctx)

	v := a.session.Init(ctx)
	a.setTheme(v.Display.Theme)

	a.println("Welcome to Chronos (type 'help' for commands)")
	go a.watchChanges(ctx)

	if v.RememberedEmail != "" {
		_ = a.Login(ctx)
	}
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) close(ctx context.Context) {
	if err := a.session.Dispose(ctx); err != nil {
		a.logger.Warn(ctx, "dispose session", "error", err)
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn(ctx, "close", "error", err)
		}
	}
}

// watchChanges announces journal changes pushed by the relay.
func (a *App) watchChanges(ctx context.Context) {
	changes := a.session.Store().Changes()
	for {
		select {
		case c := <-changes:
			if c.Kind == journal.ChangeRealtime {
				a.println(a.style().Notice.Render(fmt.Sprintf("journal %s changed remotely (%d total)", c.ID, c.Len)))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) isLoggedIn() bool {
	_, ok := a.session.Identity()
	return ok
}

func (a *App) status() string {
	id, ok := a.session.Identity()
	if !ok {
		return ""
	}
	name := id.Email
	if name == "" {
		name = id.Name
	}
	return fmt.Sprintf(" (%s)", name)
}

// style returns the active theme. The realtime watcher reads it while the
// REPL goroutine may be switching it.
func (a *App) style() theme {
	a.themeMu.RLock()
	defer a.themeMu.RUnlock()
	return a.theme
}

func (a *App) setTheme(name string) {
	th := newTheme(name)
	a.themeMu.Lock()
	a.theme = th
	a.themeMu.Unlock()
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

// fail reports err to the user and returns it. A rejected token also ends
// the session.
func (a *App) fail(ctx context.Context, err error) error {
	return a.report(a.session.Check(ctx, err))
}

func (a *App) report(err error) error {
	a.println(a.style().ErrorMsg.Render("Error: " + err.Error()))
	return err
}
