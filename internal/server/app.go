// Package server wires the realtime relay: configuration, logging, the
// channel hub, the gRPC endpoint and graceful shutdown on OS signals.
package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/DikaaDK/Chronos-sub000/internal/logging"
	"github.com/DikaaDK/Chronos-sub000/internal/server/config"
	"github.com/DikaaDK/Chronos-sub000/internal/server/relay"

	gs "github.com/DikaaDK/Chronos-sub000/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	hub    *relay.Hub
}

func NewApp(c *config.Config) *App {
	logger := logging.NewJSON(os.Stdout, logging.ParseLevel(c.LogLevel))
	return &App{config: c, logger: logger, hub: relay.NewHub(c.SubscriberBuffer, logger)}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.hub, app.config.SecretKey, app.config.PublishKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is canceled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting relay...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "Relay stopped")
}
