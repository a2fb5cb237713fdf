// Package server owns the application lifecycle: HTTP listener, the alert
// scheduler and graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rrtracker/internal/usecase"
	"rrtracker/pkg/config"
	xhttp "rrtracker/pkg/http"
	"rrtracker/pkg/kv"
	xlogger "rrtracker/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	logger    *xlogger.Logger
	handler   xhttp.Handler
	scheduler *usecase.Scheduler
	kvStore   *kv.Store

	httpServer *xhttp.Server
}

// New creates the application from its wired dependencies.
func New(
	cfg *config.Config,
	logger *xlogger.Logger,
	handler xhttp.Handler,
	scheduler *usecase.Scheduler,
	kvStore *kv.Store,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		handler:   handler,
		scheduler: scheduler,
		kvStore:   kvStore,
	}
}

// Run starts the scheduler and the HTTP server and blocks until a shutdown
// signal arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	a.httpServer = xhttp.NewServer(a.handler, opts...)

	go a.scheduler.Start(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start", xlogger.Error(err))
		return err
	}
	a.logger.Info("listening",
		xlogger.Int("port", a.cfg.Server.Port),
		xlogger.String("env", a.cfg.Environment),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", xlogger.Error(err))
	}
	if a.kvStore != nil {
		if err := a.kvStore.Close(); err != nil {
			a.logger.Warn("redis close", xlogger.Error(err))
		}
	}
	a.logger.Info("shutdown complete")
	return nil
}
