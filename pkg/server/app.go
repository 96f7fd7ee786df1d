package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"volscan/internal/usecase"
	"volscan/pkg/config"
	xhttp "volscan/pkg/http"
	xlogger "volscan/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *xlogger.Logger
	cycle      *usecase.ScanCycle
	dispatcher *usecase.ResultDispatcher
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *xlogger.Logger,
	cycle *usecase.ScanCycle,
	dispatcher *usecase.ResultDispatcher,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		cycle:      cycle,
		dispatcher: dispatcher,
		handler:    handler,
	}
}

// Run starts the scanner and HTTP server, then blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	a.cycle.Start(ctx)
	a.logger.Info("scanner started",
		xlogger.String("base_url", a.cfg.Bybit.BaseURL),
		xlogger.String("quote_suffix", a.cfg.Bybit.QuoteSuffix),
		xlogger.String("backend", a.cfg.Backend.Type),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", xlogger.Error(err))
		return err
	}
	a.logger.Info("http server started", xlogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.cycle.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", xlogger.Error(err))
	}

	// sinks last: the cycle can no longer publish
	a.dispatcher.Close()

	a.logger.Info("shutdown complete")
	return nil
}
