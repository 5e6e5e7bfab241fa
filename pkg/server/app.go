package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"MarketPulse/internal/usecase"
	pkgch "MarketPulse/pkg/clickhouse"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle: streaming side, HTTP
// server, and infrastructure clients, started together and torn down in
// reverse order on interrupt.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	streams    *usecase.StreamUsecase
	handler    xhttp.Handler
	chClient   *pkgch.Client
	closeables []func() error
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. chClient may be nil
// when ClickHouse is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	streams *usecase.StreamUsecase,
	handler xhttp.Handler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		streams:  streams,
		handler:  handler,
		chClient: chClient,
	}
}

// AddCloser registers a resource to close on shutdown (e.g. Kafka producer).
func (a *App) AddCloser(fn func() error) {
	a.closeables = append(a.closeables, fn)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
	)

	// Initial connect failures are not fatal: the stream keeps retrying in
	// the background while the API serves status and cached data.
	if err := a.streams.Start(ctx); err != nil {
		a.log.Warn("stream start failed, serving API anyway", applogger.Error(err))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("marketpulse started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("transport", a.cfg.Provider.Transport))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.streams.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	for _, closeFn := range a.closeables {
		if err := closeFn(); err != nil {
			a.log.Warn("close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
