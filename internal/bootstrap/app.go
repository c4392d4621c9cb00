package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/breatheeasy/internal/domain/dashboard"
	"github.com/yanqian/breatheeasy/internal/infra/config"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the HTTP server and dashboard session lifecycle.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	registry *dashboard.Registry
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, registry *dashboard.Registry) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, registry: registry}
}

// Run starts the HTTP server and the session sweeper, and blocks until
// shutdown. Live sessions are closed once the server has drained.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		a.registry.Run(sweepCtx)
	}()
	defer func() {
		stopSweep()
		<-sweepDone
		a.logger.Info("dashboard sessions closed")
	}()

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutdown signal received")
		// Event streams only end when their session closes.
		a.server.RegisterOnShutdown(a.registry.Close)
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
