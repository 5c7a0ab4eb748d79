package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/admarket/moderation/internal/httpx"
)

const httpShutdownTimeout = 10 * time.Second

// startHTTPServer builds the HTTP server and registers its serve and drain
// goroutines with the group.
func startHTTPServer(ctx context.Context, g *errgroup.Group, cfg *ServiceOrchestrationConfig, logger *slog.Logger) {
	handler := httpx.NewRouter(httpx.RouterServices{
		Predict: cfg.Services.Predict,
		Submit:  cfg.Services.Submit,
		Queries: cfg.Services.Queries,
		Closure: cfg.Services.Closure,
		Health: httpx.HealthCheckers{
			DB:    dbPinger{cfg.DB},
			Cache: cfg.Services.Cache,
		},
		Logger: logger,
	})

	server := &http.Server{
		Addr:              cfg.Config.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Config.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.Config.HTTP.ReadTimeout,
		WriteTimeout:      cfg.Config.HTTP.WriteTimeout,
		IdleTimeout:       cfg.Config.HTTP.IdleTimeout,
	}

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
}

// dbPinger adapts *sql.DB to the health checker contract.
type dbPinger struct {
	db *sql.DB
}

func (p dbPinger) PingContext(ctx context.Context) error {
	if p.db == nil {
		return errors.New("database not configured")
	}
	return p.db.PingContext(ctx)
}
