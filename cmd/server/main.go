/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the panel estimator server: the scheduling board,
  the pricing API and the background conflict auditor.

STARTUP SEQUENCE:
  1. Load configuration (ESTIMATOR_CONFIG yaml + env), apply flag overrides
  2. Set up the slog logger for the environment
  3. Initialize SQLite store
  4. Optionally load a demo scenario
  5. Run HTTP server and conflict auditor under one errgroup

COMMAND-LINE FLAGS:
  -addr      HTTP listen address (overrides http_server.address)
  -db        SQLite database path (overrides storage_path)
             Use ":memory:" for in-memory database
  -scenario  Demo scenario to load at startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the auditor
  2. Stop accepting new connections
  3. Wait for active requests to complete (shutdown_grace, default 30s)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/estimator.db"

  # Demo board in memory
  ./server -db=":memory:" -scenario=full-demo

SEE ALSO:
  - config/config.go: Configuration
  - api/server.go: Router configuration
  - api/auditor.go: Conflict auditor
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/warp/panel-estimator/api"
	"github.com/warp/panel-estimator/config"
	"github.com/warp/panel-estimator/store/sqlite"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.MustLoad()

	flag.StringVar(&cfg.Address, "addr", cfg.Address, "HTTP listen address")
	flag.StringVar(&cfg.StoragePath, "db", cfg.StoragePath, "SQLite database path")
	flag.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "demo scenario to load at startup")
	flag.Parse()

	log := setupLogger(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("server stopped")
}

// run serves until the context is cancelled or a component fails. Everything
// it opens is closed before it returns.
func run(cfg *config.Config, log *slog.Logger) error {
	store, err := sqlite.New(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database %s: %w", cfg.StoragePath, err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := api.NewHandler(store, log)
	if cfg.Scenario != "" {
		if err := handler.Load(ctx, cfg.Scenario); err != nil {
			return fmt.Errorf("failed to load scenario %s: %w", cfg.Scenario, err)
		}
	}

	auditor := api.NewConflictAuditor(store, log)
	auditor.Enabled = cfg.Auditor.Enabled()
	auditor.Interval = cfg.Auditor.Interval

	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      api.NewRouter(handler, cfg.AllowedOrigins),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return auditor.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownGrace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func setupLogger(env string) *slog.Logger {
	var handler slog.Handler
	switch env {
	case config.EnvProd:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	case config.EnvDev:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(handler)
}
