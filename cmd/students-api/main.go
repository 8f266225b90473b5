// main is the entry point of the Students API application.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file (plus .env and env overrides)
//  2. Initialise the logger
//  3. Open the configured storage backend (SQLite or PostgreSQL)
//  4. Build the router
//  5. Start the HTTP server in a separate goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, close storage, exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/students-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/students-api
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/http/router"
	"github.com/aanand-mishra/students-api/internal/logger"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/storage/postgres"
	"github.com/aanand-mishra/students-api/internal/storage/sqlite"
)

func main() {
	cfg := config.MustLoad()

	log := logger.Setup(cfg.Env, cfg.LogLevel)
	log.Info().
		Str("env", cfg.Env).
		Str("version", "1.0.0").
		Msg("starting students-api")

	store, err := openStorage(context.Background(), cfg.Storage)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialise storage")
		os.Exit(1)
	}
	defer store.Close()

	log.Info().Str("driver", cfg.Storage.Driver).Msg("storage initialised")

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      router.New(store, log),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ListenAndServe blocks, so it runs in its own goroutine and reports
	// a startup failure back on serverErr.
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.HTTPServer.Addr).Msg("server started")

		// http.ErrServerClosed is the expected result of Shutdown().
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		log.Info().Msg("shutdown signal received, stopping server...")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server encountered an error")
		store.Close()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server gracefully")
		return
	}

	log.Info().Msg("server stopped gracefully")
}

// openStorage returns the backend selected by cfg.Driver.
func openStorage(ctx context.Context, cfg config.Storage) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.Path)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DSN)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
