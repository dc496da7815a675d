// Package cli holds the budgetbuddy command tree and the startup helpers
// shared by cmd/budgetbuddy-server and cmd/activity-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetbuddy/internal/config"
	"budgetbuddy/internal/log"
)

// SetupLogger installs a text logger on stdout at the LOG_LEVEL level.
func SetupLogger(component string) *log.Logger {
	return log.Setup(os.Stdout, os.Getenv("LOG_LEVEL"), component)
}

// LoadEnvFile loads .env for local development. A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads the service configuration and exits the process
// when validate rejects it.
func LoadAndValidateConfig(logger *log.Logger, validate func(*config.Config) error) *config.Config {
	cfg := config.Load()
	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// LoadCatalogs reads the catalog file named by cfg, exiting on failure.
func LoadCatalogs(logger *log.Logger, cfg *config.Config) config.Catalogs {
	cats, err := config.LoadCatalogs(cfg.CatalogFile)
	if err != nil {
		logger.Error("Failed to load catalogs", "error", err, "path", cfg.CatalogFile)
		os.Exit(1)
	}
	logger.Info("Catalogs loaded",
		"categories", cats.Categories.Len(),
		"sources", cats.Sources.Len(),
		"path", cfg.CatalogFile)
	return cats
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM, after
// cleanup has run, and a channel closed once shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
		cancel()
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and shutdown finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
