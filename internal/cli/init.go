// Package cli provides common initialization shared by cmd/finboard,
// cmd/finboard-worker and cmd/finboard-report.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finboard/internal/config"
	"finboard/internal/log"
	"finboard/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// A missing file is ignored, since production passes real environment variables.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// Bootstrap loads .env and the configuration, validates it, and installs the
// process logger for component.
func Bootstrap(component string) (*config.Config, *log.Logger, error) {
	LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	logger := log.Setup(cfg.LogLevel, cfg.LogFormat, component)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		return nil, nil, err
	}
	return cfg, logger, nil
}

// OpenSQLite opens the repository and applies pending migrations.
func OpenSQLite(logger *log.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		return nil, err
	}
	return repo, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// Shutdown runs fn with a fresh deadline, independent of the cancelled
// run context.
func Shutdown(logger *log.Logger, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := fn(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("Shutdown timeout reached", "timeout", timeout)
	}
	return err
}

// IgnoreCanceled maps context cancellation to a clean exit.
func IgnoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
