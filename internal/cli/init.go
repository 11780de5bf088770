// Package cli holds the startup steps shared by cmd/gastos and cmd/gastos-worker.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gastos/internal/config"
	"gastos/internal/log"
	"gastos/internal/storage"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from cfg and makes it the default.
func SetupLogger(cfg *config.Config, component string, out io.Writer) *log.Logger {
	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	logCfg.Format = cfg.LogFormat
	logCfg.Component = component
	if out != nil {
		logCfg.Output = out
	}
	logger := log.New(logCfg)
	log.SetDefault(logger)
	return logger
}

// Bootstrap loads .env and the configuration, then sets up logging.
// It exits the process when the configuration is invalid.
func Bootstrap(component string) (*config.Config, *log.Logger) {
	LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg, component, nil)
	if err := ValidateConfig(cfg, logger); err != nil {
		os.Exit(1)
	}
	return cfg, logger
}

// ValidateConfig validates cfg and logs the failure.
func ValidateConfig(cfg *config.Config, logger *log.Logger) error {
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldOperation, log.OpValidate,
			log.FieldError, err)
		return err
	}
	return nil
}

// InitSQLite opens the SQLite repository or exits the process.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath, logger)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// ShutdownOnDone waits for ctx to end, then calls stop with a fresh context
// bounded by timeout.
func ShutdownOnDone(ctx context.Context, logger *log.Logger, timeout time.Duration, stop func(context.Context) error) error {
	<-ctx.Done()
	logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := stop(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", log.FieldOperation, log.OpShutdown, log.FieldError, err)
		return err
	}
	return nil
}
