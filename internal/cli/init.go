// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/kasboek and cmd/kasboek-worker.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"kasboek/internal/backend"
	"kasboek/internal/config"
	"kasboek/internal/ledger"
	"kasboek/internal/storage"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitLedgerSource builds the configured ledger source.
// Returns the source or exits the process on failure.
func InitLedgerSource(ctx context.Context, logger *slog.Logger, cfg *config.Config) (ledger.Source, backend.CleanupFunc) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid ledger backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateSource(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize ledger backend", "error", err, "backend", cfg.LedgerBackend)
		os.Exit(1)
	}
	return result.Source, result.Cleanup
}

// InitArchive initializes the snapshot archive at the given path.
// Returns the repository or exits the process on failure.
func InitArchive(logger *slog.Logger, dbPath string) *storage.SQLiteRepository {
	archive, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize snapshot archive", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return archive
}
