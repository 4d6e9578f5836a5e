package backend

import (
	"context"
	"fmt"
	"log/slog"

	"kasboek/internal/ledger/bunq"
	"kasboek/internal/ledger/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(_ context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case BunqBackend:
		return f.createBunqSource(config)
	case MemoryBackend:
		return f.createMemorySource()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createBunqSource(config Config) (*Result, error) {
	client := bunq.NewClient(config.BunqBaseURL, config.BunqAPIKey)

	f.logger.Info("Initialized bunq ledger backend", "base_url", config.BunqBaseURL)

	return &Result{
		Source:  client,
		Cleanup: nil, // plain HTTP client, nothing to release
	}, nil
}

func (f *DefaultFactory) createMemorySource() (*Result, error) {
	store := memory.Seed()

	f.logger.Info("Initialized memory ledger backend")

	return &Result{
		Source:  store,
		Cleanup: nil,
	}, nil
}
