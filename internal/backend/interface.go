// Package backend selects and constructs the ledger source the commands
// read from.
package backend

import (
	"context"

	"kasboek/internal/ledger"
)

// CleanupFunc represents a cleanup function for backend resources
type CleanupFunc func() error

// Result contains the ledger source and optional cleanup function
type Result struct {
	Source  ledger.Source
	Cleanup CleanupFunc
}

// Factory creates ledger sources based on configuration
type Factory interface {
	// CreateSource creates a ledger source based on the provided config
	CreateSource(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for source creation
type Config struct {
	// Backend type
	Type BackendType

	// bunq specific
	BunqAPIKey  string
	BunqBaseURL string
}

// BackendType represents the type of ledger backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	BunqBackend   BackendType = "bunq"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, BunqBackend:
		return true
	default:
		return false
	}
}
