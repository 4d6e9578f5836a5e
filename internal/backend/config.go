package backend

import (
	"fmt"

	"kasboek/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.LedgerBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.LedgerBackend)
	}

	return Config{
		Type:        backendType,
		BunqAPIKey:  appConfig.BunqAPIKey,
		BunqBaseURL: appConfig.BunqBaseURL,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case BunqBackend:
		if c.BunqAPIKey == "" {
			return fmt.Errorf("bunq API key is required for bunq backend")
		}
		if c.BunqBaseURL == "" {
			return fmt.Errorf("bunq base URL is required for bunq backend")
		}
	case MemoryBackend:
		// Memory backend seeds itself and needs no further configuration
	}

	return nil
}

// BackendTypes returns all valid backend types
func BackendTypes() []BackendType {
	return []BackendType{MemoryBackend, BunqBackend}
}
