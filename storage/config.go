package storage

import (
	"errors"
	"fmt"
)

// ProviderLocal is the local filesystem backend.
const ProviderLocal = "local"

// Default configuration values.
const (
	DefaultProvider = ProviderLocal
	DefaultBasePath = "uploads"
)

// Config holds working storage configuration.
type Config struct {
	// Provider selects the storage backend.
	Provider string `mapstructure:"provider" json:"provider"`

	// BasePath is the working directory, created on startup if absent.
	BasePath string `mapstructure:"base_path" json:"base_path"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderLocal:
		if c.BasePath == "" {
			return errors.New("storage: base_path is required for local provider")
		}
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	return nil
}
