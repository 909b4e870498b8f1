package media

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout     = 10 * time.Minute
	DefaultMaxAttempts = 3
	DefaultMaxPageSize = int64(10 << 20)
)

// Config is the fetch section of the application config.
type Config struct {
	// Timeout bounds the whole download, page and media included.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MaxAttempts bounds retries of transient failures (connection, 5xx, 429).
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
	// MaxPageSize caps how much of an HTML page is parsed.
	MaxPageSize int64 `yaml:"max_page_size" mapstructure:"max_page_size"`
	// UserAgent overrides the default client user agent.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = DefaultMaxPageSize
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("media: timeout must be positive")
	}
	return nil
}
