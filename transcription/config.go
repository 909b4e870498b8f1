package transcription

import (
	"fmt"
	"time"

	"github.com/vidscribe/vidscribe/security"
)

// Backend names.
const (
	BackendWhisper    = "whisper"
	BackendWhisperCLI = "whisper-cli"
)

// Default configuration values.
const (
	DefaultBackend       = BackendWhisper
	DefaultModel         = "medium"
	DefaultLanguage      = "vi"
	DefaultTimeout       = 30 * time.Minute
	DefaultMaxConcurrent = 1
	DefaultMaxWait       = 2 * time.Minute
)

// Config is the transcription section of the application config.
type Config struct {
	// Backend selects the registered provider ("whisper" or "whisper-cli").
	Backend string `yaml:"backend" mapstructure:"backend"`
	// Model is the model size passed to the backend.
	Model string `yaml:"model" mapstructure:"model"`
	// DefaultLanguage is used when a request omits the language hint.
	DefaultLanguage string `yaml:"default_language" mapstructure:"default_language"`
	// Timeout bounds each model call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MaxConcurrent is the number of model calls allowed in flight.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	// MaxWait is how long a request may queue for a free model slot.
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait"`

	// URL is the sidecar base URL for the whisper backend.
	URL string `yaml:"url" mapstructure:"url"`
	// Binary is the executable for the whisper-cli backend.
	Binary string `yaml:"binary" mapstructure:"binary"`
	// Device is passed through to the backend ("cpu", "cuda").
	Device string `yaml:"device" mapstructure:"device"`
	// TLS secures calls to an https sidecar URL.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = DefaultLanguage
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.MaxWait <= 0 {
		c.MaxWait = DefaultMaxWait
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendWhisper, BackendWhisperCLI:
	default:
		return fmt.Errorf("transcription: unsupported backend %q", c.Backend)
	}
	if c.Model == "" {
		return fmt.Errorf("transcription: model is required")
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("transcription: %w", err)
	}
	return nil
}

// ProviderConfig returns the generic map consumed by backend factories.
func (c *Config) ProviderConfig() map[string]any {
	m := map[string]any{
		"model":   c.Model,
		"timeout": c.Timeout,
	}
	if c.URL != "" {
		m["url"] = c.URL
	}
	if c.Binary != "" {
		m["binary"] = c.Binary
	}
	if c.Device != "" {
		m["device"] = c.Device
	}
	if c.TLS.IsEnabled() {
		tls := c.TLS
		m["tls"] = &tls
	}
	return m
}
