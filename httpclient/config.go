package httpclient

import (
	"fmt"
	"time"

	"github.com/vidscribe/vidscribe/resilience"
	"github.com/vidscribe/vidscribe/security"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "vidscribe/1.0"
)

// Config configures the HTTP client.
type Config struct {
	// Timeout bounds each request. For streamed requests it bounds the time
	// to response headers only; the body is bounded by the caller's context.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent on every request.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// TLS configures outbound TLS. Nil uses the system roots.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Retry configures retry behavior. Nil disables retry.
	Retry *resilience.RetryConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	return c.TLS.Validate()
}

// DefaultRetryConfig returns a retry config that only retries errors the
// client classifies as transient.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = IsRetryable
	return &cfg
}
