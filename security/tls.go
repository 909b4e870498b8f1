package security

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// TLSConfig holds certificate paths and verification settings.
type TLSConfig struct {
	// SkipVerify disables peer certificate verification on outbound calls.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`
	// CAFile verifies the peer: the server for outbound calls, clients for
	// the listener (mutual TLS).
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`
	// CertFile and KeyFile are the local certificate pair.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"`
	// ServerName overrides the name verified on outbound calls.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`
	// MinVersion defaults to TLS 1.2.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`
}

// Validate checks that the certificate pair is complete.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return errors.New("security/tls: cert_file and key_file must be set together")
	}
	return nil
}

// IsEnabled reports whether any outbound TLS setting is present.
func (c *TLSConfig) IsEnabled() bool {
	if c == nil {
		return false
	}
	return c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.ServerName != ""
}

// HasCertificate reports whether a local certificate pair is configured,
// which is what the listener needs to serve HTTPS.
func (c *TLSConfig) HasCertificate() bool {
	return c != nil && c.CertFile != "" && c.KeyFile != ""
}

// Client returns the configuration for outbound connections, or nil when
// nothing is configured and the transport defaults apply.
func (c *TLSConfig) Client() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}
	cfg := c.base()
	cfg.InsecureSkipVerify = c.SkipVerify
	cfg.ServerName = c.ServerName

	if c.CAFile != "" {
		pool, err := loadPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	if err := c.loadCertificate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Server returns the listener configuration. A CA file turns on client
// certificate verification.
func (c *TLSConfig) Server() (*tls.Config, error) {
	if !c.HasCertificate() {
		return nil, errors.New("security/tls: server requires cert_file and key_file")
	}
	cfg := c.base()
	if err := c.loadCertificate(cfg); err != nil {
		return nil, err
	}
	if c.CAFile != "" {
		pool, err := loadPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return cfg, nil
}

func (c *TLSConfig) base() *tls.Config {
	minVersion := c.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}
	return &tls.Config{MinVersion: minVersion}
}

func (c *TLSConfig) loadCertificate(cfg *tls.Config) error {
	if !c.HasCertificate() {
		return nil
	}
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return fmt.Errorf("security/tls: load certificate: %w", err)
	}
	cfg.Certificates = []tls.Certificate{cert}
	return nil
}

func loadPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("security/tls: read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("security/tls: no certificates in %s", path)
	}
	return pool, nil
}
