package main

import (
	"fmt"

	"github.com/vidscribe/vidscribe/api"
	"github.com/vidscribe/vidscribe/config"
	"github.com/vidscribe/vidscribe/media"
	"github.com/vidscribe/vidscribe/observability"
	"github.com/vidscribe/vidscribe/server"
	"github.com/vidscribe/vidscribe/storage"
	"github.com/vidscribe/vidscribe/transcription"
	"github.com/vidscribe/vidscribe/upload"
)

// AppConfig is the full vidscribe configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Fetch         media.Config         `yaml:"fetch" mapstructure:"fetch"`
	Upload        upload.Config        `yaml:"upload" mapstructure:"upload"`
	Transcription transcription.Config `yaml:"transcription" mapstructure:"transcription"`
	API           api.Config           `yaml:"api" mapstructure:"api"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills in every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Fetch.ApplyDefaults()
	c.Upload.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Fetch.Validate(); err != nil {
		return err
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("upload.allowed_extensions must not be empty")
	}
	if err := c.Transcription.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}
