package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/vidscribe/vidscribe/component"
	"github.com/vidscribe/vidscribe/logger"
)

// Component wraps Storage and implements component.Component for lifecycle management.
type Component struct {
	cfg     Config
	log     *logger.Logger
	mu      sync.RWMutex
	storage Storage
}

// NewComponent creates a storage component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log.WithComponent("storage"),
	}
}

// ensure Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Storage returns the underlying Storage, or nil if not started.
func (c *Component) Storage() Storage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.storage
}

// Name returns the component name.
func (c *Component) Name() string { return "working-storage" }

// Start initializes the storage backend, creating the working directory.
func (c *Component) Start(_ context.Context) error {
	s, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.mu.Lock()
	c.storage = s
	c.mu.Unlock()
	return nil
}

// Stop releases the backend. Files in the working directory are left as is.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	c.storage = nil
	c.mu.Unlock()
	return nil
}

// Health reports whether the working directory is writable.
func (c *Component) Health(ctx context.Context) component.Health {
	s := c.Storage()
	if s == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "storage not initialized",
		}
	}

	if p, ok := s.(Prober); ok {
		if err := p.Probe(ctx); err != nil {
			return component.Health{
				Name:    c.Name(),
				Status:  component.StatusUnhealthy,
				Message: fmt.Sprintf("health probe failed: %v", err),
			}
		}
	}

	return component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
	}
}

// Describe returns summary info for the startup log.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Working storage",
		Type:    "storage",
		Details: fmt.Sprintf("provider=%s base_path=%s", c.cfg.Provider, c.cfg.BasePath),
	}
}
