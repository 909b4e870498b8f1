package transcription

import (
	"context"
	"fmt"

	"github.com/vidscribe/vidscribe/component"
	"github.com/vidscribe/vidscribe/logger"
)

// Component exposes the transcription backend to the lifecycle registry.
// The backend is an external process or sidecar, so an unavailable backend
// at startup is logged rather than treated as fatal.
type Component struct {
	adapter *Adapter
	cfg     Config
	log     *logger.Logger
}

// NewComponent creates the transcriber component.
func NewComponent(adapter *Adapter, cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{adapter: adapter, cfg: cfg, log: log.WithComponent("transcription")}
}

var _ component.Component = (*Component)(nil)

// Name returns the component name.
func (c *Component) Name() string { return "transcriber" }

// Start probes the backend once.
func (c *Component) Start(ctx context.Context) error {
	if !c.adapter.Provider().IsAvailable(ctx) {
		c.log.Warn("transcription backend not reachable at startup", logger.Fields("backend", c.cfg.Backend))
	}
	return nil
}

// Stop is a no-op; the backend is owned by the process.
func (c *Component) Stop(_ context.Context) error { return nil }

// Health reports backend availability.
func (c *Component) Health(ctx context.Context) component.Health {
	if !c.adapter.Provider().IsAvailable(ctx) {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("backend %s unavailable", c.cfg.Backend),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns summary info for the startup log.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Transcriber",
		Type:    "transcriber",
		Details: fmt.Sprintf("%s model=%s max_concurrent=%d", c.cfg.Backend, c.cfg.Model, c.cfg.MaxConcurrent),
	}
}
