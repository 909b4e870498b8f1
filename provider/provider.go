package provider

import (
	"context"
	"errors"
)

// ErrNotRegistered is returned for a name with no registered factory.
var ErrNotRegistered = errors.New("provider: factory not registered")

// Provider is a named backend that can report readiness.
type Provider interface {
	Name() string
	// IsAvailable reports whether the backend can take work right now.
	// Implementations keep it cheap: it backs health checks.
	IsAvailable(ctx context.Context) bool
}

// Factory builds a provider from a generic settings map. Keys are backend
// specific; unknown keys are ignored.
type Factory[T Provider] func(cfg map[string]any) (T, error)
