package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidName is returned when an object name would escape the working
// directory or is otherwise unusable as a single file name.
var ErrInvalidName = errors.New("storage: invalid object name")

// FileInfo describes a stored object.
type FileInfo struct {
	// Name is the object name relative to the working directory.
	Name string
	// Path is the absolute filesystem path handed to the transcriber.
	Path string
	// Size is the number of bytes written.
	Size int64
}

// Storage is the working directory abstraction.
type Storage interface {
	// Upload writes the reader to name, replacing any existing object.
	Upload(ctx context.Context, name string, reader io.Reader) (FileInfo, error)

	// Delete removes the object. Returns nil if the object does not exist.
	Delete(ctx context.Context, name string) error

	// Exists checks whether an object exists.
	Exists(ctx context.Context, name string) (bool, error)

	// Path returns the absolute location of name without touching the disk.
	Path(name string) string
}

// Prober is optionally implemented by backends that can verify they are
// writable.
type Prober interface {
	Probe(ctx context.Context) error
}
