// Package local implements storage.Storage on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vidscribe/vidscribe/logger"
	"github.com/vidscribe/vidscribe/storage"
	"github.com/vidscribe/vidscribe/util"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(cfg storage.Config, _ *logger.Logger) (storage.Storage, error) {
		return NewStorage(cfg.BasePath)
	})
}

// Storage implements storage.Storage using the local filesystem.
type Storage struct {
	basePath string
}

// NewStorage creates the working directory if needed and returns a storage
// rooted at it.
func NewStorage(basePath string) (*Storage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	return &Storage{basePath: abs}, nil
}

// BasePath returns the absolute working directory.
func (s *Storage) BasePath() string { return s.basePath }

// Path returns the absolute path for name.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.basePath, name)
}

// Upload streams reader into name, truncating any existing file. A partial
// file is removed if the copy fails.
func (s *Storage) Upload(ctx context.Context, name string, reader io.Reader) (storage.FileInfo, error) {
	if !util.IsSafeFilename(name) {
		return storage.FileInfo{}, fmt.Errorf("%w: %q", storage.ErrInvalidName, name)
	}
	fullPath := s.Path(name)

	f, err := os.Create(fullPath)
	if err != nil {
		return storage.FileInfo{}, fmt.Errorf("storage: create file: %w", err)
	}

	n, copyErr := io.Copy(f, &contextReader{ctx: ctx, r: reader})
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(fullPath)
		return storage.FileInfo{}, fmt.Errorf("storage: write file: %w", copyErr)
	}

	return storage.FileInfo{Name: name, Path: fullPath, Size: n}, nil
}

// Delete removes a local file. Returns nil if the file does not exist.
func (s *Storage) Delete(_ context.Context, name string) error {
	if !util.IsSafeFilename(name) {
		return fmt.Errorf("%w: %q", storage.ErrInvalidName, name)
	}
	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

// Exists checks whether a local file exists.
func (s *Storage) Exists(_ context.Context, name string) (bool, error) {
	if !util.IsSafeFilename(name) {
		return false, fmt.Errorf("%w: %q", storage.ErrInvalidName, name)
	}
	_, err := os.Stat(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat file: %w", err)
	}
	return true, nil
}

// Probe writes and removes a scratch file in the working directory.
func (s *Storage) Probe(_ context.Context) error {
	f, err := os.CreateTemp(s.basePath, ".probe-*")
	if err != nil {
		return fmt.Errorf("storage: working directory not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// contextReader stops a copy once the request context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// compile-time checks
var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Prober  = (*Storage)(nil)
)
