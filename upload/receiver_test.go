package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	apperrors "github.com/vidscribe/vidscribe/errors"
	"github.com/vidscribe/vidscribe/logger"
	"github.com/vidscribe/vidscribe/storage"
	"github.com/vidscribe/vidscribe/storage/local"
)

type staticSource struct{ s storage.Storage }

func (s staticSource) Storage() storage.Storage { return s.s }

// failingDelete wraps a storage and fails every Delete.
type failingDelete struct{ storage.Storage }

func (failingDelete) Delete(context.Context, string) error { return errors.New("permission denied") }

func newReceiver(t *testing.T) (*Receiver, *local.Storage) {
	t.Helper()
	s, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewReceiver(staticSource{s}, Config{}, logger.NewNop(), nil), s
}

func TestReceive_AllowedExtensions(t *testing.T) {
	r, s := newReceiver(t)
	for _, name := range []string{"a.mp4", "b.mov", "c.avi", "d.mkv", "lesson 1.mp4"} {
		f, err := r.Receive(context.Background(), name, strings.NewReader("data"))
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
			continue
		}
		if f.Path != filepath.Join(s.BasePath(), name) || f.Size != 4 {
			t.Errorf("%s: unexpected file %+v", name, f)
		}
	}
}

func TestReceive_RejectsInvalidFormat(t *testing.T) {
	r, s := newReceiver(t)
	for _, name := range []string{"clip.txt", "clip.MP4", "clip", "", "../clip.mp4", "dir/clip.mp4", "/tmp/clip.mp4", `..\clip.mp4`} {
		_, err := r.Receive(context.Background(), name, strings.NewReader("data"))
		appErr, ok := apperrors.AsAppError(err)
		if !ok || appErr.Code != apperrors.ErrCodeInvalidFormat {
			t.Errorf("%q: expected INVALID_FORMAT, got %v", name, err)
			continue
		}
		if appErr.Message != "Invalid file format" || appErr.HTTPStatus != http.StatusBadRequest {
			t.Errorf("%q: unexpected error %+v", name, appErr)
		}
	}
	entries, _ := os.ReadDir(s.BasePath())
	if len(entries) != 0 {
		t.Errorf("expected nothing written, found %d entries", len(entries))
	}
}

func TestReceive_OverwritesOnCollision(t *testing.T) {
	r, _ := newReceiver(t)
	ctx := context.Background()
	if _, err := r.Receive(ctx, "clip.mp4", strings.NewReader("first")); err != nil {
		t.Fatal(err)
	}
	f, err := r.Receive(ctx, "clip.mp4", strings.NewReader("second"))
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(f.Path)
	if string(data) != "second" {
		t.Errorf("expected overwrite, got %q", data)
	}
}

func TestReceive_CustomExtensions(t *testing.T) {
	s, _ := local.NewStorage(t.TempDir())
	r := NewReceiver(staticSource{s}, Config{AllowedExtensions: []string{".webm"}}, logger.NewNop(), nil)
	if _, err := r.Receive(context.Background(), "a.webm", strings.NewReader("x")); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if _, err := r.Receive(context.Background(), "a.mp4", strings.NewReader("x")); !apperrors.HasCode(err, apperrors.ErrCodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}

func TestReceiveGenerated_UsesUUIDName(t *testing.T) {
	r, _ := newReceiver(t)
	f, err := r.ReceiveGenerated(context.Background(), strings.NewReader("payload"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(f.Name); err != nil {
		t.Errorf("expected UUID name, got %q", f.Name)
	}
	other, _ := r.ReceiveGenerated(context.Background(), strings.NewReader("payload"))
	if other.Name == f.Name {
		t.Error("expected distinct generated names")
	}
}

func TestRemove(t *testing.T) {
	r, _ := newReceiver(t)
	f, err := r.Receive(context.Background(), "clip.mp4", strings.NewReader("data"))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Remove(context.Background(), f); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(f.Path); !os.IsNotExist(err) {
		t.Errorf("expected file removed, stat err=%v", err)
	}
}

func TestRemove_FailureIsCleanupError(t *testing.T) {
	s, _ := local.NewStorage(t.TempDir())
	r := NewReceiver(staticSource{failingDelete{s}}, Config{}, logger.NewNop(), nil)
	f, err := r.Receive(context.Background(), "clip.mp4", strings.NewReader("data"))
	if err != nil {
		t.Fatal(err)
	}
	err = r.Remove(context.Background(), f)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeCleanupFailed {
		t.Fatalf("expected CLEANUP_FAILED, got %v", err)
	}
	if appErr.Message != "Failed to delete file: permission denied" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestReceive_StorageNotStarted(t *testing.T) {
	r := NewReceiver(staticSource{}, Config{}, logger.NewNop(), nil)
	_, err := r.Receive(context.Background(), "clip.mp4", io.LimitReader(strings.NewReader("x"), 1))
	if !apperrors.HasCode(err, apperrors.ErrCodeServiceUnavailable) {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
}
