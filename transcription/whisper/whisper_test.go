package whisper

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/vidscribe/vidscribe/transcription"
)

func TestTranscribe_PostsMultipartAndParsesSegments(t *testing.T) {
	var got struct {
		model, language, computeType, filename string
		payload                                string
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		got.model = r.FormValue("model")
		got.language = r.FormValue("language")
		got.computeType = r.FormValue("compute_type")
		file, header, err := r.FormFile("audio")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		got.filename = header.Filename
		got.payload = string(data)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"text":     "xin chao cac ban",
			"language": "vi",
			"segments": []map[string]any{
				{"start": 0.0, "end": 1.2, "text": " xin chao"},
				{"start": 1.2, "end": 2.0, "text": " cac ban"},
			},
		})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("fake video bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := NewProvider(Config{URL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Transcribe(context.Background(), transcription.TranscriptionRequest{
		AudioPath: path,
		Language:  "vi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Segments) != 2 || resp.Segments[1].Start != 1.2 {
		t.Errorf("unexpected segments %+v", resp.Segments)
	}
	if got.model != "medium" || got.language != "vi" || got.computeType != "float32" {
		t.Errorf("unexpected form fields %+v", got)
	}
	if got.filename != "clip.mp4" || got.payload != "fake video bytes" {
		t.Errorf("unexpected file part %q %q", got.filename, got.payload)
	}
}

func TestTranscribe_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "clip.mp4")
	_ = os.WriteFile(path, []byte("x"), 0o600)

	p, _ := NewProvider(Config{URL: srv.URL})
	if _, err := p.Transcribe(context.Background(), transcription.TranscriptionRequest{AudioPath: path}); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestTranscribe_MissingFile(t *testing.T) {
	p, _ := NewProvider(Config{URL: "http://127.0.0.1:1"})
	_, err := p.Transcribe(context.Background(), transcription.TranscriptionRequest{AudioPath: "/nonexistent/clip.mp4"})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p, _ := NewProvider(Config{URL: srv.URL + "/"})
	if !p.IsAvailable(context.Background()) {
		t.Error("expected sidecar to be available")
	}

	srv.Close()
	if p.IsAvailable(context.Background()) {
		t.Error("expected closed sidecar to be unavailable")
	}
}

func TestFactory(t *testing.T) {
	p, err := Factory()(map[string]any{"url": "http://whisper:9000", "model": "large-v3"})
	if err != nil {
		t.Fatal(err)
	}
	wp := p.(*Provider)
	if wp.cfg.URL != "http://whisper:9000" || wp.cfg.Model != "large-v3" {
		t.Errorf("unexpected config %+v", wp.cfg)
	}
	if p.Name() != "whisper" {
		t.Errorf("unexpected name %s", p.Name())
	}
}
