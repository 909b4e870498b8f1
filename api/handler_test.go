package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/vidscribe/vidscribe/errors"
	"github.com/vidscribe/vidscribe/logger"
	"github.com/vidscribe/vidscribe/media"
	"github.com/vidscribe/vidscribe/storage"
	"github.com/vidscribe/vidscribe/storage/local"
	"github.com/vidscribe/vidscribe/transcription"
	"github.com/vidscribe/vidscribe/upload"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type storageSource struct{ s storage.Storage }

func (s storageSource) Storage() storage.Storage { return s.s }

// failingDelete wraps a storage whose Delete always fails.
type failingDelete struct {
	storage.Storage
}

func (f failingDelete) Delete(context.Context, string) error {
	return errors.New("permission denied")
}

type fakeTranscriber struct {
	mu        sync.Mutex
	err       error
	segments  []transcription.TranscriptSegment
	paths     []string
	languages []string
	sizes     []int64
}

func (f *fakeTranscriber) Transcribe(_ context.Context, path, language string) ([]transcription.TranscriptSegment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	f.languages = append(f.languages, language)
	if info, err := os.Stat(path); err == nil {
		f.sizes = append(f.sizes, info.Size())
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.segments, nil
}

func sampleSegments() []transcription.TranscriptSegment {
	return transcription.ToTranscript([]transcription.Segment{
		{Start: 0, End: 2.5, Text: " xin chào "},
		{Start: 2.5, End: 5, Text: "thế giới"},
	})
}

type harness struct {
	router      *gin.Engine
	dir         string
	transcriber *fakeTranscriber
}

func newHarness(t *testing.T, cfg Config, wrap func(storage.Storage) storage.Storage) *harness {
	t.Helper()
	dir := t.TempDir()
	s, err := local.NewStorage(dir)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	var st storage.Storage = s
	if wrap != nil {
		st = wrap(st)
	}

	fetcher, err := media.NewFetcher(media.Config{MaxAttempts: 1}, logger.NewNop())
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	receiver := upload.NewReceiver(storageSource{s: st}, upload.Config{}, logger.NewNop(), nil)
	tr := &fakeTranscriber{segments: sampleSegments()}

	r := gin.New()
	NewHandler(fetcher, receiver, tr, cfg, logger.NewNop()).Register(r)
	return &harness{router: r, dir: dir, transcriber: tr}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) assertEmptyDir(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("working directory not empty: %d entries", len(entries))
	}
}

func videoServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/clip.mp4", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(bytes.Repeat([]byte{0x42}, 4096))
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, `<html><body><video controls><source src="/clip.mp4"></video></body></html>`)
	})
	mux.HandleFunc("/truncated", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Length", "1048576")
		_, _ = w.Write(bytes.Repeat([]byte{0x42}, 1000))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<html><body><p>nothing here</p></body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func transcribeRequest(videoURL string, extra string) *http.Request {
	target := "/transcribe/"
	if videoURL != "" {
		target += "?video_url=" + videoURL + extra
	}
	return httptest.NewRequest(http.MethodPost, target, nil)
}

func uploadRequest(t *testing.T, filename string, content []byte, query string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
		h.Set("Content-Type", "application/octet-stream")
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		_, _ = part.Write(content)
	} else {
		_ = mw.WriteField("note", "no file")
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-video/"+query, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

type detailBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func assertSegments(t *testing.T, got []transcription.TranscriptSegment) {
	t.Helper()
	if len(got) != 2 {
		t.Fatalf("segments = %d, want 2", len(got))
	}
	for i, s := range got {
		if s.Stt != i+1 {
			t.Errorf("segment %d stt = %d", i, s.Stt)
		}
	}
	if got[0].StartTime != "0:00:00" || got[0].EndTime != "0:00:02.500000" || got[0].Text != "xin chào" {
		t.Errorf("first segment = %+v", got[0])
	}
}

func TestTranscribe_DirectMedia(t *testing.T) {
	srv := videoServer(t)
	h := newHarness(t, Config{}, nil)

	w := h.do(transcribeRequest(srv.URL+"/clip.mp4", "&language=en"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decode[TranscribeResponse](t, w)
	assertSegments(t, resp.Transcription)
	if resp.Warning != "" {
		t.Errorf("unexpected warning %q", resp.Warning)
	}
	if got := h.transcriber.languages[0]; got != "en" {
		t.Errorf("language = %q, want en", got)
	}
	if got := h.transcriber.sizes[0]; got != 4096 {
		t.Errorf("stored size = %d, want 4096", got)
	}
	if filepath.Dir(h.transcriber.paths[0]) != h.dir {
		t.Errorf("file stored outside working dir: %s", h.transcriber.paths[0])
	}
	h.assertEmptyDir(t)
}

func TestTranscribe_TrimsQueryValues(t *testing.T) {
	srv := videoServer(t)
	h := newHarness(t, Config{}, nil)

	w := h.do(transcribeRequest("%20"+srv.URL+"/clip.mp4%20", "&language=%20en%0A"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := h.transcriber.languages[0]; got != "en" {
		t.Errorf("language = %q, want en", got)
	}
}

func TestTranscribe_HTMLPage(t *testing.T) {
	srv := videoServer(t)
	h := newHarness(t, Config{}, nil)

	w := h.do(transcribeRequest(srv.URL+"/page", ""))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := h.transcriber.sizes[0]; got != 4096 {
		t.Errorf("stored size = %d, want 4096", got)
	}
	if got := h.transcriber.languages[0]; got != "" {
		t.Errorf("language = %q, want empty so the adapter default applies", got)
	}
	h.assertEmptyDir(t)
}

func TestTranscribe_NoVideoOnPage(t *testing.T) {
	srv := videoServer(t)
	h := newHarness(t, Config{}, nil)

	w := h.do(transcribeRequest(srv.URL+"/empty", ""))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode[detailBody](t, w).Detail; got != "No video found at the specified URL" {
		t.Errorf("detail = %q", got)
	}
	if len(h.transcriber.paths) != 0 {
		t.Error("transcriber must not run")
	}
	h.assertEmptyDir(t)
}

func TestTranscribe_NotFound(t *testing.T) {
	srv := videoServer(t)
	h := newHarness(t, Config{}, nil)

	w := h.do(transcribeRequest(srv.URL+"/missing.mp4", ""))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	detail := decode[detailBody](t, w).Detail
	if !strings.HasPrefix(detail, "Error downloading video: 404") {
		t.Errorf("detail = %q", detail)
	}
	h.assertEmptyDir(t)
}

func TestTranscribe_TruncatedDownload(t *testing.T) {
	srv := videoServer(t)
	h := newHarness(t, Config{}, nil)

	w := h.do(transcribeRequest(srv.URL+"/truncated", ""))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode[detailBody](t, w)
	if body.Code != "DOWNLOAD_FAILED" || !strings.HasPrefix(body.Detail, "Error downloading video: ") {
		t.Errorf("body = %+v", body)
	}
	if len(h.transcriber.paths) != 0 {
		t.Error("transcriber called for a truncated download")
	}
	h.assertEmptyDir(t)
}

func TestTranscribe_UnsupportedScheme(t *testing.T) {
	h := newHarness(t, Config{}, nil)

	w := h.do(transcribeRequest("ftp://example.com/a.mp4", ""))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if detail := decode[detailBody](t, w).Detail; !strings.HasPrefix(detail, "Error downloading video:") {
		t.Errorf("detail = %q", detail)
	}
}

func TestTranscribe_MalformedURL(t *testing.T) {
	h := newHarness(t, Config{}, nil)

	w := h.do(transcribeRequest("not-a-url", ""))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if detail := decode[detailBody](t, w).Detail; !strings.Contains(detail, "video_url") {
		t.Errorf("detail = %q", detail)
	}
	if len(h.transcriber.paths) != 0 {
		t.Error("transcriber called for a malformed url")
	}
}

func TestTranscribe_MissingURL(t *testing.T) {
	h := newHarness(t, Config{}, nil)

	w := h.do(transcribeRequest("", ""))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if detail := decode[detailBody](t, w).Detail; !strings.Contains(detail, "video_url") {
		t.Errorf("detail = %q", detail)
	}
}

func TestTranscribe_TranscriptionFailure(t *testing.T) {
	srv := videoServer(t)
	h := newHarness(t, Config{}, nil)
	h.transcriber.err = apperrors.TranscriptionFailed(errors.New("decoder crashed"))

	w := h.do(transcribeRequest(srv.URL+"/clip.mp4", ""))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	if detail := decode[detailBody](t, w).Detail; !strings.Contains(detail, "decoder crashed") {
		t.Errorf("detail = %q", detail)
	}
	h.assertEmptyDir(t)
}

func TestTranscribe_Busy(t *testing.T) {
	srv := videoServer(t)
	h := newHarness(t, Config{}, nil)
	h.transcriber.err = apperrors.ServiceUnavailable("transcriber")

	w := h.do(transcribeRequest(srv.URL+"/clip.mp4", ""))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	h.assertEmptyDir(t)
}

func TestTranscribe_CleanupFailure(t *testing.T) {
	srv := videoServer(t)
	h := newHarness(t, Config{}, func(s storage.Storage) storage.Storage { return failingDelete{s} })

	w := h.do(transcribeRequest(srv.URL+"/clip.mp4", ""))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode[map[string]any](t, w)
	msg, _ := body["error"].(string)
	if !strings.HasPrefix(msg, "Failed to delete file: ") {
		t.Errorf("error = %q", msg)
	}
	if _, ok := body["transcription"]; ok {
		t.Error("transcription must be discarded")
	}
}

func TestTranscribe_CleanupWarning(t *testing.T) {
	srv := videoServer(t)
	h := newHarness(t, Config{CleanupWarning: true}, func(s storage.Storage) storage.Storage { return failingDelete{s} })

	w := h.do(transcribeRequest(srv.URL+"/clip.mp4", ""))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[TranscribeResponse](t, w)
	assertSegments(t, resp.Transcription)
	if !strings.HasPrefix(resp.Warning, "Failed to delete file: ") {
		t.Errorf("warning = %q", resp.Warning)
	}
}

func TestUploadVideo_OK(t *testing.T) {
	h := newHarness(t, Config{}, nil)

	w := h.do(uploadRequest(t, "lecture.mp4", []byte("fake video bytes"), "?language=vi"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decode[UploadResponse](t, w)
	if resp.Filename != "lecture.mp4" {
		t.Errorf("filename = %q", resp.Filename)
	}
	assertSegments(t, resp.Transcription)
	if got := h.transcriber.paths[0]; got != filepath.Join(h.dir, "lecture.mp4") {
		t.Errorf("path = %q", got)
	}
	if got := h.transcriber.sizes[0]; got != int64(len("fake video bytes")) {
		t.Errorf("stored size = %d", got)
	}
	h.assertEmptyDir(t)
}

func TestUploadVideo_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{"text file", "clip.txt"},
		{"uppercase extension", "clip.MP4"},
		{"no extension", "clip"},
		{"traversal", "../evil.mp4"},
		{"nested", "dir/clip.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Config{}, nil)
			w := h.do(uploadRequest(t, tt.filename, []byte("x"), ""))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", w.Code)
			}
			if got := decode[detailBody](t, w).Detail; got != "Invalid file format" {
				t.Errorf("detail = %q", got)
			}
			if len(h.transcriber.paths) != 0 {
				t.Error("transcriber must not run")
			}
			h.assertEmptyDir(t)
		})
	}
}

func TestUploadVideo_TooLarge(t *testing.T) {
	h := newHarness(t, Config{}, nil)

	req := uploadRequest(t, "clip.mp4", bytes.Repeat([]byte{0x42}, 1<<20), "")
	w := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(w, req.Body, 1<<10)
	h.router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if detail := decode[detailBody](t, w).Detail; detail != "File too large" {
		t.Errorf("detail = %q", detail)
	}
	if len(h.transcriber.paths) != 0 {
		t.Error("transcriber called for an oversized upload")
	}
	h.assertEmptyDir(t)
}

func TestUploadVideo_MissingFile(t *testing.T) {
	h := newHarness(t, Config{}, nil)

	w := h.do(uploadRequest(t, "", nil, ""))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if detail := decode[detailBody](t, w).Detail; !strings.Contains(detail, "file") {
		t.Errorf("detail = %q", detail)
	}
}

func TestUploadVideo_NotMultipart(t *testing.T) {
	h := newHarness(t, Config{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/upload-video/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := h.do(req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestUploadVideo_TranscriptionFailure(t *testing.T) {
	h := newHarness(t, Config{}, nil)
	h.transcriber.err = apperrors.TranscriptionFailed(errors.New("model exited"))

	w := h.do(uploadRequest(t, "talk.mkv", []byte("abc"), ""))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	h.assertEmptyDir(t)
}

func TestUploadVideo_CleanupFailure(t *testing.T) {
	h := newHarness(t, Config{}, func(s storage.Storage) storage.Storage { return failingDelete{s} })

	w := h.do(uploadRequest(t, "talk.avi", []byte("abc"), ""))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if msg := decode[CleanupErrorResponse](t, w).Error; !strings.HasPrefix(msg, "Failed to delete file: ") {
		t.Errorf("error = %q", msg)
	}
}

func TestDownloadOrStorageError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"read failure", &media.ReadError{Err: io.ErrUnexpectedEOF}, http.StatusBadRequest},
		{"read timeout", &media.ReadError{Err: context.DeadlineExceeded, Timeout: true}, http.StatusGatewayTimeout},
		{"storage failure", apperrors.StorageFailed(errors.New("disk full")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr, ok := apperrors.AsAppError(downloadOrStorageError(tt.err))
			if !ok || appErr.HTTPStatus != tt.status {
				t.Errorf("got %v, want status %d", appErr, tt.status)
			}
		})
	}
}
