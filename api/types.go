package api

import (
	"context"
	"io"

	"github.com/vidscribe/vidscribe/media"
	"github.com/vidscribe/vidscribe/transcription"
	"github.com/vidscribe/vidscribe/upload"
	"github.com/vidscribe/vidscribe/util"
)

// Config is the api section of the application config.
type Config struct {
	// CleanupWarning answers 201 with a "warning" field instead of 500 when
	// the working file cannot be deleted after a successful transcription.
	CleanupWarning bool `yaml:"cleanup_warning" mapstructure:"cleanup_warning"`
}

// Fetcher resolves a URL to a media stream.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*media.Media, error)
}

// Transcriber produces a transcript for a stored file.
type Transcriber interface {
	Transcribe(ctx context.Context, path, language string) ([]transcription.TranscriptSegment, error)
}

// Store places and removes request files in the working directory.
type Store interface {
	Receive(ctx context.Context, filename string, body io.Reader) (*upload.File, error)
	ReceiveGenerated(ctx context.Context, body io.Reader) (*upload.File, error)
	Remove(ctx context.Context, f *upload.File) error
}

// TranscribeQuery is the query string of POST /transcribe/.
type TranscribeQuery struct {
	VideoURL string `form:"video_url" validate:"required,url"`
	Language string `form:"language" validate:"omitempty,min=2,max=32,alpha"`
}

func (q *TranscribeQuery) normalize() {
	q.VideoURL = util.SanitizeString(q.VideoURL)
	q.Language = util.SanitizeString(q.Language)
}

// UploadQuery is the query string of POST /upload-video/.
type UploadQuery struct {
	Language string `form:"language" validate:"omitempty,min=2,max=32,alpha"`
}

func (q *UploadQuery) normalize() {
	q.Language = util.SanitizeString(q.Language)
}

// TranscribeResponse is the 201 body of POST /transcribe/.
type TranscribeResponse struct {
	Transcription []transcription.TranscriptSegment `json:"transcription"`
	Warning       string                            `json:"warning,omitempty"`
}

// UploadResponse is the 201 body of POST /upload-video/.
type UploadResponse struct {
	Filename      string                            `json:"filename"`
	Transcription []transcription.TranscriptSegment `json:"transcription"`
	Warning       string                            `json:"warning,omitempty"`
}

// CleanupErrorResponse is the 500 body sent when the working file could not
// be deleted.
type CleanupErrorResponse struct {
	Error string `json:"error"`
}
