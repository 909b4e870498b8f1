// Package whisper implements transcription.Provider against a
// faster-whisper HTTP sidecar.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vidscribe/vidscribe/httpclient"
	"github.com/vidscribe/vidscribe/provider"
	"github.com/vidscribe/vidscribe/security"
	"github.com/vidscribe/vidscribe/transcription"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = transcription.BackendWhisper

	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperModel   = "medium"
	defaultWhisperTimeout = 30 * time.Minute
	// Half precision is never requested.
	computeType = "float32"
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	URL     string        `json:"url" yaml:"url"`
	Model   string        `json:"model" yaml:"model"`
	Device  string        `json:"device,omitempty" yaml:"device"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// TLS is used for https sidecar URLs.
	TLS *security.TLSConfig `json:"-" yaml:"tls"`
}

// Provider implements transcription.Provider using a faster-whisper HTTP sidecar.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a new Whisper transcription provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.URL == "" {
		cfg.URL = defaultWhisperURL
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.Model == "" {
		cfg.Model = defaultWhisperModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultWhisperTimeout
	}
	client, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout, TLS: cfg.TLS})
	if err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory that creates Whisper Provider
// instances from a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		wc := Config{}
		if v, ok := cfg["url"].(string); ok {
			wc.URL = v
		}
		if v, ok := cfg["model"].(string); ok {
			wc.Model = v
		}
		if v, ok := cfg["device"].(string); ok {
			wc.Device = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			wc.Timeout = v
		}
		if v, ok := cfg["tls"].(*security.TLSConfig); ok {
			wc.TLS = v
		}
		return NewProvider(wc)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, URL: p.cfg.URL + "/health"})
	return err == nil && resp.StatusCode == http.StatusOK
}

// Transcribe streams the media file to the sidecar and returns its segments.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	f, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	body, contentType := p.multipartBody(f, filepath.Base(req.AudioPath), model, req.Language)
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		URL:     p.cfg.URL + "/transcribe",
		Headers: map[string]string{"Content-Type": contentType},
		Body:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}

	var result whisperResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}
	return toTranscriptionResponse(&result), nil
}

// multipartBody streams the form through a pipe so large videos are never
// held in memory.
func (p *Provider) multipartBody(media io.Reader, filename, model, language string) (io.Reader, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := func() error {
			part, err := writer.CreateFormFile("audio", filename)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, media); err != nil {
				return err
			}
			fields := map[string]string{
				"model":        model,
				"compute_type": computeType,
			}
			if language != "" {
				fields["language"] = language
			}
			if p.cfg.Device != "" {
				fields["device"] = p.cfg.Device
			}
			for k, v := range fields {
				if err := writer.WriteField(k, v); err != nil {
					return err
				}
			}
			return writer.Close()
		}()
		_ = pw.CloseWithError(err)
	}()

	return pr, writer.FormDataContentType()
}

// --- internal Whisper API response types ---

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func toTranscriptionResponse(resp *whisperResponse) *transcription.TranscriptionResponse {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
	}
	return &transcription.TranscriptionResponse{
		Text:     resp.Text,
		Segments: segments,
		Language: resp.Language,
	}
}
