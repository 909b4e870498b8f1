// Package whispercli implements transcription.Provider by running the
// whisper command-line tool and reading its JSON output.
package whispercli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vidscribe/vidscribe/process"
	"github.com/vidscribe/vidscribe/provider"
	"github.com/vidscribe/vidscribe/transcription"
)

const (
	// ProviderName is the registered name for the CLI provider.
	ProviderName = transcription.BackendWhisperCLI

	defaultBinary = "whisper"
	defaultModel  = "medium"
)

// Config holds configuration for the CLI provider.
type Config struct {
	Binary string `json:"binary" yaml:"binary"`
	Model  string `json:"model" yaml:"model"`
	Device string `json:"device,omitempty" yaml:"device"`
	// GracePeriod is how long the CLI gets to exit after cancellation.
	GracePeriod time.Duration `json:"grace_period" yaml:"grace_period"`
}

// Provider implements transcription.Provider with the whisper CLI.
type Provider struct {
	cfg Config
}

// NewProvider creates a CLI provider.
func NewProvider(cfg Config) *Provider {
	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Provider{cfg: cfg}
}

// Factory returns a provider.Factory for the CLI backend.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		c := Config{}
		if v, ok := cfg["binary"].(string); ok {
			c.Binary = v
		}
		if v, ok := cfg["model"].(string); ok {
			c.Model = v
		}
		if v, ok := cfg["device"].(string); ok {
			c.Device = v
		}
		return NewProvider(c), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the CLI binary can be found.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return process.Available(p.cfg.Binary)
}

// Transcribe runs the CLI over the media file in a scratch output directory.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	outDir, err := os.MkdirTemp("", "whisper-out-*")
	if err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	defer os.RemoveAll(outDir) //nolint:errcheck // scratch dir

	result, err := process.Run(ctx, process.Command{
		Binary:      p.cfg.Binary,
		Args:        p.args(req, outDir),
		GracePeriod: p.cfg.GracePeriod,
	})
	if err != nil {
		if tail := result.StderrTail(512); tail != "" {
			return nil, fmt.Errorf("%w: %s", err, tail)
		}
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(req.AudioPath), filepath.Ext(req.AudioPath))
	data, err := os.ReadFile(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	var out cliOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode whisper output: %w", err)
	}
	return out.toResponse(), nil
}

func (p *Provider) args(req transcription.TranscriptionRequest, outDir string) []string {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	args := []string{
		req.AudioPath,
		"--model", model,
		"--fp16", "False",
		"--output_format", "json",
		"--output_dir", outDir,
		"--verbose", "False",
	}
	if req.Language != "" {
		args = append(args, "--language", req.Language)
	}
	if p.cfg.Device != "" {
		args = append(args, "--device", p.cfg.Device)
	}
	return args
}

type cliOutput struct {
	Text     string       `json:"text"`
	Language string       `json:"language"`
	Segments []cliSegment `json:"segments"`
}

type cliSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func (o *cliOutput) toResponse() *transcription.TranscriptionResponse {
	segments := make([]transcription.Segment, len(o.Segments))
	for i, s := range o.Segments {
		segments[i] = transcription.Segment{Start: s.Start, End: s.End, Text: s.Text}
	}
	return &transcription.TranscriptionResponse{
		Text:     o.Text,
		Language: o.Language,
		Segments: segments,
	}
}
