// Package transcription turns a stored video into a time-segmented
// transcript by delegating to a pluggable speech-to-text backend.
//
// # Backends
//
//   - transcription/whisper: faster-whisper HTTP sidecar
//   - transcription/whispercli: the whisper command-line tool
//
// # Usage
//
//	reg := transcription.NewRegistry()
//	reg.RegisterFactory(whisper.ProviderName, whisper.Factory())
//	p, _ := reg.GetOrCreate(cfg.Backend, cfg.ProviderConfig())
//	adapter := transcription.NewAdapter(p, cfg, log, metrics)
//	segments, err := adapter.Transcribe(ctx, "/work/clip.mp4", "vi")
package transcription
