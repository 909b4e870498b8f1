// Package provider is a small generic framework for swappable backends.
//
// A Registry maps backend names to factories. The application picks one
// name from configuration, builds the instance once at startup, and shares
// it for the lifetime of the process:
//
//	reg := provider.NewRegistry[transcription.Provider]()
//	reg.RegisterFactory("whisper", whisper.Factory())
//	p, err := reg.GetOrCreate("whisper", cfg)
package provider
