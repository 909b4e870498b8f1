// Package component defines the lifecycle contract shared by the service's
// long-lived parts (HTTP server, working storage, transcription backend)
// and a registry that starts them in order and stops them in reverse.
package component
