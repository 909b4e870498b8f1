// Package process runs external programs (such as a speech-to-text CLI)
// with context-driven termination and captured output.
package process
