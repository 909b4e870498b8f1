package process

import (
	"strings"
	"time"
)

// Result holds the output and status of a completed subprocess.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the process exit code. -1 if the process was killed or never started.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
}

// StderrTail returns at most the last n bytes of stderr, trimmed, for use
// in error messages.
func (r *Result) StderrTail(n int) string {
	if r == nil {
		return ""
	}
	s := r.Stderr
	if n > 0 && len(s) > n {
		s = s[len(s)-n:]
	}
	return strings.TrimSpace(string(s))
}
