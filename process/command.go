package process

import (
	"io"
	"strings"
	"time"
)

// Command describes one subprocess invocation.
type Command struct {
	// Binary is an executable path or a name resolved via PATH.
	Binary string
	Args   []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env entries (KEY=value) are appended to the parent environment.
	Env   []string
	Stdin io.Reader
	// GracePeriod separates SIGTERM from SIGKILL on cancellation. Zero
	// means five seconds.
	GracePeriod time.Duration
}

// String renders the command line for logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Args, " ")
}
