// Package report shows launch problems to the user.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// TitleLaunchError is the title of every fatal launch report.
const TitleLaunchError = "Error launching Consulo"

// Reporter presents messages to the user. Fatal is for problems that end the
// launch, Warn for problems the launcher survives.
type Reporter interface {
	Fatal(title, message string)
	Warn(title, message string)
}

// Console writes reports to a stream and mirrors them to a logger.
type Console struct {
	out    io.Writer
	logger *slog.Logger
	mu     sync.Mutex
}

// NewConsole creates a Console writing to out (stderr when nil).
func NewConsole(out io.Writer, logger *slog.Logger) *Console {
	if out == nil {
		out = os.Stderr
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Console{out: out, logger: logger}
}

// Fatal writes a fatal report.
func (c *Console) Fatal(title, message string) {
	c.logger.Error(title, "message", message)
	c.write(title, message)
}

// Warn writes a warning.
func (c *Console) Warn(title, message string) {
	c.logger.Warn(title, "message", message)
	c.write(title, message)
}

func (c *Console) write(title, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintf(c.out, "%s: %s\n", title, message)
}

// Discard drops every report.
type Discard struct{}

// Fatal does nothing.
func (Discard) Fatal(string, string) {}

// Warn does nothing.
func (Discard) Warn(string, string) {}
