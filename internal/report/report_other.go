//go:build !windows

package report

import "log/slog"

// Default returns the platform reporter: the console on this OS.
func Default(logger *slog.Logger) Reporter {
	return NewConsole(nil, logger)
}
