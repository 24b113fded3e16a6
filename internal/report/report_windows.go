//go:build windows

package report

import (
	"log/slog"

	"golang.org/x/sys/windows"
)

// MessageBox shows reports in a modal dialog; a windowed launcher has no
// console to write to.
type MessageBox struct {
	logger *slog.Logger
}

// Default returns the platform reporter: message boxes on Windows.
func Default(logger *slog.Logger) Reporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &MessageBox{logger: logger}
}

// Fatal shows an error dialog.
func (m *MessageBox) Fatal(title, message string) {
	m.logger.Error(title, "message", message)
	m.show(title, message, windows.MB_OK|windows.MB_ICONERROR)
}

// Warn shows a warning dialog.
func (m *MessageBox) Warn(title, message string) {
	m.logger.Warn(title, "message", message)
	m.show(title, message, windows.MB_OK|windows.MB_ICONWARNING)
}

func (m *MessageBox) show(title, message string, style uint32) {
	text, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return
	}

	caption, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return
	}

	if _, err := windows.MessageBox(0, text, caption, style); err != nil {
		m.logger.Debug("showing message box failed", "error", err)
	}
}
