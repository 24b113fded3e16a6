// Package cli provides output and prompt helpers for consuloctl.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/toon-format/toon-go"

	"github.com/consulo/go-launcher/internal/config"
	"github.com/consulo/go-launcher/internal/jre"
)

// EnvOutputFormat overrides the default output format.
const EnvOutputFormat = "CONSULO_OUTPUT_FORMAT"

// Format selects how a report is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatTOON Format = "toon"
)

// ParseFormat parses a format name. The empty string is text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatTOON:
		return f, nil
	default:
		return "", fmt.Errorf("invalid output format %q (must be text, json or toon)", s)
	}
}

// ResolveFormat picks the output format.
// Priority: flag value > CONSULO_OUTPUT_FORMAT > text.
func ResolveFormat(flagValue string) (Format, error) {
	if flagValue != "" {
		return ParseFormat(flagValue)
	}

	return ParseFormat(os.Getenv(EnvOutputFormat))
}

// Report is something consuloctl prints.
type Report interface {
	// Text renders the human-readable form.
	Text() string
	// Data returns the structured form used for json and toon.
	Data() map[string]any
}

// Render writes r to w in the given format.
func Render(w io.Writer, format Format, r Report) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(r.Data(), "", "  ")
		if err != nil {
			return fmt.Errorf("JSON marshal failed: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	case FormatTOON:
		data, err := toon.Marshal(r.Data(),
			toon.WithLengthMarkers(true),
			toon.WithIndent(2),
		)
		if err != nil {
			return fmt.Errorf("TOON marshal failed: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	default:
		_, err := io.WriteString(w, r.Text())

		return err
	}
}

// LocateReport describes the outcome of runtime discovery.
type LocateReport struct {
	Candidate *jre.Candidate
	// Library is the runtime library the loader would open.
	Library string
	// Adjacent lists the bundled directories that were checked.
	Adjacent []string
	Err      error
}

// Text implements Report.
func (r *LocateReport) Text() string {
	var sb strings.Builder

	if r.Err != nil {
		fmt.Fprintf(&sb, "No runtime found: %v\n", r.Err)
	} else if r.Candidate != nil {
		fmt.Fprintf(&sb, "Runtime: %s\n", r.Candidate.Root)
		fmt.Fprintf(&sb, "  Source:  %s\n", r.Candidate.Source)
		fmt.Fprintf(&sb, "  Arch:    %s\n", r.Candidate.Arch)

		if r.Library != "" {
			fmt.Fprintf(&sb, "  Library: %s\n", r.Library)
		}
	}

	if len(r.Adjacent) > 0 {
		sb.WriteString("Bundled directories:\n")

		for _, dir := range r.Adjacent {
			fmt.Fprintf(&sb, "  %s\n", dir)
		}
	}

	return sb.String()
}

// Data implements Report.
func (r *LocateReport) Data() map[string]any {
	data := map[string]any{
		"found":    r.Err == nil && r.Candidate != nil,
		"adjacent": stringsOrEmpty(r.Adjacent),
	}

	if r.Candidate != nil {
		data["root"] = r.Candidate.Root
		data["source"] = r.Candidate.Source
		data["arch"] = r.Candidate.Arch.String()
		data["library"] = r.Library
	}

	if r.Err != nil {
		data["error"] = r.Err.Error()
	}

	return data
}

// OptionsReport lists the assembled runtime options.
type OptionsReport struct {
	Files           []string
	Options         []string
	ServerPreferred bool
}

// Text implements Report.
func (r *OptionsReport) Text() string {
	var sb strings.Builder

	sb.WriteString("Files:\n")

	for _, f := range r.Files {
		fmt.Fprintf(&sb, "  %s\n", f)
	}

	fmt.Fprintf(&sb, "Server VM: %t\n", r.ServerPreferred)
	fmt.Fprintf(&sb, "Options (%d):\n", len(r.Options))

	for _, opt := range r.Options {
		fmt.Fprintf(&sb, "  %s\n", opt)
	}

	return sb.String()
}

// Data implements Report.
func (r *OptionsReport) Data() map[string]any {
	return map[string]any{
		"files":   stringsOrEmpty(r.Files),
		"server":  r.ServerPreferred,
		"options": stringsOrEmpty(r.Options),
	}
}

// ChannelReport describes the single-instance channel of an executable.
type ChannelReport struct {
	Exe     string
	Mapping string
	Event   string
	// Dir holds the channel files; empty where names are kernel objects.
	Dir     string
	Enabled bool
}

// Text implements Report.
func (r *ChannelReport) Text() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Executable: %s\n", r.Exe)
	fmt.Fprintf(&sb, "  Mapping: %s\n", r.Mapping)
	fmt.Fprintf(&sb, "  Event:   %s\n", r.Event)

	if r.Dir != "" {
		fmt.Fprintf(&sb, "  Dir:     %s\n", r.Dir)
	}

	state := "enabled"
	if !r.Enabled {
		state = "disabled"
	}

	fmt.Fprintf(&sb, "  Single instance: %s\n", state)

	return sb.String()
}

// Data implements Report.
func (r *ChannelReport) Data() map[string]any {
	return map[string]any{
		"exe":     r.Exe,
		"mapping": r.Mapping,
		"event":   r.Event,
		"dir":     r.Dir,
		"enabled": r.Enabled,
	}
}

// FileStatus is one configuration file checked by config validate.
type FileStatus struct {
	Path   string
	Exists bool
	Err    error
}

// ConfigReport is the result of validating the configuration files.
type ConfigReport struct {
	Files []FileStatus
	// Changes are the effective settings that differ from the defaults.
	Changes []config.Change
	Err     error
}

// Text implements Report.
func (r *ConfigReport) Text() string {
	var sb strings.Builder

	for _, f := range r.Files {
		switch {
		case f.Err != nil:
			fmt.Fprintf(&sb, "[!!] %s: %v\n", f.Path, f.Err)
		case f.Exists:
			fmt.Fprintf(&sb, "[OK] %s\n", f.Path)
		default:
			fmt.Fprintf(&sb, "[--] %s (not found, optional)\n", f.Path)
		}
	}

	sb.WriteString("\n")

	if r.Err != nil {
		fmt.Fprintf(&sb, "Configuration invalid: %v\n", r.Err)

		return sb.String()
	}

	sb.WriteString("Configuration valid!\n")
	sb.WriteString(FormatChanges(r.Changes))

	return sb.String()
}

// Data implements Report.
func (r *ConfigReport) Data() map[string]any {
	files := make([]map[string]any, 0, len(r.Files))
	for _, f := range r.Files {
		entry := map[string]any{"path": f.Path, "exists": f.Exists}
		if f.Err != nil {
			entry["error"] = f.Err.Error()
		}

		files = append(files, entry)
	}

	changes := make([]map[string]any, 0, len(r.Changes))
	for _, c := range r.Changes {
		changes = append(changes, map[string]any{"key": c.Key, "old": c.Old, "new": c.New})
	}

	data := map[string]any{
		"valid":   r.Err == nil,
		"files":   files,
		"changes": changes,
	}

	if r.Err != nil {
		data["error"] = r.Err.Error()
	}

	return data
}

// FormatChanges formats setting changes, one per line.
func FormatChanges(changes []config.Change) string {
	if len(changes) == 0 {
		return "No settings differ from the defaults.\n"
	}

	var sb strings.Builder

	sb.WriteString("Changed settings:\n")

	for _, c := range changes {
		fmt.Fprintf(&sb, "  %s: %s -> %s\n", c.Key, orUnset(c.Old), orUnset(c.New))
	}

	return sb.String()
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}

	return s
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
