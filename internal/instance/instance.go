// Package instance keeps one launcher running per executable path.
//
// The first launcher of an executable creates a named shared segment and a
// named signal and listens on them. Any later launcher of the same executable
// finds the segment, writes its working directory and command line into it,
// raises the signal and exits. The first instance hands the forwarded command
// line to the running application.
package instance

import (
	"os"
	"strings"
)

// EnvNoSharing is the environment variable to disable single-instance coordination.
const EnvNoSharing = "CONSULO_LAUNCHER_NO_SINGLE_INSTANCE"

// DefaultPrefix prefixes the segment and signal names.
const DefaultPrefix = "ConsuloLauncher"

// SharingEnabled returns true if single-instance coordination is enabled.
// It is disabled when CONSULO_LAUNCHER_NO_SINGLE_INSTANCE is set to any non-empty value.
func SharingEnabled() bool {
	return os.Getenv(EnvNoSharing) == ""
}

// Role is the outcome of a claim.
type Role int

const (
	// RoleFirst owns the channel and runs the application.
	RoleFirst Role = iota
	// RoleSecondary has forwarded its command line and must exit.
	RoleSecondary
)

func (r Role) String() string {
	if r == RoleSecondary {
		return "secondary"
	}

	return "first"
}

// Names are the OS object names of one executable's channel.
type Names struct {
	Mapping string `json:"mapping"`
	Event   string `json:"event"`
}

var nameReplacer = strings.NewReplacer(":", "_", `\`, "_", "/", "_")

// ChannelName turns an executable path into a name usable for OS objects.
func ChannelName(exe string) string {
	return nameReplacer.Replace(exe)
}

// NamesFor returns the segment and signal names for exe.
func NamesFor(prefix, exe string) Names {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	name := ChannelName(exe)

	return Names{
		Mapping: prefix + "Mapping." + name,
		Event:   prefix + "Event." + name,
	}
}
