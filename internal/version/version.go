// Package version provides build version information.
package version

import (
	"fmt"
	"runtime"
)

// Build information set via ldflags.
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Info returns formatted version information for the named binary.
func Info(name string) string {
	return fmt.Sprintf("%s %s\n  Commit: %s\n  Built:  %s\n  Go:     %s\n  Arch:   %s/%s",
		name, Version, Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version string.
func Short() string {
	return Version
}
