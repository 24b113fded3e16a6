//go:build windows

package instance

import "golang.org/x/sys/windows"

// CommandLine returns the full command line of this process as the OS
// recorded it.
func CommandLine() string {
	return windows.UTF16PtrToString(windows.GetCommandLine())
}
