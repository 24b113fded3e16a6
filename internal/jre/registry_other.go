//go:build !windows

package jre

import "github.com/spf13/afero"

// DefaultEnumerator returns an enumerator over DefaultInstallRoots.
func DefaultEnumerator(fs afero.Fs) Enumerator {
	return InstallRootsEnumerator{FS: fs, Roots: DefaultInstallRoots}
}

// IsWow64 is always false outside Windows.
func IsWow64() bool {
	return false
}
