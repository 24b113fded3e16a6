//go:build windows

package jre

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const javaSoftKey = `Software\JavaSoft`

// RegistryEnumerator reads runtime homes from HKLM\Software\JavaSoft.
type RegistryEnumerator struct{}

// DefaultEnumerator returns the registry enumerator.
func DefaultEnumerator(afero.Fs) Enumerator {
	return RegistryEnumerator{}
}

// Candidates implements Enumerator.
func (RegistryEnumerator) Candidates(version string, view View) ([]string, error) {
	var homes []string

	for _, kind := range Kinds {
		home, err := readString(javaSoftKey+`\`+kind+`\`+version, "JavaHome", view)
		if err != nil {
			return homes, err
		}

		if home != "" {
			homes = append(homes, home)
		}
	}

	return homes, nil
}

// CurrentVersion implements Enumerator.
func (RegistryEnumerator) CurrentVersion(view View) (string, error) {
	return readString(javaSoftKey+`\JRE`, "CurrentVersion", view)
}

// readString returns a string value, or "" when the key or value is absent.
func readString(path, name string, view View) (string, error) {
	access := uint32(registry.QUERY_VALUE)
	if view == View32 {
		access |= registry.WOW64_32KEY
	}

	key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, access)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("opening registry key %s: %w", path, err)
	}
	defer func() { _ = key.Close() }()

	value, _, err := key.GetStringValue(name)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("reading registry value %s\\%s: %w", path, name, err)
	}

	return value, nil
}

// IsWow64 reports whether this is a 32-bit process on 64-bit Windows.
func IsWow64() bool {
	var wow64 bool
	if err := windows.IsWow64Process(windows.CurrentProcess(), &wow64); err != nil {
		return false
	}

	return wow64
}
