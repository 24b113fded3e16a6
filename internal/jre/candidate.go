// Package jre locates a usable Java runtime installation.
//
// Discovery walks an ordered list of sources and stops at the first runtime
// that is both valid (has a loadable JVM library) and of the architecture the
// launcher process needs. Explicitly configured sources are validate-or-fail:
// a bad override is reported, never skipped.
package jre

import (
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/spf13/afero"
)

// Arch is a runtime or process word size.
type Arch int

const (
	// Arch32 is a 32-bit runtime or process.
	Arch32 Arch = 32
	// Arch64 is a 64-bit runtime or process.
	Arch64 Arch = 64
)

func (a Arch) String() string {
	return strconv.Itoa(int(a)) + "-bit"
}

// ProcessArch returns the word size of the running launcher.
func ProcessArch() Arch {
	if strconv.IntSize == 64 {
		return Arch64
	}

	return Arch32
}

// Mode is a JVM execution mode; each has its own library directory.
type Mode string

const (
	// ModeServer is the server VM.
	ModeServer Mode = "server"
	// ModeClient is the client VM.
	ModeClient Mode = "client"
)

// cfgFile marks the architecture of a runtime image.
const cfgFile = "jvm.cfg"

// Candidate is a directory believed to hold a runtime installation.
type Candidate struct {
	// Root is the runtime home; for a JDK with a nested jre/ this is the jre/ directory.
	Root string `json:"root"`
	// Arch is the runtime's word size.
	Arch Arch `json:"arch"`
	// Source names where the candidate came from (override, adjacent, registry...).
	Source string `json:"source"`
}

// LibraryName returns the JVM shared library file name for this OS.
func LibraryName() string {
	switch runtime.GOOS {
	case "windows":
		return "jvm.dll"
	case "darwin":
		return "libjvm.dylib"
	default:
		return "libjvm.so"
	}
}

// libraryDirs returns the directories, relative to a runtime root, that may
// hold the per-mode library directories.
func libraryDirs() []string {
	if runtime.GOOS == "windows" {
		return []string{"bin"}
	}

	dirs := []string{"lib"}
	if tag := archTag(runtime.GOARCH); tag != "" {
		dirs = append(dirs, filepath.Join("lib", tag))
	}

	return dirs
}

// archTag returns the lib/ subdirectory legacy images use for goarch.
func archTag(goarch string) string {
	switch goarch {
	case "amd64":
		return "amd64"
	case "386":
		return "i386"
	case "arm64":
		return "aarch64"
	default:
		return ""
	}
}

// legacy64 are the arch tags of 64-bit legacy images.
var legacy64 = []string{archTag("amd64"), archTag("arm64")}

// LibraryPath returns the JVM library for mode under root, or "" if absent.
func LibraryPath(fs afero.Fs, root string, mode Mode) string {
	for _, dir := range libraryDirs() {
		path := filepath.Join(root, dir, string(mode), LibraryName())
		if fileExists(fs, path) {
			return path
		}
	}

	return ""
}

// IsValid reports whether root holds a server or client JVM library.
func IsValid(fs afero.Fs, root string) bool {
	return LibraryPath(fs, root, ModeServer) != "" || LibraryPath(fs, root, ModeClient) != ""
}

// FindValid returns root, or root/jre, whichever is a valid runtime.
func FindValid(fs afero.Fs, root string) (string, bool) {
	if IsValid(fs, root) {
		return filepath.Clean(root), true
	}

	jrePath := filepath.Join(root, "jre")
	if IsValid(fs, jrePath) {
		return jrePath, true
	}

	return "", false
}

// DetectArch returns the architecture of the runtime at root.
// A legacy image carries lib/amd64/jvm.cfg or lib/aarch64/jvm.cfg when 64-bit.
// Newer images carry a flat lib/jvm.cfg and are bitness-implicit: they report
// need, i.e. they are treated as matching.
func DetectArch(fs afero.Fs, root string, need Arch) Arch {
	if fileExists(fs, filepath.Join(root, "lib", cfgFile)) {
		return need
	}

	for _, tag := range legacy64 {
		if fileExists(fs, filepath.Join(root, "lib", tag, cfgFile)) {
			return Arch64
		}
	}

	return Arch32
}

func fileExists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)

	return err == nil && !info.IsDir()
}
