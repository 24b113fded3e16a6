package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/consulo/go-launcher/internal/jre"
)

// RuntimeShape describes the fake runtime image CreateRuntime lays out.
type RuntimeShape struct {
	// Modes are the VM modes that get a library file. Empty means server only.
	Modes []jre.Mode
	// Arch marks a legacy image of this architecture (lib/amd64/jvm.cfg for
	// 64-bit, no marker for 32-bit). Zero means a modern flat lib/jvm.cfg image.
	Arch jre.Arch
	// Nested puts the image under root/jre, as in an old JDK.
	Nested bool
}

// CreateRuntime lays out a fake runtime image under root in fs and returns
// the runtime home (root, or root/jre when nested).
func CreateRuntime(t *testing.T, fs afero.Fs, root string, shape RuntimeShape) string {
	t.Helper()

	home := root
	if shape.Nested {
		home = filepath.Join(root, "jre")
	}

	modes := shape.Modes
	if len(modes) == 0 {
		modes = []jre.Mode{jre.ModeServer}
	}

	libDir := "lib"
	if filepath.Separator == '\\' {
		libDir = "bin"
	}

	for _, mode := range modes {
		WriteFile(t, fs, filepath.Join(home, libDir, string(mode), jre.LibraryName()), "")
	}

	switch shape.Arch {
	case 0:
		WriteFile(t, fs, filepath.Join(home, "lib", "jvm.cfg"), "-server KNOWN\n")
	case jre.Arch64:
		WriteFile(t, fs, filepath.Join(home, "lib", "amd64", "jvm.cfg"), "-server KNOWN\n")
	}

	return home
}

// WriteFile creates a file and its parent directories in fs.
func WriteFile(t *testing.T, fs afero.Fs, path, content string) string {
	t.Helper()

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}
