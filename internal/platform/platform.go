// Package platform resolves the on-disk layout of an installation.
//
// An installation root (the directory holding the launcher executable) keeps
// one or more platform builds under platform/build<N>. The newest build is the
// working directory for the launch: it holds boot/, bin/ and optionally a
// bundled jre/ or jre64/.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"
)

const (
	// PlatformDir is the directory under the installation root holding builds.
	PlatformDir = "platform"
	// BuildPrefix prefixes every build directory name.
	BuildPrefix = "build"
)

// Layout is the resolved set of installation paths for one run.
type Layout struct {
	// Exe is the absolute path of the launcher executable.
	Exe string
	// AppHome is the installation root.
	AppHome string
	// WorkDir is the selected platform build directory.
	WorkDir string
}

// Adjacent returns a path next to the working directory's contents.
func (l Layout) Adjacent(name ...string) string {
	return filepath.Join(append([]string{l.WorkDir}, name...)...)
}

// BootDir returns the directory holding the boot libraries.
func (l Layout) BootDir() string {
	return l.Adjacent("boot")
}

// BinDir returns the build's binary directory.
func (l Layout) BinDir() string {
	return l.Adjacent("bin")
}

// Resolve builds the layout for the executable at exe.
// When appHome/platform has no build directories the installation is flat and
// the working directory is appHome itself.
func Resolve(fs afero.Fs, exe string) (Layout, error) {
	abs, err := filepath.Abs(exe)
	if err != nil {
		return Layout{}, fmt.Errorf("resolving executable path: %w", err)
	}

	appHome := filepath.Dir(abs)

	build, err := NewestBuild(fs, filepath.Join(appHome, PlatformDir))
	if err != nil {
		return Layout{}, err
	}

	workDir := appHome
	if build != "" {
		workDir = filepath.Join(appHome, PlatformDir, build)
	}

	return Layout{Exe: abs, AppHome: appHome, WorkDir: workDir}, nil
}

// NewestBuild returns the name of the highest-numbered build directory in dir,
// or "" when dir is missing or holds no builds.
func NewestBuild(fs afero.Fs, dir string) (string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}

		return "", fmt.Errorf("reading platform directory: %w", err)
	}

	var (
		best    string
		bestVer *version.Version
	)

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), BuildPrefix) {
			continue
		}

		v, err := version.NewVersion(strings.TrimPrefix(entry.Name(), BuildPrefix))
		if err != nil {
			continue
		}

		if bestVer == nil || v.GreaterThan(bestVer) {
			best, bestVer = entry.Name(), v
		}
	}

	return best, nil
}
