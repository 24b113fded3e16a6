package jre

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"
)

// DefaultInstallRoots are the directories Unix package managers and vendor
// installers put runtimes in.
var DefaultInstallRoots = []string{
	"/usr/lib/jvm",
	"/usr/java",
	"/opt/java",
	"/Library/Java/JavaVirtualMachines",
}

// currentLinks name the "current runtime" symlinks maintained by
// update-alternatives and similar tools, relative to an install root.
var currentLinks = []string{"default-java", "default-runtime", "latest"}

// dirVersionRegex finds the version number embedded in an install directory
// name such as java-11-openjdk-amd64, jdk-17.0.2 or temurin-21.jdk.
var dirVersionRegex = regexp.MustCompile(`\d+(\.\d+)*`)

// InstallRootsEnumerator scans well-known install roots for runtimes.
// Unix has no 32-bit registry view, so View32 lists nothing.
type InstallRootsEnumerator struct {
	FS    afero.Fs
	Roots []string
}

// Candidates implements Enumerator.
func (e InstallRootsEnumerator) Candidates(want string, view View) ([]string, error) {
	if view == View32 {
		return nil, nil
	}

	type found struct {
		home string
		ver  *version.Version
	}

	var matches []found

	for _, root := range e.Roots {
		entries, err := afero.ReadDir(e.FS, root)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			ver := dirVersion(entry.Name())
			if ver == nil || majorOf(ver) != want {
				continue
			}

			matches = append(matches, found{home: e.home(filepath.Join(root, entry.Name())), ver: ver})
		}
	}

	// Newest patch level first
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].ver.GreaterThan(matches[j].ver)
	})

	homes := make([]string, 0, len(matches))
	for _, m := range matches {
		homes = append(homes, m.home)
	}

	return homes, nil
}

// CurrentVersion implements Enumerator by following the first current-runtime
// symlink found under the install roots.
func (e InstallRootsEnumerator) CurrentVersion(view View) (string, error) {
	if view == View32 {
		return "", nil
	}

	reader, ok := e.FS.(afero.LinkReader)
	if !ok {
		return "", nil
	}

	for _, root := range e.Roots {
		for _, link := range currentLinks {
			target, err := reader.ReadlinkIfPossible(filepath.Join(root, link))
			if err != nil {
				continue
			}

			if ver := dirVersion(filepath.Base(target)); ver != nil {
				return majorOf(ver), nil
			}
		}
	}

	return "", nil
}

// home maps a vendor bundle directory to its runtime home.
func (e InstallRootsEnumerator) home(dir string) string {
	macHome := filepath.Join(dir, "Contents", "Home")
	if info, err := e.FS.Stat(macHome); err == nil && info.IsDir() {
		return macHome
	}

	return dir
}

func dirVersion(name string) *version.Version {
	raw := dirVersionRegex.FindString(name)
	if raw == "" {
		return nil
	}

	ver, err := version.NewVersion(raw)
	if err != nil {
		return nil
	}

	return ver
}

// majorOf returns the feature release of ver; legacy 1.x versions report x.
func majorOf(ver *version.Version) string {
	segments := ver.Segments()
	if len(segments) > 1 && segments[0] == 1 {
		return strconv.Itoa(segments[1])
	}

	return strconv.Itoa(segments[0])
}
