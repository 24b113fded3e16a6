package jre

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/consulo/go-launcher/internal/failure"
)

// Candidate sources, reported in Candidate.Source and in logs.
const (
	SourceOverride = "override"
	SourceAdjacent = "adjacent"
	SourceFallback = "fallback"
	SourceRegistry = "registry"
)

// EnvLookup resolves environment variables.
type EnvLookup interface {
	Lookup(name string) (string, bool)
}

// Options configures a Locator.
type Options struct {
	FS         afero.Fs
	Env        EnvLookup
	Enumerator Enumerator
	Logger     *slog.Logger

	// Need is the architecture the launcher process requires.
	Need Arch
	// WorkDir holds the bundled jre64/ and jre/ directories.
	WorkDir string
	// OverrideEnv names the installation-specific override variable.
	OverrideEnv string
	// FallbackEnv names the generic runtime variable, usually JAVA_HOME.
	FallbackEnv string
	// Versions are the registry versions tried, in order.
	Versions []string
	// IsWow64 reports a 32-bit process on a 64-bit OS; used for the advisory note.
	IsWow64 func() bool
}

// Locator discovers a runtime installation.
type Locator struct {
	fs         afero.Fs
	env        EnvLookup
	enumerator Enumerator
	logger     *slog.Logger

	need        Arch
	workDir     string
	overrideEnv string
	fallbackEnv string
	versions    []string
	isWow64     func() bool
}

// NewLocator creates a Locator. Unset collaborators get working defaults.
func NewLocator(opts Options) *Locator {
	l := &Locator{
		fs:          opts.FS,
		env:         opts.Env,
		enumerator:  opts.Enumerator,
		logger:      opts.Logger,
		need:        opts.Need,
		workDir:     opts.WorkDir,
		overrideEnv: opts.OverrideEnv,
		fallbackEnv: opts.FallbackEnv,
		versions:    opts.Versions,
		isWow64:     opts.IsWow64,
	}

	if l.fs == nil {
		l.fs = afero.NewOsFs()
	}

	if l.enumerator == nil {
		l.enumerator = NoEnumerator{}
	}

	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}

	if l.need == 0 {
		l.need = ProcessArch()
	}

	if l.isWow64 == nil {
		l.isWow64 = IsWow64
	}

	return l
}

// Locate returns the first valid, architecture-matching runtime.
// Sources are tried in order: override variable, bundled directories,
// fallback variable, platform enumerator.
func (l *Locator) Locate() (*Candidate, error) {
	if cand, handled, err := l.fromEnv(l.overrideEnv, SourceOverride); handled {
		return cand, err
	}

	for _, dir := range l.AdjacentDirs() {
		if cand := l.accept(dir, SourceAdjacent); cand != nil {
			return cand, nil
		}
	}

	if cand, handled, err := l.fromEnv(l.fallbackEnv, SourceFallback); handled {
		return cand, err
	}

	if cand := l.fromEnumerator(); cand != nil {
		return cand, nil
	}

	return nil, l.notFound()
}

// AdjacentDirs returns the bundled runtime directories in lookup order:
// jre64 (64-bit launcher only), then jre.
func (l *Locator) AdjacentDirs() []string {
	var dirs []string
	if l.need == Arch64 {
		dirs = append(dirs, filepath.Join(l.workDir, "jre64"))
	}

	return append(dirs, filepath.Join(l.workDir, "jre"))
}

// fromEnv checks the runtime named by an environment variable.
// handled is false only when the variable is unset; a set variable always
// decides the outcome.
func (l *Locator) fromEnv(name, source string) (*Candidate, bool, error) {
	if name == "" || l.env == nil {
		return nil, false, nil
	}

	value, ok := l.env.Lookup(name)
	if !ok {
		return nil, false, nil
	}

	root, valid := FindValid(l.fs, value)
	if !valid {
		l.logger.Debug("environment variable points at no runtime", "var", name, "value", value)

		return nil, true, failure.New(failure.ErrConfigOverrideInvalid,
			"The environment variable %s (with the value of %s) does not point to a valid JVM installation.",
			name, value)
	}

	arch := DetectArch(l.fs, root, l.need)
	if arch != l.need {
		return nil, true, failure.New(failure.ErrBitnessMismatch,
			"The environment variable %s points to a %s JVM (%s), but a %s JVM is required.",
			name, arch, root, l.need)
	}

	l.logger.Debug("runtime found", "source", source, "var", name, "root", root)

	return &Candidate{Root: root, Arch: arch, Source: source}, true, nil
}

// accept returns a candidate for dir if it is valid and matches the needed
// architecture, nil otherwise.
func (l *Locator) accept(dir, source string) *Candidate {
	root, valid := FindValid(l.fs, dir)
	if !valid {
		l.logger.Debug("not a runtime", "source", source, "path", dir)

		return nil
	}

	arch := DetectArch(l.fs, root, l.need)
	if arch != l.need {
		l.logger.Debug("runtime architecture mismatch", "source", source, "path", root, "arch", arch.String())

		return nil
	}

	l.logger.Debug("runtime found", "source", source, "root", root)

	return &Candidate{Root: root, Arch: arch, Source: source}
}

func (l *Locator) fromEnumerator() *Candidate {
	views := []View{View32, ViewNative}
	if l.need == Arch64 {
		views = []View{ViewNative}
	}

	for _, view := range views {
		for _, ver := range l.versions {
			if cand := l.fromVersion(ver, view); cand != nil {
				return cand
			}
		}

		current, err := l.enumerator.CurrentVersion(view)
		if err != nil {
			l.logger.Debug("reading current runtime version failed", "view", view.String(), "error", err)

			continue
		}

		if current != "" {
			if cand := l.fromVersion(current, view); cand != nil {
				return cand
			}
		}
	}

	return nil
}

func (l *Locator) fromVersion(ver string, view View) *Candidate {
	homes, err := l.enumerator.Candidates(ver, view)
	if err != nil {
		l.logger.Debug("enumerating runtimes failed", "version", ver, "view", view.String(), "error", err)
	}

	for _, home := range homes {
		if cand := l.accept(home, SourceRegistry); cand != nil {
			return cand
		}
	}

	return nil
}

func (l *Locator) notFound() error {
	fallback := l.fallbackEnv
	if fallback == "" {
		fallback = "JAVA_HOME"
	}

	msg := "No JVM installation found. Please install a " + l.need.String() + " JRE/JDK 11+.\n" +
		"If you already have a JRE/JDK installed, define a " + fallback + " variable in\n" +
		"Computer > System Properties > System Settings > Environment Variables."

	if l.isWow64() {
		msg += "\n\nNOTE: We have detected that you are running a 64-bit version of the " +
			"Windows operating system but are running the 32-bit executable. This " +
			"can prevent you from finding a 64-bit installation of Java. Consider running " +
			"the 64-bit version instead, if this is the problem you're encountering."
	}

	return failure.New(failure.ErrRuntimeNotFound, "%s", msg)
}
