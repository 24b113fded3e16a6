// Package vmoptions assembles the ordered VM option list handed to the runtime.
//
// Option files are line oriented: one option per line, '#' starts a comment
// line, trailing whitespace is ignored. The "-server" line is a directive for
// the launcher itself and is never forwarded. Duplicates are kept; the
// runtime's own last-wins rule applies.
package vmoptions

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/consulo/go-launcher/internal/config"
	"github.com/consulo/go-launcher/internal/failure"
	"github.com/consulo/go-launcher/internal/platform"
)

// ServerDirective asks the launcher to prefer the server VM.
const ServerDirective = "-server"

// MaxLineLength bounds a single option line. Class path options on large
// installations run well past bufio's default token size.
const MaxLineLength = 1 << 20

// Result is an assembled, immutable option list.
type Result struct {
	options         []string
	serverPreferred bool
	filesUsed       []string
}

// Options returns a copy of the assembled options in order.
func (r *Result) Options() []string {
	out := make([]string, len(r.options))
	copy(out, r.options)

	return out
}

// Len returns the number of options.
func (r *Result) Len() int {
	return len(r.options)
}

// ServerPreferred reports whether an options file carried the server directive.
func (r *Result) ServerPreferred() bool {
	return r.serverPreferred
}

// FilesUsed returns the primary option files that were read.
func (r *Result) FilesUsed() []string {
	out := make([]string, len(r.filesUsed))
	copy(out, r.filesUsed)

	return out
}

// Parsed is the content of a single options file.
type Parsed struct {
	Lines           []string
	ServerPreferred bool
}

// Parse reads option lines from r.
func Parse(r io.Reader) (*Parsed, error) {
	parsed := &Parsed{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineLength)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")

		switch {
		case strings.HasPrefix(line, "#"):
			continue
		case line == ServerDirective:
			parsed.ServerPreferred = true
		case line != "":
			parsed.Lines = append(parsed.Lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return parsed, nil
}

// Assembler builds the final option list for one launch.
type Assembler struct {
	fs             afero.Fs
	layout         platform.Layout
	systemFile     string
	propertiesFile string
	mode           config.ClassLoadingMode
	mainModule     string
	bootJars       []string
}

// NewAssembler creates an Assembler for the given installation layout.
func NewAssembler(fs afero.Fs, layout platform.Layout, cfg *config.Config, propertiesFile string) *Assembler {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if cfg == nil {
		cfg = config.Default()
	}

	a := &Assembler{
		fs:             fs,
		layout:         layout,
		propertiesFile: propertiesFile,
	}

	if cfg.Options != nil {
		a.mode = cfg.Options.Mode
		a.bootJars = cfg.Options.BootJars

		if cfg.Options.SystemFile != "" {
			a.systemFile = filepath.Join(layout.BinDir(), cfg.Options.SystemFile)
		}
	}

	if cfg.Entry != nil {
		a.mainModule = cfg.Entry.MainModule
	}

	return a
}

// Assemble reads the primary options file and the installation's system file,
// then appends the derived options. A primary file that cannot be opened is
// ErrOptionsFileMissing; no defaults are substituted.
func (a *Assembler) Assemble(primary string) (*Result, error) {
	result := &Result{}

	parsed, err := a.readFile(primary)
	if err != nil {
		var perr *parseError
		if errors.As(err, &perr) {
			return nil, failure.Wrap(failure.ErrOptionsFileMissing, perr.err, "Cannot read VM options file %s", primary)
		}

		return nil, failure.Wrap(failure.ErrOptionsFileMissing, err, "Cannot load VM options file %s", primary)
	}

	result.add(parsed)
	result.filesUsed = append(result.filesUsed, primary)

	if a.systemFile != "" && fileExists(a.fs, a.systemFile) {
		system, err := a.readFile(a.systemFile)
		if err != nil {
			return nil, fmt.Errorf("reading system options file: %w", err)
		}

		result.add(system)
	}

	used := strings.Join(result.filesUsed, ",")
	// jb.vmOptions is the deprecated spelling, kept for old platform builds
	result.options = append(result.options,
		"-Djb.vmOptions="+used,
		"-Dconsulo.vm.options.files="+used,
	)

	result.options = append(result.options, a.bootOptions()...)
	result.options = append(result.options, a.predefinedOptions()...)

	return result, nil
}

func (r *Result) add(p *Parsed) {
	r.options = append(r.options, p.Lines...)
	if p.ServerPreferred {
		r.serverPreferred = true
	}
}

// parseError is a read failure of a file that could be opened.
type parseError struct {
	err error
}

func (e *parseError) Error() string { return e.err.Error() }

func (e *parseError) Unwrap() error { return e.err }

func (a *Assembler) readFile(path string) (*Parsed, error) {
	f, err := a.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	parsed, err := Parse(f)
	if err != nil {
		return nil, &parseError{err: err}
	}

	return parsed, nil
}

// bootOptions points the runtime at the bundled boot libraries.
func (a *Assembler) bootOptions() []string {
	bootDir := a.layout.BootDir()

	if a.mode == config.ModeClassPath {
		if !dirExists(a.fs, bootDir) || len(a.bootJars) == 0 {
			return nil
		}

		jars := make([]string, 0, len(a.bootJars))
		for _, jar := range a.bootJars {
			jars = append(jars, filepath.Join(bootDir, jar))
		}

		return []string{"-Djava.class.path=" + strings.Join(jars, string(os.PathListSeparator))}
	}

	modulePath := bootDir + string(os.PathListSeparator) + filepath.Join(bootDir, "spi")

	return []string{
		"--module-path=" + modulePath,
		"-Djdk.module.main=" + a.mainModule,
		"-Dconsulo.module.path.boot=true",
	}
}

// predefinedOptions exposes installation paths to the application.
func (a *Assembler) predefinedOptions() []string {
	return []string{
		// deprecated spellings, kept for old platform builds
		"-Didea.properties.file=" + a.propertiesFile,
		"-Didea.home.path=" + a.layout.WorkDir,

		"-Dconsulo.properties.file=" + a.propertiesFile,
		"-Dconsulo.home.path=" + a.layout.WorkDir,
		"-Dconsulo.app.home.path=" + a.layout.AppHome,
	}
}

func fileExists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)

	return err == nil && !info.IsDir()
}

func dirExists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)

	return err == nil && info.IsDir()
}
