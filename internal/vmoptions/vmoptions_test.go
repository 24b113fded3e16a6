package vmoptions

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/consulo/go-launcher/internal/config"
	"github.com/consulo/go-launcher/internal/failure"
	"github.com/consulo/go-launcher/internal/platform"
)

func testLayout() platform.Layout {
	appHome := filepath.FromSlash("/opt/consulo")

	return platform.Layout{
		Exe:     filepath.Join(appHome, "consulo"),
		AppHome: appHome,
		WorkDir: filepath.Join(appHome, "platform", "build3000"),
	}
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()

	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantLines  []string
		wantServer bool
	}{
		{
			name:       "comments blanks and server directive",
			input:      "# comment\n\n-Xmx512m\n-server\n-Dfoo=bar\n",
			wantLines:  []string{"-Xmx512m", "-Dfoo=bar"},
			wantServer: true,
		},
		{
			name:      "crlf and trailing whitespace",
			input:     "-Xms128m \t\r\n-ea\r\n",
			wantLines: []string{"-Xms128m", "-ea"},
		},
		{
			name:      "no trailing newline",
			input:     "-Xss2m",
			wantLines: []string{"-Xss2m"},
		},
		{
			name:      "indented hash is an option",
			input:     " #not-a-comment\n",
			wantLines: []string{" #not-a-comment"},
		},
		{
			name:      "duplicates are kept",
			input:     "-Xmx1g\n-Xmx2g\n",
			wantLines: []string{"-Xmx1g", "-Xmx2g"},
		},
		{
			name:  "empty",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			if !reflect.DeepEqual(got.Lines, tt.wantLines) {
				t.Errorf("Lines = %q, want %q", got.Lines, tt.wantLines)
			}

			if got.ServerPreferred != tt.wantServer {
				t.Errorf("ServerPreferred = %v, want %v", got.ServerPreferred, tt.wantServer)
			}
		})
	}
}

func TestAssemble_ModulePath(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	layout := testLayout()
	primary := filepath.Join(layout.AppHome, "bin", "consulo64.vmoptions")
	props := filepath.Join(layout.AppHome, "bin", "consulo.properties")

	writeFile(t, fs, primary, "# comment\n\n-Xmx512m\n-server\n-Dfoo=bar\n")

	result, err := NewAssembler(fs, layout, config.Default(), props).Assemble(primary)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if !result.ServerPreferred() {
		t.Error("ServerPreferred() = false, want true")
	}

	sep := string(os.PathListSeparator)
	want := []string{
		"-Xmx512m",
		"-Dfoo=bar",
		"-Djb.vmOptions=" + primary,
		"-Dconsulo.vm.options.files=" + primary,
		"--module-path=" + layout.BootDir() + sep + filepath.Join(layout.BootDir(), "spi"),
		"-Djdk.module.main=consulo.desktop.bootstrap",
		"-Dconsulo.module.path.boot=true",
		"-Didea.properties.file=" + props,
		"-Didea.home.path=" + layout.WorkDir,
		"-Dconsulo.properties.file=" + props,
		"-Dconsulo.home.path=" + layout.WorkDir,
		"-Dconsulo.app.home.path=" + layout.AppHome,
	}

	if got := result.Options(); !reflect.DeepEqual(got, want) {
		t.Errorf("Options() =\n%q\nwant\n%q", got, want)
	}

	if result.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", result.Len(), len(want))
	}
}

func TestAssemble_SystemFileAppended(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	layout := testLayout()
	primary := filepath.Join(layout.AppHome, "bin", "consulo.vmoptions")

	writeFile(t, fs, primary, "-Xmx512m\n")
	writeFile(t, fs, filepath.Join(layout.BinDir(), "app.vmoptions"), "-server\n-Dsystem=1\n")

	result, err := NewAssembler(fs, layout, config.Default(), "props").Assemble(primary)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	opts := result.Options()
	if opts[0] != "-Xmx512m" || opts[1] != "-Dsystem=1" {
		t.Errorf("Options()[:2] = %q, want primary then system lines", opts[:2])
	}

	if !result.ServerPreferred() {
		t.Error("server directive in system file should set ServerPreferred")
	}

	if files := result.FilesUsed(); len(files) != 1 || files[0] != primary {
		t.Errorf("FilesUsed() = %v, want only the primary file", files)
	}
}

func TestAssemble_ClassPath(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	layout := testLayout()
	primary := filepath.Join(layout.AppHome, "bin", "consulo.vmoptions")

	writeFile(t, fs, primary, "-Xmx512m\n")

	if err := fs.MkdirAll(layout.BootDir(), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Options.Mode = config.ModeClassPath
	cfg.Options.BootJars = []string{"a.jar", "b.jar"}

	result, err := NewAssembler(fs, layout, cfg, "props").Assemble(primary)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	want := "-Djava.class.path=" + filepath.Join(layout.BootDir(), "a.jar") +
		string(os.PathListSeparator) + filepath.Join(layout.BootDir(), "b.jar")

	var found bool

	for _, opt := range result.Options() {
		if strings.HasPrefix(opt, "--module-path=") {
			t.Errorf("class path mode should not emit %q", opt)
		}

		if opt == want {
			found = true
		}
	}

	if !found {
		t.Errorf("Options() = %q, missing %q", result.Options(), want)
	}
}

func TestAssemble_MissingPrimary(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	primary := filepath.FromSlash("/opt/consulo/bin/missing.vmoptions")

	_, err := NewAssembler(fs, testLayout(), nil, "props").Assemble(primary)
	if !errors.Is(err, failure.ErrOptionsFileMissing) {
		t.Fatalf("Assemble() error = %v, want ErrOptionsFileMissing", err)
	}

	if !strings.Contains(err.Error(), primary) {
		t.Errorf("error %q should name the file", err)
	}
}

func TestParse_LongLine(t *testing.T) {
	t.Parallel()

	classPath := "-Djava.class.path=" + strings.Repeat("/opt/consulo/lib/some-library.jar:", 4000)

	parsed, err := Parse(strings.NewReader("-Xmx512m\n" + classPath + "\n-ea\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(parsed.Lines) != 3 || parsed.Lines[1] != classPath {
		t.Errorf("Parse() kept %d lines, want the long line intact", len(parsed.Lines))
	}
}

func TestAssemble_UnreadablePrimary(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	primary := filepath.FromSlash("/opt/consulo/bin/consulo.vmoptions")
	writeFile(t, fs, primary, "-Xmx512m\n"+strings.Repeat("x", MaxLineLength+1)+"\n")

	_, err := NewAssembler(fs, testLayout(), nil, "props").Assemble(primary)
	if !errors.Is(err, failure.ErrOptionsFileMissing) {
		t.Fatalf("Assemble() error = %v, want ErrOptionsFileMissing", err)
	}

	var ferr *failure.Error
	if !errors.As(err, &ferr) || !strings.HasPrefix(ferr.Message, "Cannot read VM options file") {
		t.Errorf("error %q should say the existing file could not be read", err)
	}
}

func TestResult_OptionsIsCopy(t *testing.T) {
	t.Parallel()

	r := &Result{options: []string{"-Xmx1g"}}

	opts := r.Options()
	opts[0] = "changed"

	if r.Options()[0] != "-Xmx1g" {
		t.Error("Options() returned a view into internal state")
	}
}
