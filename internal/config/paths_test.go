package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mockHomeDir sets up a mock home directory for testing and returns it.
func mockHomeDir(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	restore := SetHomeDirForTesting(tmpDir)
	t.Cleanup(restore)

	return tmpDir
}

func TestGlobalDir(t *testing.T) {
	home := mockHomeDir(t)

	dir, err := GlobalDir()
	if err != nil {
		t.Fatalf("GlobalDir() error = %v", err)
	}

	if !strings.HasPrefix(dir, home) {
		t.Errorf("GlobalDir() = %s, expected to be under %s", dir, home)
	}

	if filepath.Base(dir) != "launcher" || filepath.Base(filepath.Dir(dir)) != ".consulo" {
		t.Errorf("GlobalDir() = %s, expected .consulo/launcher", dir)
	}
}

func TestGlobalPaths(t *testing.T) {
	mockHomeDir(t)

	dir, err := GlobalDir()
	if err != nil {
		t.Fatal(err)
	}

	cfgPath, err := GlobalConfigPath()
	if err != nil {
		t.Fatalf("GlobalConfigPath() error = %v", err)
	}

	if filepath.Dir(cfgPath) != dir || filepath.Base(cfgPath) != "config.yaml" {
		t.Errorf("GlobalConfigPath() = %s", cfgPath)
	}

	envPath, err := GlobalEnvPath()
	if err != nil {
		t.Fatalf("GlobalEnvPath() error = %v", err)
	}

	if envPath != filepath.Join(dir, GlobalEnvFile) {
		t.Errorf("GlobalEnvPath() = %s", envPath)
	}
}

func TestEnsureGlobalDir(t *testing.T) {
	mockHomeDir(t)

	dir, err := EnsureGlobalDir()
	if err != nil {
		t.Fatalf("EnsureGlobalDir() error = %v", err)
	}

	if !DirExists(dir) {
		t.Errorf("EnsureGlobalDir() did not create %s", dir)
	}
}

func TestOptionsFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		exe  string
		want string
	}{
		{filepath.FromSlash("/opt/consulo/consulo"), "consulo.vmoptions"},
		{`consulo64.exe`, "consulo64.vmoptions"},
		{filepath.FromSlash("/opt/consulo/consulo.sh"), "consulo.vmoptions"},
	}

	for _, tt := range tests {
		if got := OptionsFileName(tt.exe); got != tt.want {
			t.Errorf("OptionsFileName(%q) = %q, want %q", tt.exe, got, tt.want)
		}
	}
}

func TestResolveOptionsFile(t *testing.T) {
	home := mockHomeDir(t)
	appHome := filepath.FromSlash("/opt/consulo")
	exe := filepath.Join(appHome, "consulo64")

	// install copy when the user has none
	want := filepath.Join(appHome, BinDir, "consulo64.vmoptions")
	if got := ResolveOptionsFile(Default(), appHome, exe); got != want {
		t.Errorf("ResolveOptionsFile() = %s, want %s", got, want)
	}

	// user copy wins over the install copy
	userDir := filepath.Join(home, ".consulo", "launcher")
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		t.Fatal(err)
	}

	userFile := filepath.Join(userDir, "consulo64.vmoptions")
	if err := os.WriteFile(userFile, []byte("-Xmx2g\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := ResolveOptionsFile(Default(), appHome, exe); got != userFile {
		t.Errorf("ResolveOptionsFile() = %s, want user copy %s", got, userFile)
	}

	// explicit configuration wins over both
	cfg := Default()
	cfg.Options.File = filepath.FromSlash("/etc/consulo.vmoptions")

	if got := ResolveOptionsFile(cfg, appHome, exe); got != cfg.Options.File {
		t.Errorf("ResolveOptionsFile() = %s, want configured %s", got, cfg.Options.File)
	}
}

func TestResolvePropertiesFile(t *testing.T) {
	t.Parallel()

	appHome := filepath.FromSlash("/opt/consulo")

	if got := ResolvePropertiesFile(nil, appHome); got != filepath.Join(appHome, BinDir, "consulo.properties") {
		t.Errorf("ResolvePropertiesFile(nil) = %s", got)
	}

	abs, err := filepath.Abs(filepath.FromSlash("/etc/consulo.properties"))
	if err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Options.PropertiesFile = abs

	if got := ResolvePropertiesFile(cfg, appHome); got != abs {
		t.Errorf("ResolvePropertiesFile() = %s, want %s", got, abs)
	}
}

func TestInstallConfigPath(t *testing.T) {
	t.Parallel()

	got := InstallConfigPath(filepath.FromSlash("/opt/consulo"))
	if got != filepath.Join(filepath.FromSlash("/opt/consulo"), "bin", "launcher.yaml") {
		t.Errorf("InstallConfigPath() = %s", got)
	}
}
