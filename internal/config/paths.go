package config

import (
	"path/filepath"
	"strings"

	"github.com/valksor/go-toolkit/paths"
)

// Path configuration for the launcher's per-user directory.
var pathsConfig = &paths.Config{
	Vendor:   ".consulo",
	ToolName: "launcher",
}

const (
	// GlobalEnvFile is the name of the per-user environment file.
	GlobalEnvFile = ".env"

	// InstallConfigFile is the name of the installation-wide config file under bin/.
	InstallConfigFile = "launcher.yaml"

	// BinDir is the installation's binary directory.
	BinDir = "bin"

	// OptionsFileExt is the extension of VM options files.
	OptionsFileExt = ".vmoptions"
)

// SetHomeDirForTesting overrides the home directory function for testing.
// Returns a restore function that should be deferred.
func SetHomeDirForTesting(dir string) func() {
	return paths.SetHomeDirForTesting(dir)
}

// GlobalDir returns the path to the per-user launcher directory.
// Default: ~/.consulo/launcher/.
func GlobalDir() (string, error) {
	return pathsConfig.GlobalDir()
}

// GlobalConfigPath returns the path to the per-user configuration file.
// Default: ~/.consulo/launcher/config.yaml.
func GlobalConfigPath() (string, error) {
	return pathsConfig.GlobalConfigPath()
}

// GlobalEnvPath returns the path to the per-user environment file.
// Default: ~/.consulo/launcher/.env.
func GlobalEnvPath() (string, error) {
	return pathsConfig.GlobalFilePath(GlobalEnvFile)
}

// EnsureGlobalDir creates the per-user directory if it doesn't exist.
func EnsureGlobalDir() (string, error) {
	return pathsConfig.EnsureGlobalDir()
}

// InstallConfigPath returns appHome/bin/launcher.yaml.
func InstallConfigPath(appHome string) string {
	return filepath.Join(appHome, BinDir, InstallConfigFile)
}

// OptionsFileName returns the options file name for an executable:
// consulo64.exe becomes consulo64.vmoptions.
func OptionsFileName(exePath string) string {
	base := filepath.Base(exePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	return base + OptionsFileExt
}

// ResolveOptionsFile returns the primary VM options file for this run.
// An explicit configured path wins. Otherwise a per-user copy is preferred
// over the installation's bin/ copy. The returned path is not guaranteed to
// exist; the assembler reports a missing file.
func ResolveOptionsFile(cfg *Config, appHome, exePath string) string {
	if cfg != nil && cfg.Options != nil && cfg.Options.File != "" {
		return ExpandPath(cfg.Options.File)
	}

	name := OptionsFileName(exePath)

	if dir, err := GlobalDir(); err == nil {
		userFile := filepath.Join(dir, name)
		if FileExists(userFile) {
			return userFile
		}
	}

	return filepath.Join(appHome, BinDir, name)
}

// ResolvePropertiesFile returns the properties file path handed to the runtime.
func ResolvePropertiesFile(cfg *Config, appHome string) string {
	name := Default().Options.PropertiesFile
	if cfg != nil && cfg.Options != nil && cfg.Options.PropertiesFile != "" {
		name = cfg.Options.PropertiesFile
	}

	name = ExpandPath(name)
	if filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(appHome, BinDir, name)
}

// FileExists checks if a file exists and is not a directory.
func FileExists(path string) bool {
	return paths.FileExists(path)
}

// DirExists checks if a directory exists.
func DirExists(path string) bool {
	return paths.DirExists(path)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	return paths.ExpandPath(path)
}
