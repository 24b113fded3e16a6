// Package config provides configuration types and loading for the launcher.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ClassLoadingMode selects how the boot libraries are handed to the runtime.
type ClassLoadingMode string

const (
	// ModeModulePath passes the boot directory as a module path (Java 9+).
	ModeModulePath ClassLoadingMode = "module"
	// ModeClassPath passes the boot jars as a flat class path.
	ModeClassPath ClassLoadingMode = "classpath"
)

// Config represents the complete launcher configuration.
// Compiled defaults are overlaid by the installation's bin/launcher.yaml and
// then by the user's ~/.consulo/launcher/config.yaml.
type Config struct {
	Runtime  *RuntimeConfig  `yaml:"runtime,omitempty"`
	Options  *OptionsConfig  `yaml:"options,omitempty"`
	Entry    *EntryConfig    `yaml:"entry,omitempty"`
	Instance *InstanceConfig `yaml:"instance,omitempty"`
	Settings *Settings       `yaml:"settings,omitempty"`
}

// RuntimeConfig controls runtime discovery.
type RuntimeConfig struct {
	OverrideEnv string   `yaml:"override_env,omitempty"`
	FallbackEnv string   `yaml:"fallback_env,omitempty"`
	Versions    []string `yaml:"versions,omitempty"`
}

// OptionsConfig controls VM option assembly.
type OptionsConfig struct {
	File           string           `yaml:"file,omitempty"`
	SystemFile     string           `yaml:"system_file,omitempty"`
	PropertiesFile string           `yaml:"properties_file,omitempty"`
	Mode           ClassLoadingMode `yaml:"mode,omitempty"`
	BootJars       []string         `yaml:"boot_jars,omitempty"`
}

// EntryConfig names the managed entry points.
// Class names use the runtime's internal slash-separated form.
type EntryConfig struct {
	MainModule      string `yaml:"main_module,omitempty"`
	MainClass       string `yaml:"main_class,omitempty"`
	ProcessorClass  string `yaml:"processor_class,omitempty"`
	ProcessorMethod string `yaml:"processor_method,omitempty"`
}

// InstanceConfig controls single-instance coordination.
type InstanceConfig struct {
	Disabled bool   `yaml:"disabled,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// Settings contains ambient launcher settings.
type Settings struct {
	LogLevel string `yaml:"log_level,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Runtime: &RuntimeConfig{
			OverrideEnv: "CONSULO_JRE",
			FallbackEnv: "JAVA_HOME",
			Versions:    []string{"11", "12", "13", "14", "15"},
		},
		Options: &OptionsConfig{
			SystemFile:     "app.vmoptions",
			PropertiesFile: "consulo.properties",
			Mode:           ModeModulePath,
			BootJars: []string{
				"consulo-bootstrap.jar",
				"consulo-container-api.jar",
				"consulo-container-impl.jar",
				"consulo-desktop-bootstrap.jar",
				"consulo-util-nodep.jar",
			},
		},
		Entry: &EntryConfig{
			MainModule:      "consulo.desktop.bootstrap",
			MainClass:       "consulo/desktop/boot/main/Main",
			ProcessorClass:  "consulo/desktop/boot/main/windows/WindowsCommandLineProcessor",
			ProcessorMethod: "processWindowsLauncherCommandLine",
		},
		Instance: &InstanceConfig{
			Prefix: "ConsuloLauncher",
		},
		Settings: DefaultSettings(),
	}
}

// DefaultSettings returns the default settings.
func DefaultSettings() *Settings {
	return &Settings{
		LogLevel: "info",
	}
}

// Load reads a configuration file from the given path.
// The result only holds the values present in the file; use Merge to apply it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse parses YAML configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// LoadEffective builds the effective configuration for an installation.
// Missing files are skipped; malformed files are errors.
func LoadEffective(appHome string) (*Config, error) {
	result := Default()

	installPath := InstallConfigPath(appHome)
	if FileExists(installPath) {
		installCfg, err := Load(installPath)
		if err != nil {
			return nil, fmt.Errorf("loading install config: %w", err)
		}

		result = Merge(result, installCfg)
	}

	userPath, err := GlobalConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting user config path: %w", err)
	}

	if FileExists(userPath) {
		userCfg, err := Load(userPath)
		if err != nil {
			return nil, fmt.Errorf("loading user config: %w", err)
		}

		result = Merge(result, userCfg)
	}

	if err := Validate(result); err != nil {
		return nil, err
	}

	return result, nil
}

// Save writes the configuration to the given path.
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := &Config{}

	if c.Runtime != nil {
		clone.Runtime = &RuntimeConfig{
			OverrideEnv: c.Runtime.OverrideEnv,
			FallbackEnv: c.Runtime.FallbackEnv,
			Versions:    cloneSlice(c.Runtime.Versions),
		}
	}

	if c.Options != nil {
		opts := *c.Options
		opts.BootJars = cloneSlice(c.Options.BootJars)
		clone.Options = &opts
	}

	if c.Entry != nil {
		entry := *c.Entry
		clone.Entry = &entry
	}

	if c.Instance != nil {
		inst := *c.Instance
		clone.Instance = &inst
	}

	if c.Settings != nil {
		settings := *c.Settings
		clone.Settings = &settings
	}

	return clone
}

func cloneSlice(s []string) []string {
	if s == nil {
		return nil
	}

	result := make([]string, len(s))
	copy(result, s)

	return result
}
