package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/consulo/go-launcher/internal/config"
)

// ErrAborted is returned when the user declines to save.
var ErrAborted = errors.New("aborted")

// PromptForConfig runs the interactive flow for the per-user configuration.
// existing seeds the defaults shown in each prompt and is not modified.
func PromptForConfig(existing *config.Config) (*config.Config, error) {
	if existing == nil {
		existing = config.Default()
	}

	cfg := existing.Clone()
	ensureSections(cfg)

	// 1. Runtime discovery
	if err := promptRuntime(cfg.Runtime); err != nil {
		return nil, err
	}

	// 2. Boot libraries
	if err := promptMode(cfg.Options); err != nil {
		return nil, err
	}

	// 3. Single instance
	if err := promptInstance(cfg.Instance); err != nil {
		return nil, err
	}

	// 4. Logging
	if err := promptSettings(cfg.Settings); err != nil {
		return nil, err
	}

	// 5. Confirmation
	if err := promptConfirmation(existing, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func ensureSections(cfg *config.Config) {
	defaults := config.Default()

	if cfg.Runtime == nil {
		cfg.Runtime = defaults.Runtime
	}

	if cfg.Options == nil {
		cfg.Options = defaults.Options
	}

	if cfg.Instance == nil {
		cfg.Instance = defaults.Instance
	}

	if cfg.Settings == nil {
		cfg.Settings = defaults.Settings
	}
}

// stringValidator adapts a string check to survey's validator signature.
func stringValidator(check func(string) error) survey.Validator {
	return func(ans interface{}) error {
		val, ok := ans.(string)
		if !ok {
			return errors.New("expected string value")
		}

		return check(val)
	}
}

func promptRuntime(rc *config.RuntimeConfig) error {
	if err := survey.AskOne(&survey.Input{
		Message: "Runtime override variable:",
		Default: rc.OverrideEnv,
		Help:    "Environment variable naming a runtime that always wins over discovery",
	}, &rc.OverrideEnv, survey.WithValidator(stringValidator(ValidateEnvVarName))); err != nil {
		return err
	}

	var versions string
	if err := survey.AskOne(&survey.Input{
		Message: "Runtime versions to look up:",
		Default: strings.Join(rc.Versions, ", "),
		Help:    "Comma-separated versions tried in order when no bundled runtime is found",
	}, &versions, survey.WithValidator(stringValidator(ValidateVersionList))); err != nil {
		return err
	}

	rc.Versions = SplitList(versions)

	return nil
}

func promptMode(oc *config.OptionsConfig) error {
	mode := string(oc.Mode)
	if mode == "" {
		mode = string(config.ModeModulePath)
	}

	if err := survey.AskOne(&survey.Select{
		Message: "Boot library mode:",
		Options: []string{string(config.ModeModulePath), string(config.ModeClassPath)},
		Default: mode,
		Help:    "module: boot/ is passed as a module path (Java 9+)\nclasspath: boot jars are passed as a class path",
	}, &mode, survey.WithValidator(stringValidator(ValidateMode))); err != nil {
		return err
	}

	oc.Mode = config.ClassLoadingMode(mode)

	return nil
}

func promptInstance(ic *config.InstanceConfig) error {
	single := !ic.Disabled
	if err := survey.AskOne(&survey.Confirm{
		Message: "Forward launches to an already running instance?",
		Default: single,
	}, &single); err != nil {
		return err
	}

	ic.Disabled = !single

	return nil
}

func promptSettings(s *config.Settings) error {
	level := strings.ToLower(s.LogLevel)
	if ValidateLogLevel(level) != nil {
		level = "info"
	}

	if err := survey.AskOne(&survey.Select{
		Message: "Log level:",
		Options: LogLevels,
		Default: level,
	}, &level, survey.WithValidator(stringValidator(ValidateLogLevel))); err != nil {
		return err
	}

	s.LogLevel = level

	return survey.AskOne(&survey.Input{
		Message: "Log file (empty for stderr):",
		Default: s.LogFile,
	}, &s.LogFile)
}

func promptConfirmation(before, after *config.Config) error {
	fmt.Println()
	fmt.Print(FormatChanges(config.DiffConfigs(before, after)))
	fmt.Println()

	var confirm bool
	if err := survey.AskOne(&survey.Confirm{
		Message: "Save this configuration?",
		Default: true,
	}, &confirm); err != nil {
		return err
	}

	if !confirm {
		return ErrAborted
	}

	return nil
}
