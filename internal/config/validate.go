package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// envVarRegex matches portable environment variable names.
var envVarRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// classNameRegex matches internal class names such as consulo/desktop/boot/main/Main.
var classNameRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(/[A-Za-z_$][A-Za-z0-9_$]*)*$`)

// Validate checks an effective configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is required")
	}

	var errs []error

	if cfg.Runtime != nil {
		if err := ValidateEnvVarKey(cfg.Runtime.OverrideEnv); err != nil {
			errs = append(errs, fmt.Errorf("runtime.override_env: %w", err))
		}

		if err := ValidateEnvVarKey(cfg.Runtime.FallbackEnv); err != nil {
			errs = append(errs, fmt.Errorf("runtime.fallback_env: %w", err))
		}
	}

	if cfg.Options != nil {
		switch cfg.Options.Mode {
		case ModeModulePath, ModeClassPath, "":
		default:
			errs = append(errs, fmt.Errorf("options.mode: invalid mode %q (must be module or classpath)", cfg.Options.Mode))
		}
	}

	if cfg.Entry != nil {
		if err := ValidateClassName(cfg.Entry.MainClass); err != nil {
			errs = append(errs, fmt.Errorf("entry.main_class: %w", err))
		}

		if err := ValidateClassName(cfg.Entry.ProcessorClass); err != nil {
			errs = append(errs, fmt.Errorf("entry.processor_class: %w", err))
		}

		if err := ValidateRequired(cfg.Entry.ProcessorMethod, "entry.processor_method"); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ValidateEnvVarKey checks if an environment variable key is valid.
func ValidateEnvVarKey(key string) error {
	if key == "" {
		return errors.New("environment variable key cannot be empty")
	}

	if !envVarRegex.MatchString(key) {
		return errors.New("environment variable key must contain only letters, numbers, and underscores")
	}

	return nil
}

// ValidateClassName checks a slash-separated internal class name.
func ValidateClassName(name string) error {
	if name == "" {
		return errors.New("class name cannot be empty")
	}

	if strings.Contains(name, ".") {
		return fmt.Errorf("class name %q must use '/' separators, not '.'", name)
	}

	if !classNameRegex.MatchString(name) {
		return fmt.Errorf("invalid class name %q", name)
	}

	return nil
}

// ValidateRequired checks if a required field is empty.
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	return nil
}
