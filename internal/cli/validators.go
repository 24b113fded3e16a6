package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/consulo/go-launcher/internal/config"
)

// LogLevels are the accepted settings.log_level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// ValidateEnvVarName checks the name of a runtime environment variable.
func ValidateEnvVarName(name string) error {
	return config.ValidateEnvVarKey(strings.TrimSpace(name))
}

// ValidateVersionList checks a comma-separated list of runtime versions
// such as "11, 17, 21".
func ValidateVersionList(s string) error {
	versions := SplitList(s)
	if len(versions) == 0 {
		return errors.New("at least one runtime version is required")
	}

	for _, v := range versions {
		if _, err := version.NewVersion(v); err != nil {
			return fmt.Errorf("invalid runtime version %q", v)
		}
	}

	return nil
}

// ValidateMode checks a class loading mode.
func ValidateMode(mode string) error {
	switch config.ClassLoadingMode(mode) {
	case config.ModeModulePath, config.ModeClassPath:
		return nil
	default:
		return fmt.Errorf("invalid mode %q (must be module or classpath)", mode)
	}
}

// ValidateLogLevel checks a log level name.
func ValidateLogLevel(level string) error {
	for _, l := range LogLevels {
		if strings.EqualFold(level, l) {
			return nil
		}
	}

	return fmt.Errorf("invalid log level %q (must be one of %s)", level, strings.Join(LogLevels, ", "))
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
