package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/consulo/go-launcher/internal/config"
)

func TestRootCmd(t *testing.T) {
	t.Parallel()

	if rootCmd == nil {
		t.Fatal("rootCmd is nil")
	}

	if !rootCmd.DisableFlagParsing {
		t.Error("rootCmd must hand every argument to the IDE")
	}

	if !rootCmd.SilenceUsage || !rootCmd.SilenceErrors {
		t.Error("rootCmd should silence usage and errors")
	}

	if rootCmd.HasSubCommands() {
		t.Error("the launcher accepts no subcommands")
	}
}

func TestMousetrapDisabled(t *testing.T) {
	t.Parallel()

	// a non-empty text makes cobra exit when started from Explorer
	if cobra.MousetrapHelpText != "" {
		t.Errorf("cobra.MousetrapHelpText = %q, want empty", cobra.MousetrapHelpText)
	}
}

func TestExecutable(t *testing.T) {
	t.Parallel()

	exe, err := executable()
	if err != nil {
		t.Fatalf("executable() error = %v", err)
	}

	if !filepath.IsAbs(exe) {
		t.Errorf("executable() = %s, want an absolute path", exe)
	}
}

func TestConfigureLogger(t *testing.T) {
	// Not parallel: sets the environment and the global logger.
	t.Run("discard by default", func(t *testing.T) {
		t.Setenv(EnvDebug, "")

		closeLog := configureLogger(nil)
		defer closeLog()
	})

	t.Run("log file", func(t *testing.T) {
		t.Setenv(EnvDebug, "")

		path := filepath.Join(t.TempDir(), "launcher.log")
		closeLog := configureLogger(&config.Settings{LogLevel: "debug", LogFile: path})
		closeLog()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("unwritable log file", func(t *testing.T) {
		t.Setenv(EnvDebug, "1")

		path := filepath.Join(t.TempDir(), "missing", "launcher.log")
		closeLog := configureLogger(&config.Settings{LogFile: path})
		closeLog()

		if _, err := os.Stat(path); err == nil {
			t.Error("log file should not be created in a missing directory")
		}
	})
}
