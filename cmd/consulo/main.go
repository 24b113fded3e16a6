// Package main is the entry point for the Consulo launcher.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/consulo/go-launcher/internal/config"
	"github.com/consulo/go-launcher/internal/failure"
	"github.com/consulo/go-launcher/internal/launch"
	"github.com/consulo/go-launcher/internal/report"
	"github.com/valksor/go-toolkit/log"
)

// EnvDebug enables launcher logging on stderr.
const EnvDebug = "CONSULO_LAUNCHER_DEBUG"

// exitCode is the process exit code chosen by the launch.
var exitCode int

func init() {
	// The runtime is created and its entry point invoked on the main thread.
	runtime.LockOSThread()

	// Started from Explorer or a shortcut is the normal case on Windows.
	cobra.MousetrapHelpText = ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(failure.ExitUnknown)
	}

	os.Exit(exitCode)
}

var rootCmd = &cobra.Command{
	Use:   "consulo [args...]",
	Short: "Consulo - launch the IDE",
	Long: `Launch Consulo on the best available Java runtime.

All arguments are handed to the IDE unchanged. When Consulo is already
running from this installation the arguments are forwarded to it instead.

Environment:
  CONSULO_JRE                          runtime to use, overrides discovery
  JAVA_HOME                            runtime used when none is bundled
  CONSULO_LAUNCHER_NO_SINGLE_INSTANCE  never forward to a running instance
  CONSULO_LAUNCHER_DEBUG               log launcher decisions to stderr`,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	Args:               cobra.ArbitraryArgs,
	RunE:               runLaunch,
}

func runLaunch(cmd *cobra.Command, args []string) error {
	closeLog := configureLogger(nil)

	exe, err := executable()
	if err != nil {
		closeLog()

		return err
	}

	logger := log.Logger()

	setup, err := launch.NewSetup(nil, exe, nil, logger)
	if err != nil {
		closeLog()
		report.Default(logger).Fatal(report.TitleLaunchError, err.Error())
		exitCode = failure.ExitCode(err)

		return nil
	}

	// Settings may name a log file or level; reconfigure with them.
	closeLog()
	closeLog = configureLogger(setup.Config.Settings)
	defer closeLog()

	logger = log.Logger()
	launcher := launch.New(setup.Options(report.Default(logger), logger))

	exitCode = launcher.Run(context.Background(), args)

	return nil
}

// executable returns the resolved path of the running launcher.
func executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("getting executable path: %w", err)
	}

	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return exe, nil
}

// configureLogger sets up logging and returns a function releasing the log file.
// Without CONSULO_LAUNCHER_DEBUG or a configured log file nothing is logged.
func configureLogger(settings *config.Settings) func() {
	debug := os.Getenv(EnvDebug) != ""

	var output io.Writer = io.Discard
	if debug {
		output = os.Stderr
	}

	closer := func() {}

	if settings != nil && settings.LogFile != "" {
		f, err := os.OpenFile(config.ExpandPath(settings.LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			output = f
			closer = func() { _ = f.Close() }
		}
	}

	verbose := debug || (settings != nil && strings.EqualFold(settings.LogLevel, "debug"))

	log.Configure(log.Options{
		Output:  output,
		Verbose: verbose,
	})

	return closer
}
