// Package main is the entry point for consuloctl, the launcher diagnostics tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/consulo/go-launcher/internal/cli"
	"github.com/consulo/go-launcher/internal/config"
	"github.com/consulo/go-launcher/internal/instance"
	"github.com/consulo/go-launcher/internal/jvm"
	"github.com/consulo/go-launcher/internal/launch"
	"github.com/consulo/go-launcher/internal/platform"
	"github.com/consulo/go-launcher/internal/version"
	"github.com/valksor/go-toolkit/log"
)

var (
	// Global flags.
	verbose      bool
	quiet        bool
	outputFormat string
	homeFlag     string
	launcherFlag string

	// config init flags.
	forceInit       bool
	interactiveInit bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "consuloctl",
	Short: "Consulo launcher diagnostics",
	Long: `Inspect what the Consulo launcher would do for an installation.

Configuration:
  Install: <home>/bin/launcher.yaml
  User:    ~/.consulo/launcher/config.yaml
  User:    ~/.consulo/launcher/.env`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show the Java runtime the launcher would use",
	RunE:  runLocate,
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Show the assembled VM options",
	RunE:  runOptions,
}

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Show the single-instance channel names",
	RunE:  runChannel,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage launcher configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.consulo/launcher/config.yaml",
	Long: `Initialize the per-user launcher configuration.

Creates ~/.consulo/launcher/config.yaml from the built-in defaults, or from
your answers with --interactive. Existing files are preserved unless --force
is used.`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	RunE:  runConfigValidate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Info("consuloctl"))
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress and info messages")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output-format", "", "Output format: text, json or toon")
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "Installation directory (default: directory of consuloctl)")
	rootCmd.PersistentFlags().StringVar(&launcherFlag, "launcher", defaultLauncherName(), "Launcher executable name inside the installation")

	// Add commands
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(channelCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	// config init flags
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing configuration file")
	configInitCmd.Flags().BoolVarP(&interactiveInit, "interactive", "i", false, "Ask for each setting")
}

func defaultLauncherName() string {
	switch {
	case runtime.GOOS == "windows" && runtime.GOARCH == "386":
		return "consulo.exe"
	case runtime.GOOS == "windows":
		return "consulo64.exe"
	default:
		return "consulo"
	}
}

// launcherPath returns the launcher executable that is being diagnosed.
func launcherPath() (string, error) {
	home := homeFlag
	if home == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("getting executable path: %w", err)
		}

		home = filepath.Dir(exe)
	}

	return filepath.Join(config.ExpandPath(home), launcherFlag), nil
}

func newSetup(fs afero.Fs) (*launch.Setup, *slog.Logger, error) {
	configureLogger()
	logger := log.Logger()

	exe, err := launcherPath()
	if err != nil {
		return nil, nil, err
	}

	setup, err := launch.NewSetup(fs, exe, nil, logger)
	if err != nil {
		return nil, nil, err
	}

	return setup, logger, nil
}

func render(cmd *cobra.Command, r cli.Report) error {
	format, err := cli.ResolveFormat(outputFormat)
	if err != nil {
		return err
	}

	return cli.Render(cmd.OutOrStdout(), format, r)
}

func runLocate(cmd *cobra.Command, args []string) error {
	fs := afero.NewOsFs()

	setup, logger, err := newSetup(fs)
	if err != nil {
		return err
	}

	r := &cli.LocateReport{Adjacent: setup.Locator.AdjacentDirs()}

	r.Candidate, r.Err = setup.Locator.Locate()
	if r.Err == nil {
		serverPreferred := true
		if opts, err := setup.Assembler.Assemble(setup.OptionsFile); err == nil {
			serverPreferred = opts.ServerPreferred()
		} else {
			logger.Debug("options not assembled, assuming server VM", "error", err)
		}

		r.Library = jvm.SelectLibrary(fs, r.Candidate.Root, serverPreferred)
	}

	return render(cmd, r)
}

func runOptions(cmd *cobra.Command, args []string) error {
	setup, _, err := newSetup(nil)
	if err != nil {
		return err
	}

	opts, err := setup.Assembler.Assemble(setup.OptionsFile)
	if err != nil {
		return err
	}

	return render(cmd, &cli.OptionsReport{
		Files:           opts.FilesUsed(),
		Options:         opts.Options(),
		ServerPreferred: opts.ServerPreferred(),
	})
}

func runChannel(cmd *cobra.Command, args []string) error {
	setup, _, err := newSetup(nil)
	if err != nil {
		return err
	}

	names := setup.Coordinator.Names(setup.Layout.Exe)

	return render(cmd, &cli.ChannelReport{
		Exe:     setup.Layout.Exe,
		Mapping: names.Mapping,
		Event:   names.Event,
		Dir:     instance.DefaultDir(),
		Enabled: !setup.Config.Instance.Disabled && instance.SharingEnabled(),
	})
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configureLogger()
	out := cmd.OutOrStdout()

	dir, err := config.EnsureGlobalDir()
	if err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	cfgPath, err := config.GlobalConfigPath()
	if err != nil {
		return err
	}

	cfgExists := config.FileExists(cfgPath)
	if cfgExists && !forceInit {
		fmt.Fprintf(out, "  [exists]    %s\n", cfgPath)
		fmt.Fprintln(out, "\nConfiguration already initialized. Use --force to reinitialize.")

		return nil
	}

	cfg := config.Default()
	if interactiveInit {
		cfg, err = cli.PromptForConfig(cfg)
		if errors.Is(err, cli.ErrAborted) {
			fmt.Fprintln(out, "Nothing saved.")

			return nil
		}

		if err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := cfg.Save(cfgPath); err != nil {
		return fmt.Errorf("saving config.yaml: %w", err)
	}

	fmt.Fprintf(out, "User directory: %s\n\n", dir)

	if cfgExists {
		fmt.Fprintf(out, "  [overwrite] %s\n", cfgPath)
	} else {
		fmt.Fprintf(out, "  [created]   %s\n", cfgPath)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Run 'consuloctl config validate' to check configuration")
	fmt.Fprintln(out, "  2. Run 'consuloctl locate' to see which runtime will be used")

	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configureLogger()

	exe, err := launcherPath()
	if err != nil {
		return err
	}

	r := &cli.ConfigReport{}

	// Config files live in the selected platform build.
	workDir := filepath.Dir(exe)
	if layout, err := platform.Resolve(afero.NewOsFs(), exe); err == nil {
		workDir = layout.WorkDir
	}

	userPath, err := config.GlobalConfigPath()
	if err != nil {
		return err
	}

	for _, path := range []string{config.InstallConfigPath(workDir), userPath} {
		status := cli.FileStatus{Path: path, Exists: config.FileExists(path)}
		if status.Exists {
			if _, err := config.Load(path); err != nil {
				status.Err = err
			}
		}

		r.Files = append(r.Files, status)
	}

	effective, err := config.LoadEffective(workDir)
	if err != nil {
		r.Err = err
	} else {
		r.Changes = config.DiffConfigs(config.Default(), effective)
	}

	if err := render(cmd, r); err != nil {
		return err
	}

	if r.Err != nil {
		return errors.New("configuration invalid")
	}

	return nil
}

func configureLogger() {
	output := io.Discard
	if !quiet {
		output = os.Stderr
	}

	log.Configure(log.Options{
		Output:  output,
		Verbose: verbose,
	})
}
