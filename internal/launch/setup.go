package launch

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/consulo/go-launcher/internal/config"
	"github.com/consulo/go-launcher/internal/instance"
	"github.com/consulo/go-launcher/internal/jre"
	"github.com/consulo/go-launcher/internal/jvm"
	"github.com/consulo/go-launcher/internal/platform"
	"github.com/consulo/go-launcher/internal/report"
	"github.com/consulo/go-launcher/internal/vmoptions"
)

// Setup holds the collaborators for one installation, built from its
// effective configuration.
type Setup struct {
	Layout         platform.Layout
	Config         *config.Config
	OptionsFile    string
	PropertiesFile string

	Locator     *jre.Locator
	Assembler   *vmoptions.Assembler
	Loader      *jvm.Loader
	Coordinator *instance.Coordinator
}

// NewSetup resolves the installation around exe and builds its collaborators.
// env is consulted for runtime discovery; nil means the process environment
// layered over the per-user .env file.
func NewSetup(fs afero.Fs, exe string, env jre.EnvLookup, logger *slog.Logger) (*Setup, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	layout, err := platform.Resolve(fs, exe)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadEffective(layout.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if env == nil {
		processEnv := config.NewEnv()
		if err := processEnv.LoadGlobalEnv(); err != nil {
			logger.Debug("no user .env file", "error", err)
		}

		env = processEnv
	}

	s := &Setup{
		Layout:         layout,
		Config:         cfg,
		OptionsFile:    config.ResolveOptionsFile(cfg, layout.WorkDir, layout.Exe),
		PropertiesFile: config.ResolvePropertiesFile(cfg, layout.WorkDir),
	}

	s.Locator = jre.NewLocator(jre.Options{
		FS:          fs,
		Env:         env,
		Enumerator:  jre.DefaultEnumerator(fs),
		Logger:      logger,
		WorkDir:     layout.WorkDir,
		OverrideEnv: cfg.Runtime.OverrideEnv,
		FallbackEnv: cfg.Runtime.FallbackEnv,
		Versions:    cfg.Runtime.Versions,
	})

	s.Assembler = vmoptions.NewAssembler(fs, layout, cfg, s.PropertiesFile)
	s.Loader = jvm.NewLoader(fs, cfg.Entry, logger)

	s.Coordinator = instance.NewCoordinator(instance.Options{
		Prefix:   cfg.Instance.Prefix,
		Disabled: cfg.Instance.Disabled || !instance.SharingEnabled(),
		Logger:   logger,
	})

	return s, nil
}

// Options returns launcher options wired to this setup.
func (s *Setup) Options(reporter report.Reporter, logger *slog.Logger) Options {
	return Options{
		Exe:         s.Layout.Exe,
		OptionsFile: s.OptionsFile,
		Claimer:     FromCoordinator(s.Coordinator),
		Locator:     s.Locator,
		Assembler:   s.Assembler,
		Loader:      s.Loader,
		Reporter:    reporter,
		Logger:      logger,
	}
}
