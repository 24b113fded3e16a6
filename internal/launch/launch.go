// Package launch runs the launch sequence: claim the executable, locate a
// runtime, assemble its options, create it, run the entry point and shut
// everything down again.
package launch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/consulo/go-launcher/internal/failure"
	"github.com/consulo/go-launcher/internal/instance"
	"github.com/consulo/go-launcher/internal/jre"
	"github.com/consulo/go-launcher/internal/jvm"
	"github.com/consulo/go-launcher/internal/report"
	"github.com/consulo/go-launcher/internal/version"
	"github.com/consulo/go-launcher/internal/vmoptions"
)

// TitleForwardError titles reports of forwarded command lines that failed.
const TitleForwardError = "Error"

// Channel is the first instance's end of the single-instance channel.
type Channel interface {
	instance.Receiver
	Close() error
}

// Claimer decides whether this launcher is the first instance.
type Claimer interface {
	Claim(ctx context.Context, exe string) (instance.Role, Channel, error)
}

// Locator finds a runtime installation.
type Locator interface {
	Locate() (*jre.Candidate, error)
}

// Assembler builds the runtime's options.
type Assembler interface {
	Assemble(primary string) (*vmoptions.Result, error)
}

// Loader creates a runtime.
type Loader interface {
	Load(ctx context.Context, cand *jre.Candidate, opts *vmoptions.Result) (jvm.Runtime, error)
}

type coordinatorClaimer struct {
	coordinator *instance.Coordinator
}

// FromCoordinator adapts a Coordinator to a Claimer.
func FromCoordinator(c *instance.Coordinator) Claimer {
	return coordinatorClaimer{coordinator: c}
}

func (c coordinatorClaimer) Claim(ctx context.Context, exe string) (instance.Role, Channel, error) {
	role, ch, err := c.coordinator.Claim(ctx, exe)
	if ch == nil {
		return role, nil, err
	}

	return role, ch, err
}

// Options configures a Launcher.
type Options struct {
	// Exe is the absolute path of the launcher executable.
	Exe string
	// OptionsFile is the primary VM options file.
	OptionsFile string

	Claimer   Claimer
	Locator   Locator
	Assembler Assembler
	Loader    Loader
	Reporter  report.Reporter
	Logger    *slog.Logger
}

// Launcher runs one launch.
type Launcher struct {
	opts   Options
	logger *slog.Logger
	report report.Reporter
}

// New creates a Launcher.
func New(opts Options) *Launcher {
	l := &Launcher{opts: opts, logger: opts.Logger, report: opts.Reporter}

	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}

	if l.report == nil {
		l.report = report.Discard{}
	}

	return l
}

// Run performs the launch and returns the process exit code.
// args are handed to the entry point unchanged.
func (l *Launcher) Run(ctx context.Context, args []string) int {
	l.logger.Debug("launcher starting", "version", version.Short(), "exe", l.opts.Exe)

	role, ch, err := l.opts.Claimer.Claim(ctx, l.opts.Exe)
	if err != nil {
		return l.fail(err)
	}

	if role == instance.RoleSecondary {
		l.logger.Debug("command line forwarded to running instance")

		return failure.ExitForwarded
	}

	rt, err := l.start(ctx)
	if err != nil {
		if ch != nil {
			if closeErr := ch.Close(); closeErr != nil {
				l.logger.Warn("closing instance channel failed", "error", closeErr)
			}
		}

		return l.fail(err)
	}

	var listener *instance.Listener
	if ch != nil {
		listener = instance.NewListener(ch, rt, l.logger, func(error) {
			l.report.Warn(TitleForwardError, "Error sending command line to existing instance")
		})
		listener.Start()
	}

	mainErr := rt.RunMain(args)

	if err := l.shutdown(rt, listener, ch); err != nil {
		l.logger.Warn("shutdown incomplete", "error", err)
	}

	if mainErr != nil {
		return l.fail(mainErr)
	}

	return failure.ExitOK
}

func (l *Launcher) start(ctx context.Context) (jvm.Runtime, error) {
	cand, err := l.opts.Locator.Locate()
	if err != nil {
		return nil, err
	}

	l.logger.Debug("runtime located", "root", cand.Root, "source", cand.Source, "arch", cand.Arch.String())

	opts, err := l.opts.Assembler.Assemble(l.opts.OptionsFile)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("options assembled", "count", opts.Len(), "server", opts.ServerPreferred())

	return l.opts.Loader.Load(ctx, cand, opts)
}

// shutdown destroys the runtime, which waits for the application to finish,
// then stops the listener and releases the channel.
func (l *Launcher) shutdown(rt jvm.Runtime, listener *instance.Listener, ch Channel) error {
	var result *multierror.Error

	result = multierror.Append(result, rt.Destroy())

	if listener != nil {
		result = multierror.Append(result, listener.Stop())
	}

	if ch != nil {
		result = multierror.Append(result, ch.Close())
	}

	return result.ErrorOrNil()
}

func (l *Launcher) fail(err error) int {
	message := err.Error()

	var ferr *failure.Error
	if errors.As(err, &ferr) {
		message = ferr.Message
		if ferr.Err != nil {
			l.logger.Debug("launch failure cause", "error", ferr.Err)
		}
	}

	// the application ran, so an exception escaping main is only a warning
	if failure.IsFatal(err) {
		l.report.Fatal(report.TitleLaunchError, message)
	} else {
		l.report.Warn(report.TitleLaunchError, message)
	}

	return failure.ExitCode(err)
}
