package instance

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/consulo/go-launcher/internal/failure"
)

const (
	// ClaimAttempts bounds how often a claim is retried while another
	// launcher is still setting up or tearing down its channel.
	ClaimAttempts = 20
	// ClaimRetryDelay is the first pause between claim attempts; it doubles
	// up to ClaimMaxRetryDelay.
	ClaimRetryDelay    = 25 * time.Millisecond
	ClaimMaxRetryDelay = 200 * time.Millisecond
)

// errNotReady means another launcher owns the executable but its channel is
// not usable yet (or no longer).
var errNotReady = errors.New("instance channel not ready")

// Options configures a Coordinator.
type Options struct {
	// Prefix prefixes segment and signal names.
	Prefix string
	// Dir holds segment files where the OS has no named shared memory.
	Dir string
	// Disabled turns coordination off: every launcher is first.
	Disabled bool
	Logger   *slog.Logger

	// Getwd and CommandLine describe the forwarding process. Defaults are
	// os.Getwd and CommandLine.
	Getwd       func() (string, error)
	CommandLine func() string
}

// Coordinator claims an executable's channel.
type Coordinator struct {
	prefix      string
	dir         string
	disabled    bool
	logger      *slog.Logger
	getwd       func() (string, error)
	commandLine func() string
	retry       retryPolicy
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(opts Options) *Coordinator {
	c := &Coordinator{
		prefix:      opts.Prefix,
		dir:         opts.Dir,
		disabled:    opts.Disabled,
		logger:      opts.Logger,
		getwd:       opts.Getwd,
		commandLine: opts.CommandLine,
		retry:       defaultClaimPolicy(),
	}

	if c.prefix == "" {
		c.prefix = DefaultPrefix
	}

	if c.dir == "" {
		c.dir = DefaultDir()
	}

	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	if c.getwd == nil {
		c.getwd = os.Getwd
	}

	if c.commandLine == nil {
		c.commandLine = CommandLine
	}

	return c
}

// Names returns the channel names for exe.
func (c *Coordinator) Names(exe string) Names {
	return NamesFor(c.prefix, exe)
}

// Claim decides this launcher's role for exe.
//
// RoleFirst comes with the open channel, or a nil channel when coordination is
// disabled. RoleSecondary means the working directory and command line have
// been delivered and the caller should exit with failure.ExitForwarded.
func (c *Coordinator) Claim(ctx context.Context, exe string) (Role, *Channel, error) {
	if c.disabled {
		c.logger.Debug("single-instance coordination disabled")

		return RoleFirst, nil, nil
	}

	names := c.Names(exe)

	cwd, err := c.getwd()
	if err != nil {
		return RoleFirst, nil, failure.Wrap(failure.ErrIPCChannelUnavailable, err, "Cannot determine working directory")
	}

	payload := Payload(cwd, c.commandLine())

	claimed, err := withRetry(ctx, c.retry, isNotReady, func(attempt int) (claim, error) {
		ch, role, err := tryClaim(c.dir, names, payload)
		if isNotReady(err) {
			c.logger.Debug("instance channel not ready", "attempt", attempt)
		}

		return claim{ch: ch, role: role}, err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return RoleFirst, nil, err
		}

		return RoleFirst, nil, failure.Wrap(failure.ErrIPCChannelUnavailable, err,
			"Cannot set up single-instance channel %s", names.Mapping)
	}

	c.logger.Debug("instance claimed", "role", claimed.role.String(), "mapping", names.Mapping)

	return claimed.role, claimed.ch, nil
}

type claim struct {
	ch   *Channel
	role Role
}

func isNotReady(err error) bool {
	return errors.Is(err, errNotReady)
}
