// Package failure defines the launcher's error kinds and their exit codes.
package failure

import "errors"

// Sentinel errors for the launch sequence.
// Components wrap these with context; the launcher maps them with errors.Is().
var (
	// ErrConfigOverrideInvalid indicates an explicit runtime variable points at no usable runtime.
	ErrConfigOverrideInvalid = errors.New("runtime override is invalid")

	// ErrRuntimeNotFound indicates every discovery source was exhausted.
	ErrRuntimeNotFound = errors.New("no runtime installation found")

	// ErrBitnessMismatch indicates the selected runtime has the wrong architecture.
	ErrBitnessMismatch = errors.New("runtime architecture mismatch")

	// ErrOptionsFileMissing indicates the primary VM options file could not be opened.
	ErrOptionsFileMissing = errors.New("VM options file missing")

	// ErrRuntimeLoadFailed indicates the runtime library or its creation symbol could not be loaded.
	ErrRuntimeLoadFailed = errors.New("failed to load runtime library")

	// ErrRuntimeInitFailed indicates the runtime refused to start with the given options.
	ErrRuntimeInitFailed = errors.New("failed to create runtime")

	// ErrEntryPointNotFound indicates the main class or its main method is missing.
	ErrEntryPointNotFound = errors.New("entry point not found")

	// ErrUnhandledEntryFailure indicates the entry point raised an uncaught exception.
	ErrUnhandledEntryFailure = errors.New("error invoking main method")

	// ErrIPCChannelUnavailable indicates the single-instance segment or signal could not be set up.
	ErrIPCChannelUnavailable = errors.New("single-instance channel unavailable")
)

// Exit codes. Each failure kind maps to exactly one code.
const (
	ExitOK                    = 0
	ExitUnknown               = 1
	ExitForwarded             = 2
	ExitRuntimeNotFound       = 3
	ExitOptionsFileMissing    = 4
	ExitRuntimeLoadFailed     = 5
	ExitRuntimeInitFailed     = 6
	ExitEntryPointNotFound    = 7
	ExitConfigOverrideInvalid = 8
	ExitBitnessMismatch       = 9
	ExitIPCChannelUnavailable = 10
	ExitUnhandledEntryFailure = 11
)

var exitCodes = []struct {
	err  error
	code int
}{
	{ErrConfigOverrideInvalid, ExitConfigOverrideInvalid},
	{ErrRuntimeNotFound, ExitRuntimeNotFound},
	{ErrBitnessMismatch, ExitBitnessMismatch},
	{ErrOptionsFileMissing, ExitOptionsFileMissing},
	{ErrRuntimeLoadFailed, ExitRuntimeLoadFailed},
	{ErrRuntimeInitFailed, ExitRuntimeInitFailed},
	{ErrEntryPointNotFound, ExitEntryPointNotFound},
	{ErrUnhandledEntryFailure, ExitUnhandledEntryFailure},
	{ErrIPCChannelUnavailable, ExitIPCChannelUnavailable},
}

// ExitCode returns the process exit code for err.
// A nil error is ExitOK; an error of no known kind is ExitUnknown.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	for _, ec := range exitCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}

	return ExitUnknown
}

// IsFatal reports whether err is reported to the user as a fatal error.
// An unhandled entry failure comes after the application has run and is
// reported as a warning.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrUnhandledEntryFailure)
}
