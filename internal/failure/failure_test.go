package failure

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "unknown", err: errors.New("boom"), want: ExitUnknown},
		{name: "override", err: ErrConfigOverrideInvalid, want: ExitConfigOverrideInvalid},
		{name: "not found", err: ErrRuntimeNotFound, want: ExitRuntimeNotFound},
		{name: "bitness", err: ErrBitnessMismatch, want: ExitBitnessMismatch},
		{name: "options", err: ErrOptionsFileMissing, want: ExitOptionsFileMissing},
		{name: "load", err: ErrRuntimeLoadFailed, want: ExitRuntimeLoadFailed},
		{name: "init", err: ErrRuntimeInitFailed, want: ExitRuntimeInitFailed},
		{name: "entry", err: ErrEntryPointNotFound, want: ExitEntryPointNotFound},
		{name: "unhandled", err: ErrUnhandledEntryFailure, want: ExitUnhandledEntryFailure},
		{name: "ipc", err: ErrIPCChannelUnavailable, want: ExitIPCChannelUnavailable},
		{
			name: "wrapped",
			err:  fmt.Errorf("loading %s: %w", "/opt/jre", ErrRuntimeLoadFailed),
			want: ExitRuntimeLoadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodesAreDistinct(t *testing.T) {
	t.Parallel()

	seen := map[int]error{ExitOK: nil, ExitUnknown: nil, ExitForwarded: nil}
	for _, ec := range exitCodes {
		if prev, ok := seen[ec.code]; ok {
			t.Errorf("exit code %d used by both %v and %v", ec.code, prev, ec.err)
		}
		seen[ec.code] = ec.err
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	if IsFatal(nil) {
		t.Error("IsFatal(nil) = true, want false")
	}

	if IsFatal(fmt.Errorf("main: %w", ErrUnhandledEntryFailure)) {
		t.Error("IsFatal(unhandled entry failure) = true, want false")
	}

	if !IsFatal(ErrRuntimeInitFailed) {
		t.Error("IsFatal(ErrRuntimeInitFailed) = false, want true")
	}
}

func TestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("dlopen: no such file")
	err := Wrap(ErrRuntimeLoadFailed, cause, "Failed to load JVM DLL %s", "/opt/jre/bin/server/libjvm.so")

	if !errors.Is(err, ErrRuntimeLoadFailed) {
		t.Error("errors.Is(err, ErrRuntimeLoadFailed) = false, want true")
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	want := "Failed to load JVM DLL /opt/jre/bin/server/libjvm.so: dlopen: no such file"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if got := ExitCode(fmt.Errorf("launch: %w", err)); got != ExitRuntimeLoadFailed {
		t.Errorf("ExitCode() = %d, want %d", got, ExitRuntimeLoadFailed)
	}
}

func TestNew_NoCause(t *testing.T) {
	t.Parallel()

	err := New(ErrRuntimeNotFound, "No JVM installation found")
	if err.Error() != "No JVM installation found" {
		t.Errorf("Error() = %q", err.Error())
	}

	if errors.Is(err, ErrRuntimeInitFailed) {
		t.Error("errors.Is(err, ErrRuntimeInitFailed) = true, want false")
	}
}
