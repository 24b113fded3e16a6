//go:build unix

package instance

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"github.com/consulo/go-launcher/internal/failure"
	"github.com/consulo/go-launcher/internal/testutil"
)

const testExe = "/opt/consulo/consulo"

func testCoordinator(dir, cwd, cmdLine string) *Coordinator {
	return NewCoordinator(Options{
		Dir:         dir,
		Getwd:       func() (string, error) { return cwd, nil },
		CommandLine: func() string { return cmdLine },
	})
}

func TestClaim_FirstThenSecondary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	role, ch, err := testCoordinator(dir, "/first", "consulo").Claim(ctx, testExe)
	if err != nil {
		t.Fatalf("first Claim() error = %v", err)
	}

	if role != RoleFirst || ch == nil {
		t.Fatalf("first Claim() = %s, %v; want first with a channel", role, ch)
	}

	mock := testutil.NewMockRuntime()
	got := recording(mock)

	l := NewListener(ch, mock, nil, nil)
	l.Start()

	role, ch2, err := testCoordinator(dir, "/home/user/project", "consulo 'my file.txt'").Claim(ctx, testExe)
	if err != nil {
		t.Fatalf("second Claim() error = %v", err)
	}

	if role != RoleSecondary || ch2 != nil {
		t.Fatalf("second Claim() = %s, %v; want secondary without a channel", role, ch2)
	}

	rec := waitDispatch(t, got)
	if rec.WorkDir != "/home/user/project" || rec.CommandLine != "consulo 'my file.txt'" {
		t.Errorf("dispatched %+v", rec)
	}

	if err := l.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	if err := ch.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if n := len(mock.GetDispatches()); n != 1 {
		t.Errorf("dispatches = %d, want exactly 1", n)
	}
}

func TestClaim_ReclaimAfterClose(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	_, ch, err := testCoordinator(dir, "/", "consulo").Claim(ctx, testExe)
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}

	if err := ch.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	role, ch, err := testCoordinator(dir, "/", "consulo").Claim(ctx, testExe)
	if err != nil {
		t.Fatalf("Claim() after close error = %v", err)
	}
	defer func() { _ = ch.Close() }()

	if role != RoleFirst {
		t.Errorf("role = %s, want first once the previous owner released", role)
	}
}

func TestClaim_DistinctExecutables(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	_, a, err := testCoordinator(dir, "/", "a").Claim(ctx, "/opt/a/consulo")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = a.Close() }()

	role, b, err := testCoordinator(dir, "/", "b").Claim(ctx, "/opt/b/consulo")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = b.Close() }()

	if role != RoleFirst {
		t.Errorf("a different executable must not forward, got %s", role)
	}
}

func TestClaim_OwnerWithoutChannel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	c := testCoordinator(dir, "/", "consulo")
	c.retry.attempts = 3
	c.retry.delay = time.Millisecond

	// an owner that holds the lock but never set up its segment
	owner := flock.New(filepath.Join(dir, c.Names(testExe).Mapping) + lockSuffix)
	if ok, err := owner.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock() = %v, %v", ok, err)
	}
	defer func() { _ = owner.Unlock() }()

	_, _, err := c.Claim(context.Background(), testExe)
	if !errors.Is(err, failure.ErrIPCChannelUnavailable) {
		t.Fatalf("Claim() error = %v, want ErrIPCChannelUnavailable", err)
	}
}

func TestClaim_CanceledWhileWaiting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	c := testCoordinator(dir, "/", "consulo")
	c.retry.delay = time.Hour

	owner := flock.New(filepath.Join(dir, c.Names(testExe).Mapping) + lockSuffix)
	if ok, err := owner.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock() = %v, %v", ok, err)
	}
	defer func() { _ = owner.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, _, err := c.Claim(ctx, testExe); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Claim() error = %v, want deadline exceeded", err)
	}
}

func TestClaim_Disabled(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(Options{Dir: t.TempDir(), Disabled: true})

	role, ch, err := c.Claim(context.Background(), testExe)
	if err != nil || role != RoleFirst || ch != nil {
		t.Errorf("Claim() = %s, %v, %v; want first, nil, nil", role, ch, err)
	}
}

func TestClaim_ReplacesStaleSegment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := testCoordinator(dir, "/", "consulo")
	segPath := filepath.Join(dir, c.Names(testExe).Mapping)

	// a crashed owner left its segment, still mapped by a late sender
	stale, mem, err := mapSegment(segPath, os.O_RDWR|os.O_CREATE)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = unix.Munmap(mem)
		_ = stale.Close()
	}()

	copy(mem, EncodePayload(Payload("/stale", "consulo old.txt"), SegmentSize))

	role, ch, err := c.Claim(context.Background(), testExe)
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	defer func() { _ = ch.Close() }()

	if role != RoleFirst {
		t.Fatalf("role = %s, want first", role)
	}

	copy(mem, EncodePayload(Payload("/late", "consulo late.txt"), SegmentSize))

	got, err := ch.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got != "" {
		t.Errorf("Read() = %q, want an empty segment unaffected by the stale file", got)
	}
}

func TestChannel_ReadAfterClose(t *testing.T) {
	t.Parallel()

	_, ch, err := testCoordinator(t.TempDir(), "/", "consulo").Claim(context.Background(), testExe)
	if err != nil {
		t.Fatal(err)
	}

	if err := ch.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := ch.Read(); err == nil {
		t.Error("Read() after Close() should fail")
	}
}
