//go:build unix

package instance

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"
)

const lockSuffix = ".lock"

// DefaultDir returns the directory holding segment files: /dev/shm when
// present, the temporary directory otherwise.
func DefaultDir() string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return "/dev/shm"
	}

	return os.TempDir()
}

// Channel is the first instance's end of the segment and signal.
//
// The segment is a memory-mapped file and the signal a named pipe. Ownership
// is an advisory lock held for the life of the first instance, so a crashed
// owner never leaves a stale claim behind.
type Channel struct {
	segPath  string
	fifoPath string

	lock *flock.Flock
	seg  *os.File
	mem  []byte
	fifo *os.File
}

// tryClaim becomes the first instance or forwards payload to it.
func tryClaim(dir string, names Names, payload string) (*Channel, Role, error) {
	segPath := filepath.Join(dir, names.Mapping)
	fifoPath := filepath.Join(dir, names.Event)

	lock := flock.New(segPath + lockSuffix)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, RoleFirst, fmt.Errorf("locking %s: %w", lock.Path(), err)
	}

	if !locked {
		if err := forward(segPath, fifoPath, payload); err != nil {
			return nil, RoleSecondary, err
		}

		return nil, RoleSecondary, nil
	}

	ch, err := create(segPath, fifoPath, lock)
	if err != nil {
		_ = lock.Unlock()

		return nil, RoleFirst, err
	}

	return ch, RoleFirst, nil
}

// create sets up the segment before the signal can be opened, so a sender
// that manages to signal has written into this owner's segment. A crashed
// owner's segment is replaced by a new file rather than truncated: a sender
// may still have the old one mapped.
func create(segPath, fifoPath string, lock *flock.Flock) (*Channel, error) {
	ch := &Channel{segPath: segPath, fifoPath: fifoPath, lock: lock}

	if err := os.Remove(segPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("removing stale segment %s: %w", segPath, err)
	}

	seg, mem, err := mapSegment(segPath, os.O_RDWR|os.O_CREATE|os.O_EXCL)
	if err != nil {
		return nil, err
	}

	ch.seg, ch.mem = seg, mem

	if err := unix.Mkfifo(fifoPath, 0o600); err != nil && !errors.Is(err, unix.EEXIST) {
		_ = ch.Close()

		return nil, fmt.Errorf("creating signal %s: %w", fifoPath, err)
	}

	// read-write keeps a writer attached so the pipe never reports EOF and
	// senders never see ENXIO while the first instance is alive
	fifo, err := os.OpenFile(fifoPath, os.O_RDWR, 0)
	if err != nil {
		_ = ch.Close()

		return nil, fmt.Errorf("opening signal %s: %w", fifoPath, err)
	}

	ch.fifo = fifo

	return ch, nil
}

func mapSegment(path string, flag int) (*os.File, []byte, error) {
	f, err := os.OpenFile(path, flag, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening segment %s: %w", path, err)
	}

	if err := f.Truncate(SegmentSize); err != nil {
		_ = f.Close()

		return nil, nil, fmt.Errorf("sizing segment %s: %w", path, err)
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, SegmentSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()

		return nil, nil, fmt.Errorf("mapping segment %s: %w", path, err)
	}

	return f, mem, nil
}

// forward writes payload into the owner's segment and signals it.
func forward(segPath, fifoPath, payload string) error {
	seg, mem, err := mapSegment(segPath, os.O_RDWR)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errNotReady
		}

		return err
	}

	copy(mem, EncodePayload(payload, SegmentSize))

	unmapErr := unix.Munmap(mem)
	closeErr := seg.Close()

	if err := errors.Join(unmapErr, closeErr); err != nil {
		return fmt.Errorf("writing segment %s: %w", segPath, err)
	}

	return signal(fifoPath)
}

func signal(fifoPath string) error {
	f, err := os.OpenFile(fifoPath, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ENXIO) {
			return errNotReady
		}

		return fmt.Errorf("opening signal %s: %w", fifoPath, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write([]byte{1}); err != nil {
		return fmt.Errorf("raising signal %s: %w", fifoPath, err)
	}

	return nil
}

// Wait blocks until the signal is raised. Signals raised while nobody waits
// are coalesced into one.
func (c *Channel) Wait() error {
	var buf [64]byte

	_, err := c.fifo.Read(buf[:])

	return err
}

// Signal raises the signal.
func (c *Channel) Signal() error {
	_, err := c.fifo.Write([]byte{1})

	return err
}

// Read returns the payload currently in the segment.
func (c *Channel) Read() (string, error) {
	if c.mem == nil {
		return "", os.ErrClosed
	}

	return DecodePayload(c.mem), nil
}

// Close unmaps and removes the segment and signal and releases ownership.
func (c *Channel) Close() error {
	var errs []error

	if c.mem != nil {
		errs = append(errs, unix.Munmap(c.mem))
		c.mem = nil
	}

	if c.seg != nil {
		errs = append(errs, c.seg.Close(), os.Remove(c.segPath))
	}

	if c.fifo != nil {
		errs = append(errs, c.fifo.Close(), os.Remove(c.fifoPath))
	}

	errs = append(errs, c.lock.Unlock())

	return errors.Join(errs...)
}
