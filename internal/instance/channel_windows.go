//go:build windows

package instance

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// fileMapAllAccess is FILE_MAP_ALL_ACCESS.
const fileMapAllAccess = 0xF001F

var procOpenFileMappingW = windows.NewLazySystemDLL("kernel32.dll").NewProc("OpenFileMappingW")

// DefaultDir is unused on Windows: segment and signal are named kernel objects.
func DefaultDir() string {
	return ""
}

// Channel is the first instance's end of the segment and signal: a named
// file mapping and a named auto-reset event.
type Channel struct {
	mapping windows.Handle
	event   windows.Handle
}

func openFileMapping(name *uint16) (windows.Handle, error) {
	r, _, err := procOpenFileMappingW.Call(fileMapAllAccess, 0, uintptr(unsafe.Pointer(name)))
	if r == 0 {
		return 0, err
	}

	return windows.Handle(r), nil
}

// tryClaim becomes the first instance or forwards payload to it.
func tryClaim(_ string, names Names, payload string) (*Channel, Role, error) {
	eventName, err := windows.UTF16PtrFromString(names.Event)
	if err != nil {
		return nil, RoleFirst, err
	}

	mappingName, err := windows.UTF16PtrFromString(names.Mapping)
	if err != nil {
		return nil, RoleFirst, err
	}

	// an existing event is returned along with ERROR_ALREADY_EXISTS
	event, err := windows.CreateEvent(nil, 0, 0, eventName)
	if err != nil && !errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		return nil, RoleFirst, fmt.Errorf("creating event %s: %w", names.Event, err)
	}

	if mapping, err := openFileMapping(mappingName); err == nil {
		err = forward(mapping, event, payload)
		_ = windows.CloseHandle(mapping)
		_ = windows.CloseHandle(event)

		return nil, RoleSecondary, err
	}

	mapping, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, 0, SegmentSize, mappingName)
	if err != nil {
		if mapping != 0 {
			_ = windows.CloseHandle(mapping)
		}

		_ = windows.CloseHandle(event)

		// another launcher created it between our open and create
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			return nil, RoleFirst, errNotReady
		}

		return nil, RoleFirst, fmt.Errorf("creating file mapping %s: %w", names.Mapping, err)
	}

	return &Channel{mapping: mapping, event: event}, RoleFirst, nil
}

func view(mapping windows.Handle) (uintptr, []uint16, error) {
	addr, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, 0)
	if err != nil {
		return 0, nil, fmt.Errorf("mapping view: %w", err)
	}

	return addr, unsafe.Slice((*uint16)(unsafe.Pointer(addr)), SegmentSize/2), nil
}

func forward(mapping, event windows.Handle, payload string) error {
	addr, mem, err := view(mapping)
	if err != nil {
		return err
	}

	copy(mem, EncodePayloadUTF16(payload, SegmentSize))

	if err := windows.UnmapViewOfFile(addr); err != nil {
		return fmt.Errorf("unmapping view: %w", err)
	}

	return windows.SetEvent(event)
}

// Wait blocks until the event is set.
func (c *Channel) Wait() error {
	if c.event == 0 {
		return os.ErrClosed
	}

	_, err := windows.WaitForSingleObject(c.event, windows.INFINITE)

	return err
}

// Signal sets the event.
func (c *Channel) Signal() error {
	return windows.SetEvent(c.event)
}

// Read returns the payload currently in the mapping.
func (c *Channel) Read() (string, error) {
	addr, mem, err := view(c.mapping)
	if err != nil {
		return "", err
	}

	payload := DecodePayloadUTF16(mem)

	return payload, windows.UnmapViewOfFile(addr)
}

// Close releases the mapping and the event.
func (c *Channel) Close() error {
	var errs []error

	if c.event != 0 {
		errs = append(errs, windows.CloseHandle(c.event))
		c.event = 0
	}

	if c.mapping != 0 {
		errs = append(errs, windows.CloseHandle(c.mapping))
		c.mapping = 0
	}

	return errors.Join(errs...)
}
