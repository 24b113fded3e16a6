//go:build windows

package jvm

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// lptr is LMEM_FIXED | LMEM_ZEROINIT.
const lptr = 0x0040

type dll struct {
	handle windows.Handle
}

func openLibrary(path string) (library, error) {
	// the C runtime jvm.dll links against is found through the working
	// directory, which Load points at the runtime's bin/
	handle, err := windows.LoadLibraryEx(path, 0, windows.LOAD_WITH_ALTERED_SEARCH_PATH)
	if err != nil {
		return nil, err
	}

	return dll{handle: handle}, nil
}

func (d dll) symbol(name string) (uintptr, error) {
	return windows.GetProcAddress(d.handle, name)
}

func call(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := syscall.SyscallN(fn, args...)

	return r1
}

type localHeap struct{}

func (localHeap) alloc(size uintptr) (uintptr, error) {
	p, err := windows.LocalAlloc(lptr, uint32(size))
	if err != nil {
		return 0, fmt.Errorf("allocating %d bytes: %w", size, err)
	}

	return p, nil
}

func (localHeap) free(ptr uintptr) {
	if ptr != 0 {
		_, _ = windows.LocalFree(windows.Handle(ptr))
	}
}

func newHeap() (allocator, error) {
	return localHeap{}, nil
}
