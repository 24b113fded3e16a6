//go:build darwin || freebsd || linux

package jvm

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
)

type sharedObject struct {
	handle uintptr
}

func openLibrary(path string) (library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, err
	}

	return sharedObject{handle: handle}, nil
}

func (s sharedObject) symbol(name string) (uintptr, error) {
	return purego.Dlsym(s.handle, name)
}

func call(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := purego.SyscallN(fn, args...)

	return r1
}

// libcHeap allocates with the C library so the runtime may hold on to the
// memory across calls.
type libcHeap struct {
	calloc func(n, size uintptr) uintptr
	cfree  func(ptr uintptr)
}

func (h *libcHeap) alloc(size uintptr) (uintptr, error) {
	p := h.calloc(1, size)
	if p == 0 {
		return 0, fmt.Errorf("allocating %d bytes: out of memory", size)
	}

	return p, nil
}

func (h *libcHeap) free(ptr uintptr) {
	if ptr != 0 {
		h.cfree(ptr)
	}
}

var (
	heapOnce sync.Once
	heap     *libcHeap
	heapErr  error
)

func libcNames() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/usr/lib/libSystem.B.dylib"}
	case "freebsd":
		return []string{"libc.so.7"}
	default:
		return []string{"libc.so.6", "libc.so"}
	}
}

func newHeap() (allocator, error) {
	heapOnce.Do(func() {
		for _, name := range libcNames() {
			handle, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
			if err != nil {
				heapErr = fmt.Errorf("opening %s: %w", name, err)

				continue
			}

			h := &libcHeap{}
			purego.RegisterLibFunc(&h.calloc, handle, "calloc")
			purego.RegisterLibFunc(&h.cfree, handle, "free")

			heap, heapErr = h, nil

			return
		}
	})

	if heapErr != nil {
		return nil, heapErr
	}

	return heap, nil
}
