//go:build !(darwin || freebsd || linux || windows)

package jvm

import (
	"errors"
	"runtime"
)

func openLibrary(string) (library, error) {
	return nil, errors.ErrUnsupported
}

func call(uintptr, ...uintptr) uintptr {
	panic("jvm: native calls are not supported on " + runtime.GOOS)
}

func newHeap() (allocator, error) {
	return nil, errors.ErrUnsupported
}
