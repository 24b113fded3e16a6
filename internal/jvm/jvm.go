// Package jvm loads a Java runtime into the launcher process and drives it
// through the JNI invocation interface.
//
// No cgo is involved: the runtime library is opened with the platform loader
// and every JNI function is called through its function table. JNI
// environments are owned by OS threads, so RunMain must run on the thread that
// called Load (the launcher locks its main goroutine), and Dispatch locks the
// calling goroutine for the duration of each call.
package jvm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unsafe"

	"github.com/spf13/afero"

	"github.com/consulo/go-launcher/internal/config"
	"github.com/consulo/go-launcher/internal/failure"
	"github.com/consulo/go-launcher/internal/jre"
	"github.com/consulo/go-launcher/internal/vmoptions"
)

// DispatchThreadName names the thread attached for forwarded command lines.
const DispatchThreadName = "launcher external command processing thread"

const createSymbol = "JNI_CreateJavaVM"

// ErrDestroyed is returned by Dispatch once the runtime has shut down.
var ErrDestroyed = errors.New("runtime destroyed")

// Runtime is a started managed runtime.
type Runtime interface {
	// RunMain invokes the entry point's main method and blocks until it returns.
	RunMain(args []string) error
	// Dispatch delivers a forwarded command line. Safe to call from any goroutine.
	Dispatch(workDir, commandLine string) error
	// Destroy shuts the runtime down, waiting for its non-daemon threads.
	Destroy() error
}

type library interface {
	symbol(name string) (uintptr, error)
}

// allocator hands out zeroed native memory.
type allocator interface {
	alloc(size uintptr) (uintptr, error)
	free(ptr uintptr)
}

// SelectLibrary picks the JVM library under root: the server VM when preferred
// and present, else the client VM when present, else the server VM.
// It returns "" when root holds neither.
func SelectLibrary(fs afero.Fs, root string, serverPreferred bool) string {
	server := jre.LibraryPath(fs, root, jre.ModeServer)
	client := jre.LibraryPath(fs, root, jre.ModeClient)

	switch {
	case serverPreferred && server != "":
		return server
	case client != "":
		return client
	default:
		return server
	}
}

// Loader creates runtimes.
type Loader struct {
	fs     afero.Fs
	entry  config.EntryConfig
	logger *slog.Logger

	open    func(path string) (library, error)
	newHeap func() (allocator, error)
	getwd   func() (string, error)
	chdir   func(dir string) error
}

// NewLoader creates a Loader invoking the given entry points.
func NewLoader(fs afero.Fs, entry *config.EntryConfig, logger *slog.Logger) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if entry == nil {
		entry = config.Default().Entry
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Loader{
		fs:      fs,
		entry:   *entry,
		logger:  logger,
		open:    openLibrary,
		newHeap: newHeap,
		getwd:   os.Getwd,
		chdir:   os.Chdir,
	}
}

// Load opens the runtime library of cand and creates a runtime with the
// assembled options. Native option storage is released before Load returns.
func (l *Loader) Load(ctx context.Context, cand *jre.Candidate, opts *vmoptions.Result) (Runtime, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := SelectLibrary(l.fs, cand.Root, opts.ServerPreferred())
	if path == "" {
		return nil, failure.New(failure.ErrRuntimeLoadFailed,
			"Failed to load JVM library: no server or client VM under %s", cand.Root)
	}

	leave := l.enterBinDir(cand.Root)
	lib, err := l.open(path)
	leave()

	if err != nil {
		return nil, failure.Wrap(failure.ErrRuntimeLoadFailed, err, "Failed to load JVM library %s", path)
	}

	create, err := lib.symbol(createSymbol)
	if err != nil || create == 0 {
		return nil, failure.Wrap(failure.ErrRuntimeLoadFailed, err,
			"Failed to load JVM library %s: %s not exported", path, createSymbol)
	}

	heap, err := l.newHeap()
	if err != nil {
		return nil, failure.Wrap(failure.ErrRuntimeLoadFailed, err, "Failed to prepare native memory")
	}

	return l.create(create, heap, path, opts.Options())
}

// enterBinDir makes the runtime's bin/ the working directory while the
// library is opened, so the libraries the VM depends on resolve from there.
// The returned func restores the previous directory, which becomes the
// application's user.dir.
func (l *Loader) enterBinDir(root string) func() {
	prev, err := l.getwd()
	if err != nil {
		l.logger.Debug("cannot determine working directory", "error", err)

		return func() {}
	}

	binDir := filepath.Join(root, "bin")
	if err := l.chdir(binDir); err != nil {
		l.logger.Debug("cannot enter runtime bin directory", "dir", binDir, "error", err)

		return func() {}
	}

	return func() {
		if err := l.chdir(prev); err != nil {
			l.logger.Debug("cannot restore working directory", "dir", prev, "error", err)
		}
	}
}

func (l *Loader) create(create uintptr, heap allocator, path string, options []string) (*Handle, error) {
	args, release, err := buildInitArgs(heap, options)
	defer release()

	if err != nil {
		return nil, failure.Wrap(failure.ErrRuntimeInitFailed, err, "Failed to build JVM arguments")
	}

	// JavaVM** and JNIEnv** out parameters
	out, err := heap.alloc(2 * ptrSize)
	if err != nil {
		return nil, failure.Wrap(failure.ErrRuntimeInitFailed, err, "Failed to build JVM arguments")
	}
	defer heap.free(out)

	l.logger.Debug("creating runtime", "library", path, "options", len(options))

	rc := int32(call(create, out, out+ptrSize, args))
	if rc != jniOK {
		return nil, failure.New(failure.ErrRuntimeInitFailed,
			"Failed to create JVM: error code %d.\nJVM Path: %s", rc, path)
	}

	slots := unsafe.Slice((*uintptr)(unsafe.Pointer(out)), 2)

	return &Handle{
		vm:     slots[0],
		env:    env{ptr: slots[1], heap: heap},
		heap:   heap,
		entry:  l.entry,
		logger: l.logger,
	}, nil
}

// Handle is a created runtime.
type Handle struct {
	vm     uintptr
	env    env
	heap   allocator
	entry  config.EntryConfig
	logger *slog.Logger

	mu        sync.RWMutex
	destroyed bool
}

// RunMain calls the main class's static main(String[]) with args.
// It must run on the OS thread that created the runtime.
func (h *Handle) RunMain(args []string) error {
	cls, err := h.env.findClass(h.entry.MainClass)
	if err != nil {
		return failure.New(failure.ErrEntryPointNotFound, "Could not find main class %s", h.entry.MainClass)
	}
	defer h.env.deleteLocalRef(cls)

	method, err := h.env.staticMethod(cls, "main", mainSignature)
	if err != nil {
		return failure.New(failure.ErrEntryPointNotFound, "Could not find main method in %s", h.entry.MainClass)
	}

	argv, err := h.env.newStringArray(args)
	if err != nil {
		return failure.New(failure.ErrUnhandledEntryFailure, "Could not build main arguments")
	}
	defer h.env.deleteLocalRef(argv)

	h.env.callStaticVoid(cls, method, argv)

	if h.env.clearException() {
		return failure.New(failure.ErrUnhandledEntryFailure, "Error invoking main method")
	}

	return nil
}

// Dispatch attaches the calling thread to the runtime, hands the forwarded
// working directory and command line to the command line processor and
// detaches again.
func (h *Handle) Dispatch(workDir, commandLine string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.destroyed {
		return ErrDestroyed
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	e, err := h.attach()
	if err != nil {
		return err
	}
	defer h.detach()

	cls, err := e.findClass(h.entry.ProcessorClass)
	if err != nil {
		return fmt.Errorf("finding command line processor %s: %w", h.entry.ProcessorClass, err)
	}
	defer e.deleteLocalRef(cls)

	method, err := e.staticMethod(cls, h.entry.ProcessorMethod, procSignature)
	if err != nil {
		return fmt.Errorf("finding %s.%s: %w", h.entry.ProcessorClass, h.entry.ProcessorMethod, err)
	}

	dir := e.newString(workDir)
	defer e.deleteLocalRef(dir)

	cmd := e.newString(commandLine)
	defer e.deleteLocalRef(cmd)

	e.callStaticVoid(cls, method, dir, cmd)

	if e.clearException() {
		return errors.New("error sending command line to existing instance")
	}

	return nil
}

func (h *Handle) attach() (env, error) {
	name, err := cString(h.heap, DispatchThreadName)
	if err != nil {
		return env{}, err
	}
	defer h.heap.free(name)

	argsPtr, err := h.heap.alloc(unsafe.Sizeof(javaVMAttachArgs{}) + ptrSize)
	if err != nil {
		return env{}, err
	}
	defer h.heap.free(argsPtr)

	*(*javaVMAttachArgs)(unsafe.Pointer(argsPtr)) = javaVMAttachArgs{version: jniVersion12, name: name}
	envSlot := argsPtr + unsafe.Sizeof(javaVMAttachArgs{})

	rc := int32(call(vtable(h.vm, fnAttachCurrentThread), h.vm, envSlot, argsPtr))
	if rc != jniOK {
		return env{}, fmt.Errorf("attaching thread to runtime: error code %d", rc)
	}

	return env{ptr: *(*uintptr)(unsafe.Pointer(envSlot)), heap: h.heap}, nil
}

func (h *Handle) detach() {
	if rc := int32(call(vtable(h.vm, fnDetachCurrentThread), h.vm)); rc != jniOK {
		h.logger.Debug("detaching thread from runtime failed", "code", rc)
	}
}

// Destroy shuts the runtime down. It blocks until every non-daemon thread of
// the application has finished; forwarded command lines are still dispatched
// meanwhile. The runtime library stays mapped: a JVM cannot be unloaded.
func (h *Handle) Destroy() error {
	rc := int32(call(vtable(h.vm, fnDestroyJavaVM), h.vm))

	h.mu.Lock()
	h.destroyed = true
	h.mu.Unlock()

	if rc != jniOK {
		return fmt.Errorf("destroying runtime: error code %d", rc)
	}

	return nil
}
