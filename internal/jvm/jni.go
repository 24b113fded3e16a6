package jvm

import (
	"errors"
	"runtime"
	"unicode/utf16"
	"unsafe"
)

const (
	jniOK = 0

	jniVersion12 = 0x00010002
	jniVersion9  = 0x00090000

	ptrSize = unsafe.Sizeof(uintptr(0))
)

// JNINativeInterface_ function table indices.
const (
	fnFindClass             = 6
	fnExceptionOccurred     = 15
	fnExceptionDescribe     = 16
	fnExceptionClear        = 17
	fnDeleteLocalRef        = 23
	fnGetStaticMethodID     = 113
	fnCallStaticVoidMethodA = 143
	fnNewString             = 163
	fnNewObjectArray        = 172
	fnSetObjectArrayElement = 174
)

// JNIInvokeInterface_ function table indices.
const (
	fnDestroyJavaVM       = 3
	fnAttachCurrentThread = 4
	fnDetachCurrentThread = 5
)

const (
	stringClass   = "java/lang/String"
	mainSignature = "([Ljava/lang/String;)V"
	procSignature = "(Ljava/lang/String;Ljava/lang/String;)V"
)

var errPendingException = errors.New("java exception pending")

// javaVMOption mirrors the C JavaVMOption struct.
type javaVMOption struct {
	optionString uintptr
	extraInfo    uintptr
}

// javaVMInitArgs mirrors the C JavaVMInitArgs struct.
type javaVMInitArgs struct {
	version            int32
	nOptions           int32
	options            uintptr
	ignoreUnrecognized uint8
}

// javaVMAttachArgs mirrors the C JavaVMAttachArgs struct.
type javaVMAttachArgs struct {
	version int32
	name    uintptr
	group   uintptr
}

// vtable returns entry index of the function table behind a JNI interface
// pointer (JNIEnv* or JavaVM*).
func vtable(iface uintptr, index int) uintptr {
	table := *(*unsafe.Pointer)(unsafe.Pointer(iface))

	return *(*uintptr)(unsafe.Add(table, uintptr(index)*ptrSize))
}

// env is a JNIEnv* bound to the OS thread it was obtained on.
type env struct {
	ptr  uintptr
	heap allocator
}

func (e env) invoke(index int, args ...uintptr) uintptr {
	return call(vtable(e.ptr, index), append([]uintptr{e.ptr}, args...)...)
}

func (e env) findClass(name string) (uintptr, error) {
	cname, err := cString(e.heap, name)
	if err != nil {
		return 0, err
	}
	defer e.heap.free(cname)

	cls := e.invoke(fnFindClass, cname)
	if cls == 0 {
		e.clearException()

		return 0, errPendingException
	}

	return cls, nil
}

func (e env) staticMethod(cls uintptr, name, signature string) (uintptr, error) {
	cname, err := cString(e.heap, name)
	if err != nil {
		return 0, err
	}
	defer e.heap.free(cname)

	csig, err := cString(e.heap, signature)
	if err != nil {
		return 0, err
	}
	defer e.heap.free(csig)

	id := e.invoke(fnGetStaticMethodID, cls, cname, csig)
	if id == 0 {
		e.clearException()

		return 0, errPendingException
	}

	return id, nil
}

// newString creates a java.lang.String from UTF-16 code units, so any Go
// string survives intact including NULs and supplementary characters.
func (e env) newString(s string) uintptr {
	units := append(utf16.Encode([]rune(s)), 0)
	ref := e.invoke(fnNewString, uintptr(unsafe.Pointer(&units[0])), uintptr(len(units)-1))
	runtime.KeepAlive(units)

	return ref
}

func (e env) newStringArray(values []string) (uintptr, error) {
	cls, err := e.findClass(stringClass)
	if err != nil {
		return 0, err
	}
	defer e.deleteLocalRef(cls)

	arr := e.invoke(fnNewObjectArray, uintptr(len(values)), cls, 0)
	if arr == 0 {
		e.clearException()

		return 0, errPendingException
	}

	for i, v := range values {
		str := e.newString(v)
		e.invoke(fnSetObjectArrayElement, arr, uintptr(i), str)
		e.deleteLocalRef(str)
	}

	return arr, nil
}

func (e env) callStaticVoid(cls, method uintptr, args ...uintptr) {
	// jvalue is a 64-bit union on every platform
	values := make([]uint64, len(args)+1)
	for i, a := range args {
		values[i] = uint64(a)
	}

	e.invoke(fnCallStaticVoidMethodA, cls, method, uintptr(unsafe.Pointer(&values[0])))
	runtime.KeepAlive(values)
}

func (e env) deleteLocalRef(ref uintptr) {
	if ref != 0 {
		e.invoke(fnDeleteLocalRef, ref)
	}
}

// clearException prints and clears a pending exception. It reports whether
// one was pending.
func (e env) clearException() bool {
	if e.invoke(fnExceptionOccurred) == 0 {
		return false
	}

	e.invoke(fnExceptionDescribe)
	e.invoke(fnExceptionClear)

	return true
}

// buildInitArgs lays out JavaVMInitArgs and its option array in native memory.
// release frees everything and must be called once the runtime has been created.
func buildInitArgs(heap allocator, options []string) (uintptr, func(), error) {
	var allocated []uintptr

	release := func() {
		for i := len(allocated) - 1; i >= 0; i-- {
			heap.free(allocated[i])
		}
	}

	argsPtr, err := heap.alloc(unsafe.Sizeof(javaVMInitArgs{}))
	if err != nil {
		return 0, release, err
	}

	allocated = append(allocated, argsPtr)

	var optsPtr uintptr
	if len(options) > 0 {
		optsPtr, err = heap.alloc(uintptr(len(options)) * unsafe.Sizeof(javaVMOption{}))
		if err != nil {
			return 0, release, err
		}

		allocated = append(allocated, optsPtr)
	}

	for i, opt := range options {
		cs, err := cString(heap, opt)
		if err != nil {
			return 0, release, err
		}

		allocated = append(allocated, cs)
		*optionAt(optsPtr, i) = javaVMOption{optionString: cs}
	}

	*(*javaVMInitArgs)(unsafe.Pointer(argsPtr)) = javaVMInitArgs{
		version:            jniVersion9,
		nOptions:           int32(len(options)),
		options:            optsPtr,
		ignoreUnrecognized: 1,
	}

	return argsPtr, release, nil
}

func optionAt(base uintptr, i int) *javaVMOption {
	return (*javaVMOption)(unsafe.Add(unsafe.Pointer(base), uintptr(i)*unsafe.Sizeof(javaVMOption{})))
}

// cString copies s into native memory with a trailing NUL.
func cString(heap allocator, s string) (uintptr, error) {
	p, err := heap.alloc(uintptr(len(s) + 1))
	if err != nil {
		return 0, err
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(p)), len(s)+1)
	copy(buf, s)
	buf[len(s)] = 0

	return p, nil
}
