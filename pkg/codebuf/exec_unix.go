//go:build unix

package codebuf

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Exec owns a read+execute mapping holding finalized code. The
// generated code must not be invoked after Close.
type Exec struct {
	mem []byte
}

// newExec copies the code into a fresh anonymous mapping and flips it
// from read+write to read+execute.
func newExec(code []byte) (*Exec, error) {
	if len(code) == 0 {
		return nil, errors.New("codebuf: empty buffer")
	}

	mem, err := unix.Mmap(-1, 0, len(code),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("codebuf: mmap: %w", err)
	}
	copy(mem, code)

	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		unix.Munmap(mem)
		return nil, fmt.Errorf("codebuf: mprotect: %w", err)
	}

	return &Exec{mem: mem}, nil
}

// Addr returns the address of the instruction at the given offset.
func (e *Exec) Addr(off int) uintptr {
	return uintptr(unsafe.Pointer(&e.mem[off]))
}

// Func returns the code at the given offset as a callable function
// taking no arguments and returning nothing. The returned function is
// only valid until Close.
func (e *Exec) Func(off int) func() {
	// A Go func value points at a funcval whose first word is the code
	// address.
	fv := unsafe.Pointer(&struct{ p unsafe.Pointer }{unsafe.Pointer(&e.mem[off])})
	return *(*func())(unsafe.Pointer(&fv))
}

// Close releases the executable mapping.
func (e *Exec) Close() error {
	if e.mem == nil {
		return errors.New("codebuf: already closed")
	}
	mem := e.mem
	e.mem = nil
	return unix.Munmap(mem)
}
