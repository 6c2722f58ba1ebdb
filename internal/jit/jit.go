//go:build linux && amd64

// Package jit compiles the IR to x86-64 machine code and runs it
// in-process. RBX is reserved throughout the generated code as the
// data pointer; host I/O is performed by small helper stubs emitted
// ahead of the program, reached with call rel32 and speaking the
// System V AMD64 ABI via direct Linux syscalls.
package jit

import (
	"fmt"
	"math"

	"golang.org/x/sys/unix"

	"github.com/lukad/rbf/internal/core"
	"github.com/lukad/rbf/pkg/codebuf"
)

// Linux syscall number used by the putchar helper stub; read(2) and
// the zero fd are materialized with xor in the stubs themselves.
const (
	sysWrite = 1
	stdoutFD = 1
)

// Jit configures compilation. New starts from the traditional default
// tape size; SetTapeSize rounds any explicit size up to a 16-byte
// multiple, and Compile rejects a size that is not positive.
type Jit struct {
	tapeSize int
}

// New returns a Jit with the default tape size.
func New() *Jit {
	return &Jit{tapeSize: core.TapeSize}
}

// SetTapeSize sets the tape size in bytes, rounded up to a multiple of
// 16. It returns the Jit for chaining.
func (j *Jit) SetTapeSize(n int) *Jit {
	j.tapeSize = (n + 15) &^ 15
	return j
}

// Function is a compiled program: an executable code mapping plus the
// tape mapping it addresses. Run may be called any number of times;
// every entry re-zeroes the tape. Close releases both mappings, after
// which Run must not be called.
type Function struct {
	exec *codebuf.Exec
	tape []byte
	fun  func()
}

// Run executes the compiled program on the invoking thread, blocking
// until the guest halts. Guest I/O goes straight to the process's
// stdin and stdout.
func (f *Function) Run() {
	f.fun()
}

// Close releases the code and tape mappings.
func (f *Function) Close() error {
	if f.tape == nil {
		return fmt.Errorf("jit: function already closed")
	}
	tape := f.tape
	f.tape = nil
	f.fun = nil
	if err := unix.Munmap(tape); err != nil {
		f.exec.Close()
		return err
	}
	return f.exec.Close()
}

// Compile lowers the program to machine code and publishes it as a
// callable Function. It fails on malformed IR (a zero-stride Scan, a
// zero-offset Mul, or a Move beyond rel32 addressing) and on mapping
// failures.
func (j *Jit) Compile(prog core.Program) (*Function, error) {
	if j.tapeSize <= 0 || j.tapeSize > math.MaxInt32 {
		return nil, fmt.Errorf("jit: invalid tape size %d", j.tapeSize)
	}

	tape, err := unix.Mmap(-1, 0, j.tapeSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("jit: tape mmap: %w", err)
	}

	g := newGenerator(&tape[0], j.tapeSize)

	g.emitHelpers()
	entry := g.buf.Len()
	g.emitPrologue()
	if err := g.gen(prog); err != nil {
		unix.Munmap(tape)
		return nil, err
	}
	g.emitEpilogue()

	exec, err := g.buf.Finalize()
	if err != nil {
		unix.Munmap(tape)
		return nil, err
	}

	return &Function{exec: exec, tape: tape, fun: exec.Func(entry)}, nil
}
