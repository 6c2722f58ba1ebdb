// Package vm provides a tree-walking interpreter for the IR. It is the
// reference executor: the JIT must produce the same observable output
// for any terminating program.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/lukad/rbf/internal/core"
)

// RuntimeError represents an error during VM execution.
type RuntimeError struct {
	Msg  string
	Span core.Span
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at offset %d: %s", e.Span.Start, e.Msg)
}

// EOFBehavior specifies how the VM handles EOF on input.
type EOFBehavior int

const (
	EOFZero     EOFBehavior = iota // Set cell to 0 (default)
	EOFMinusOne                    // Set cell to 255
	EOFNoChange                    // Leave cell unchanged
)

// VM executes IR programs.
type VM struct {
	memSize     int
	input       io.Reader
	output      io.Writer
	eofBehavior EOFBehavior
	memory      []byte
	dp          int     // data pointer
	ioBuf       [1]byte // reusable I/O buffer to avoid allocations
}

// Option is a functional option for configuring a VM.
type Option func(*VM)

// WithMemorySize sets the memory size (default 30000).
func WithMemorySize(size int) Option {
	return func(v *VM) {
		v.memSize = size
	}
}

// WithInput sets the input reader (default os.Stdin).
func WithInput(r io.Reader) Option {
	return func(v *VM) {
		v.input = r
	}
}

// WithOutput sets the output writer (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(v *VM) {
		v.output = w
	}
}

// WithEOFBehavior sets the EOF handling behavior (default EOFZero).
func WithEOFBehavior(b EOFBehavior) Option {
	return func(v *VM) {
		v.eofBehavior = b
	}
}

// New creates a new VM with the given options.
func New(opts ...Option) *VM {
	vm := &VM{
		memSize:     core.TapeSize,
		input:       os.Stdin,
		output:      os.Stdout,
		eofBehavior: EOFZero,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Run executes the given program on a fresh zero tape.
func (v *VM) Run(prog core.Program) error {
	v.memory = make([]byte, v.memSize)
	v.dp = 0
	return v.exec(prog)
}

func (v *VM) exec(prog core.Program) error {
	for i := range prog {
		ins := &prog[i]

		switch ins.Kind {
		case core.InsAdd:
			v.memory[v.dp] += byte(ins.Arg)

		case core.InsMove:
			v.dp += int(ins.Arg)
			if v.dp < 0 || v.dp >= v.memSize {
				return v.oob(ins, v.dp)
			}

		case core.InsSet:
			v.memory[v.dp] = byte(ins.Arg)

		case core.InsMul:
			target := v.dp + int(ins.Arg)
			if target < 0 || target >= v.memSize {
				return v.oob(ins, target)
			}
			v.memory[target] += byte(ins.Factor) * v.memory[v.dp]

		case core.InsScan:
			for v.memory[v.dp] != 0 {
				v.dp += int(ins.Arg)
				if v.dp < 0 || v.dp >= v.memSize {
					return v.oob(ins, v.dp)
				}
			}

		case core.InsRead:
			n, err := v.input.Read(v.ioBuf[:])
			if err == io.EOF || n == 0 {
				switch v.eofBehavior {
				case EOFZero:
					v.memory[v.dp] = 0
				case EOFMinusOne:
					v.memory[v.dp] = 255
				case EOFNoChange:
					// leave unchanged
				}
			} else if err != nil {
				return &RuntimeError{
					Msg:  fmt.Sprintf("input error: %v", err),
					Span: ins.Span,
				}
			} else {
				v.memory[v.dp] = v.ioBuf[0]
			}

		case core.InsWrite:
			v.ioBuf[0] = v.memory[v.dp]
			if _, err := v.output.Write(v.ioBuf[:]); err != nil {
				return &RuntimeError{
					Msg:  fmt.Sprintf("output error: %v", err),
					Span: ins.Span,
				}
			}

		case core.InsLoop:
			for v.memory[v.dp] != 0 {
				if err := v.exec(ins.Body); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (v *VM) oob(ins *core.Instruction, at int) error {
	return &RuntimeError{
		Msg:  fmt.Sprintf("data pointer out of bounds: %d (valid range 0-%d)", at, v.memSize-1),
		Span: ins.Span,
	}
}
