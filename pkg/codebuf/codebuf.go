// Package codebuf provides an append-only machine code buffer with
// forward labels. Code is emitted as raw bytes; jumps and calls
// reference labels whose 32-bit relative displacements are patched when
// the buffer is finalized. Finalize publishes the code as executable
// memory (the writable buffer is copied into a fresh mapping which is
// then remapped read+execute, so no mapping is ever writable and
// executable at the same time).
package codebuf

import (
	"encoding/binary"
	"fmt"
)

// Label identifies a position in the buffer. A label is allocated with
// NewLabel, referenced any number of times with EmitRel32, and bound to
// an offset with Bind. Binding may happen before or after the
// references; unresolved references are an error at finalize time.
type Label int

// unbound marks a label that has not been bound to an offset yet.
const unbound = -1

type fixup struct {
	at    int // offset of the rel32 placeholder
	label Label
}

// Buffer accumulates machine code.
type Buffer struct {
	code   []byte
	labels []int
	fixups []fixup
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{code: make([]byte, 0, 4096)}
}

// Len returns the current emission offset.
func (b *Buffer) Len() int {
	return len(b.code)
}

// Emit appends raw instruction bytes.
func (b *Buffer) Emit(bs ...byte) {
	b.code = append(b.code, bs...)
}

// NewLabel allocates a fresh unbound label.
func (b *Buffer) NewLabel() Label {
	b.labels = append(b.labels, unbound)
	return Label(len(b.labels) - 1)
}

// Bind binds the label to the current emission offset.
func (b *Buffer) Bind(l Label) {
	b.labels[l] = len(b.code)
}

// EmitRel32 emits a 4-byte displacement placeholder referencing the
// label. The displacement is computed relative to the end of the
// placeholder (the end of a jump or call instruction whose opcode was
// emitted just before) and patched in at finalize time.
func (b *Buffer) EmitRel32(l Label) {
	b.fixups = append(b.fixups, fixup{at: len(b.code), label: l})
	b.code = append(b.code, 0, 0, 0, 0)
}

// Finalize patches all label references and publishes the code as
// executable memory. The buffer must not be used afterwards.
func (b *Buffer) Finalize() (*Exec, error) {
	for _, f := range b.fixups {
		target := b.labels[f.label]
		if target == unbound {
			return nil, fmt.Errorf("codebuf: unbound label %d", f.label)
		}
		rel := int32(target - (f.at + 4))
		binary.LittleEndian.PutUint32(b.code[f.at:], uint32(rel))
	}
	return newExec(b.code)
}
