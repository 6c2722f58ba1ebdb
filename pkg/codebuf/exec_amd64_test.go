//go:build unix && amd64

package codebuf

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// TestExecFunc finalizes a tiny function that stores 7 through a
// pointer and calls it.
func TestExecFunc(t *testing.T) {
	cell := new(byte)

	b := New()
	// movabs $cell, %rax
	b.Emit(0x48, 0xB8)
	var addr [8]byte
	binary.LittleEndian.PutUint64(addr[:], uint64(uintptr(unsafe.Pointer(cell))))
	b.Emit(addr[:]...)
	// movb $7, (%rax)
	b.Emit(0xC6, 0x00, 0x07)
	// ret
	b.Emit(0xC3)

	exec, err := b.Finalize()
	require.NoError(t, err)
	defer exec.Close()

	exec.Func(0)()
	require.Equal(t, byte(7), *cell)
}

// TestExecEntryOffset checks that Func respects a nonzero entry offset.
func TestExecEntryOffset(t *testing.T) {
	cell := new(byte)

	b := New()
	b.Emit(0xC3) // a stray ret at offset 0
	entry := b.Len()
	b.Emit(0x48, 0xB8)
	var addr [8]byte
	binary.LittleEndian.PutUint64(addr[:], uint64(uintptr(unsafe.Pointer(cell))))
	b.Emit(addr[:]...)
	b.Emit(0xC6, 0x00, 0x2A) // movb $42, (%rax)
	b.Emit(0xC3)

	exec, err := b.Finalize()
	require.NoError(t, err)
	defer exec.Close()

	require.Equal(t, exec.Addr(entry), exec.Addr(0)+uintptr(entry))

	exec.Func(entry)()
	require.Equal(t, byte(42), *cell)
}
