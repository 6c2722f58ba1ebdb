//go:build linux && amd64

package jit

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/lukad/rbf/internal/core"
	"github.com/lukad/rbf/pkg/amd64"
	"github.com/lukad/rbf/pkg/codebuf"
)

// generator lowers IR to machine code through a code buffer.
type generator struct {
	buf      *codebuf.Buffer
	tapeBase uint64
	tapeSize int

	// Helper stub entry points, bound by emitHelpers.
	readHelper  codebuf.Label
	writeHelper codebuf.Label
	zeroHelper  codebuf.Label
}

func newGenerator(tape *byte, tapeSize int) *generator {
	return &generator{
		buf:      codebuf.New(),
		tapeBase: uint64(uintptr(unsafe.Pointer(tape))),
		tapeSize: tapeSize,
	}
}

// emitHelpers emits the three host helper stubs ahead of the program.
//
// Guest output is written straight through write(2), so there is no
// userspace stdout buffer to flush before reading.
func (g *generator) emitHelpers() {
	b := g.buf

	// getchar_host() -> AL: one byte from stdin, 0 on EOF or error.
	g.readHelper = b.NewLabel()
	b.Bind(g.readHelper)
	b.Emit(amd64.XorEAXEAX()...)            // xorl %eax, %eax
	b.Emit(amd64.PushRAX()...)              // push %rax      - zeroed 8-byte read buffer
	b.Emit(amd64.XorEDIEDI()...)            // xorl %edi, %edi - fd 0
	b.Emit(amd64.MovqRSIFromRSP()...)       // movq %rsp, %rsi
	b.Emit(amd64.MovlImm32EDX(1)...)        // movl $1, %edx
	b.Emit(amd64.Syscall()...)              // syscall        - read(0, buf, 1)
	b.Emit(amd64.PopRAX()...)               // pop %rax       - AL = byte, or 0 if nothing was read
	b.Emit(amd64.Ret()...)                  // ret

	// putchar_host(DIL): one byte to stdout.
	g.writeHelper = b.NewLabel()
	b.Bind(g.writeHelper)
	b.Emit(amd64.PushRDI()...)               // push %rdi     - the byte, addressable on the stack
	b.Emit(amd64.MovqRSIFromRSP()...)        // movq %rsp, %rsi
	b.Emit(amd64.MovlImm32EDI(stdoutFD)...)  // movl $1, %edi
	b.Emit(amd64.MovlImm32EDX(1)...)         // movl $1, %edx
	b.Emit(amd64.MovlImm32EAX(sysWrite)...)  // movl $1, %eax
	b.Emit(amd64.Syscall()...)               // syscall       - write(1, buf, 1)
	b.Emit(amd64.PopRDI()...)                // pop %rdi
	b.Emit(amd64.Ret()...)                   // ret

	// memzero_host(RDI=ptr, RSI=len).
	g.zeroHelper = b.NewLabel()
	b.Bind(g.zeroHelper)
	b.Emit(amd64.MovqRCXFromRSI()...) // movq %rsi, %rcx
	b.Emit(amd64.XorEAXEAX()...)      // xorl %eax, %eax
	b.Emit(amd64.RepStosb()...)       // rep stosb
	b.Emit(amd64.Ret()...)            // ret
}

// emitPrologue saves the registers the function uses, loads the data
// pointer with the tape base, and zero-fills the tape.
func (g *generator) emitPrologue() {
	b := g.buf
	b.Emit(amd64.PushRBP()...)                       // push %rbp
	b.Emit(amd64.MovqRBPFromRSP()...)                // movq %rsp, %rbp
	b.Emit(amd64.PushRBX()...)                       // push %rbx
	b.Emit(amd64.MovabsRBX(g.tapeBase)...)           // movabs $tape, %rbx
	b.Emit(amd64.MovqRDIFromRBX()...)                // movq %rbx, %rdi
	b.Emit(amd64.MovlImm32ESI(int32(g.tapeSize))...) // movl $size, %esi
	b.Emit(amd64.Call()...)                          // call memzero_host
	b.EmitRel32(g.zeroHelper)
}

// emitEpilogue restores the saved registers and returns.
func (g *generator) emitEpilogue() {
	b := g.buf
	b.Emit(amd64.PopRBX()...) // pop %rbx
	b.Emit(amd64.PopRBP()...) // pop %rbp
	b.Emit(amd64.Ret()...)    // ret
}

// gen lowers one instruction sequence. Loop bodies recurse; each Loop
// and Scan allocates two fresh labels that never escape this call.
func (g *generator) gen(prog core.Program) error {
	b := g.buf

	for i := range prog {
		ins := &prog[i]

		switch ins.Kind {
		case core.InsAdd:
			b.Emit(amd64.AddbImm8Mem(uint8(ins.Arg))...) // addb $n, (%rbx)

		case core.InsMove:
			if err := g.emitMove(ins.Arg); err != nil {
				return err
			}

		case core.InsSet:
			b.Emit(amd64.MovbImm8Mem(uint8(ins.Arg))...) // movb $n, (%rbx)

		case core.InsMul:
			if ins.Arg == 0 {
				return fmt.Errorf("jit: Mul with zero offset")
			}
			if ins.Arg > int64(g.tapeSize) || ins.Arg < -int64(g.tapeSize) {
				return fmt.Errorf("jit: Mul offset %d outside the tape", ins.Arg)
			}
			b.Emit(amd64.MovbImm8AL(uint8(ins.Factor))...) // movb $f, %al
			b.Emit(amd64.MulbMem()...)                     // mulb (%rbx)      - AX = AL * cell
			b.Emit(amd64.AddbALMemDisp(int32(ins.Arg))...) // addb %al, o(%rbx)

		case core.InsScan:
			if ins.Arg == 0 {
				return fmt.Errorf("jit: Scan with zero stride")
			}
			end := b.NewLabel()
			again := b.NewLabel()
			b.Emit(amd64.CmpbMemZero()...) // cmpb $0, (%rbx)
			b.Emit(amd64.Jz()...)          // jz end
			b.EmitRel32(end)
			b.Bind(again)
			if err := g.emitMove(ins.Arg); err != nil {
				return err
			}
			b.Emit(amd64.CmpbMemZero()...) // cmpb $0, (%rbx)
			b.Emit(amd64.Jnz()...)         // jnz again
			b.EmitRel32(again)
			b.Bind(end)

		case core.InsRead:
			b.Emit(amd64.Call()...) // call getchar_host
			b.EmitRel32(g.readHelper)
			b.Emit(amd64.MovbMemFromAL()...) // movb %al, (%rbx)

		case core.InsWrite:
			b.Emit(amd64.MovzxEDIMem()...) // movzbl (%rbx), %edi
			b.Emit(amd64.Call()...)        // call putchar_host
			b.EmitRel32(g.writeHelper)

		case core.InsLoop:
			end := b.NewLabel()
			again := b.NewLabel()
			b.Emit(amd64.CmpbMemZero()...) // cmpb $0, (%rbx)
			b.Emit(amd64.Jz()...)          // jz end
			b.EmitRel32(end)
			b.Bind(again)
			if err := g.gen(ins.Body); err != nil {
				return err
			}
			b.Emit(amd64.CmpbMemZero()...) // cmpb $0, (%rbx)
			b.Emit(amd64.Jnz()...)         // jnz again
			b.EmitRel32(again)
			b.Bind(end)
		}
	}

	return nil
}

// emitMove adjusts the data pointer by n.
func (g *generator) emitMove(n int64) error {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return fmt.Errorf("jit: Move offset %d out of range", n)
	}
	if n > 0 {
		g.buf.Emit(amd64.AddqImm32RBX(int32(n))...) // addq $n, %rbx
	} else if n < 0 {
		g.buf.Emit(amd64.SubqImm32RBX(int32(-n))...) // subq $-n, %rbx
	}
	return nil
}
