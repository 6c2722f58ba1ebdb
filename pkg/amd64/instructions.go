// Package amd64 provides x86_64 (AMD64) machine code encoding
// utilities for the JIT's code generator. It has no dependencies on
// compiler internals and can be used standalone.
package amd64

import "encoding/binary"

// Each function below returns the machine code bytes for one
// instruction. Immediates and displacements are appended in
// little-endian order straight onto the opcode bytes.
//
// For details on x86-64 instruction encoding (REX prefixes, ModRM, SIB
// bytes), see: https://wiki.osdev.org/X86-64_Instruction_Encoding
//
// The memory-operand encoders address through RBX, which the JIT
// reserves as the data pointer.

// PushRBP encodes: push %rbp (55)
func PushRBP() []byte {
	return []byte{0x55}
}

// PopRBP encodes: pop %rbp (5D)
func PopRBP() []byte {
	return []byte{0x5D}
}

// PushRBX encodes: push %rbx (53)
func PushRBX() []byte {
	return []byte{0x53}
}

// PopRBX encodes: pop %rbx (5B)
func PopRBX() []byte {
	return []byte{0x5B}
}

// PushRDI encodes: push %rdi (57)
func PushRDI() []byte {
	return []byte{0x57}
}

// PushRAX encodes: push %rax (50)
func PushRAX() []byte {
	return []byte{0x50}
}

// PopRAX encodes: pop %rax (58)
func PopRAX() []byte {
	return []byte{0x58}
}

// PopRDI encodes: pop %rdi (5F)
func PopRDI() []byte {
	return []byte{0x5F}
}

// MovqRBPFromRSP encodes: movq %rsp, %rbp (48 89 E5)
func MovqRBPFromRSP() []byte {
	// REX.W (48) + 89 /r = mov r/m64, r64
	// ModRM: 11 (reg-reg) 100 (rsp) 101 (rbp) = E5
	return []byte{0x48, 0x89, 0xE5}
}

// MovabsRBX encodes: movabs $imm64, %rbx (48 BB <imm64>)
// Loads a 64-bit immediate into RBX.
func MovabsRBX(imm64 uint64) []byte {
	// REX.W (48) + B8+r with rbx: BB
	return binary.LittleEndian.AppendUint64([]byte{0x48, 0xBB}, imm64)
}

// AddqImm32RBX encodes: addq $imm32, %rbx (48 81 C3 <imm32>)
// Adds a signed 32-bit immediate to RBX.
func AddqImm32RBX(imm32 int32) []byte {
	// REX.W (48)
	// 81 /0 id = add r/m64, imm32
	// ModRM: 11 (reg) 000 (/0) 011 (rbx) = C3
	return binary.LittleEndian.AppendUint32([]byte{0x48, 0x81, 0xC3}, uint32(imm32))
}

// SubqImm32RBX encodes: subq $imm32, %rbx (48 81 EB <imm32>)
// Subtracts a signed 32-bit immediate from RBX.
func SubqImm32RBX(imm32 int32) []byte {
	// REX.W (48)
	// 81 /5 id = sub r/m64, imm32
	// ModRM: 11 (reg) 101 (/5) 011 (rbx) = EB
	return binary.LittleEndian.AppendUint32([]byte{0x48, 0x81, 0xEB}, uint32(imm32))
}

// AddbImm8Mem encodes: addb $imm8, (%rbx) (80 03 <imm8>)
// Adds an 8-bit immediate to the byte at (%rbx).
func AddbImm8Mem(imm8 uint8) []byte {
	// 80 /0 ib = add r/m8, imm8
	// ModRM: 00 (no disp) 000 (/0) 011 (rbx) = 03
	return []byte{0x80, 0x03, imm8}
}

// MovbImm8Mem encodes: movb $imm8, (%rbx) (C6 03 <imm8>)
// Sets the byte at (%rbx) to imm8.
func MovbImm8Mem(imm8 uint8) []byte {
	// C6 /0 ib = mov r/m8, imm8
	// ModRM: 00 (no disp) 000 (/0) 011 (rbx) = 03
	return []byte{0xC6, 0x03, imm8}
}

// CmpbMemZero encodes: cmpb $0, (%rbx) (80 3B 00)
// Compares the byte at (%rbx) with zero, setting flags.
func CmpbMemZero() []byte {
	// 80 /7 ib = cmp r/m8, imm8
	// ModRM: 00 (no disp) 111 (/7) 011 (rbx) = 3B
	return []byte{0x80, 0x3B, 0x00}
}

// MovbMemFromAL encodes: movb %al, (%rbx) (88 03)
// Stores AL into the byte at (%rbx).
func MovbMemFromAL() []byte {
	// 88 /r = mov r/m8, r8
	// ModRM: 00 (no disp) 000 (al) 011 (rbx) = 03
	return []byte{0x88, 0x03}
}

// MovbImm8AL encodes: movb $imm8, %al (B0 <imm8>)
func MovbImm8AL(imm8 uint8) []byte {
	return []byte{0xB0, imm8}
}

// MulbMem encodes: mulb (%rbx) (F6 23)
// Unsigned multiply: AX = AL * byte at (%rbx).
func MulbMem() []byte {
	// F6 /4 = mul r/m8
	// ModRM: 00 (no disp) 100 (/4) 011 (rbx) = 23
	return []byte{0xF6, 0x23}
}

// AddbALMemDisp encodes: addb %al, disp(%rbx) (00 43 <disp8> / 00 83 <disp32>)
// Adds AL to the byte at disp(%rbx), picking the shortest displacement form.
func AddbALMemDisp(disp int32) []byte {
	// 00 /r = add r/m8, r8 with AL as the source register
	if disp >= -128 && disp <= 127 {
		// ModRM: 01 (disp8) 000 (al) 011 (rbx) = 43
		return []byte{0x00, 0x43, uint8(disp)}
	}
	// ModRM: 10 (disp32) 000 (al) 011 (rbx) = 83
	return binary.LittleEndian.AppendUint32([]byte{0x00, 0x83}, uint32(disp))
}

// MovzxEDIMem encodes: movzbl (%rbx), %edi (0F B6 3B)
// Zero-extends the byte at (%rbx) into EDI.
func MovzxEDIMem() []byte {
	// 0F B6 /r = movzx r32, r/m8
	// ModRM: 00 (no disp) 111 (edi) 011 (rbx) = 3B
	return []byte{0x0F, 0xB6, 0x3B}
}

// MovqRDIFromRBX encodes: movq %rbx, %rdi (48 89 DF)
func MovqRDIFromRBX() []byte {
	// ModRM: 11 (reg-reg) 011 (rbx) 111 (rdi) = DF
	return []byte{0x48, 0x89, 0xDF}
}

// MovqRSIFromRSP encodes: movq %rsp, %rsi (48 89 E6)
func MovqRSIFromRSP() []byte {
	// ModRM: 11 (reg-reg) 100 (rsp) 110 (rsi) = E6
	return []byte{0x48, 0x89, 0xE6}
}

// MovqRCXFromRSI encodes: movq %rsi, %rcx (48 89 F1)
func MovqRCXFromRSI() []byte {
	// ModRM: 11 (reg-reg) 110 (rsi) 001 (rcx) = F1
	return []byte{0x48, 0x89, 0xF1}
}

// MovlImm32EAX encodes: movl $imm32, %eax (B8 <imm32>)
func MovlImm32EAX(imm32 int32) []byte {
	return binary.LittleEndian.AppendUint32([]byte{0xB8}, uint32(imm32))
}

// MovlImm32EDI encodes: movl $imm32, %edi (BF <imm32>)
func MovlImm32EDI(imm32 int32) []byte {
	return binary.LittleEndian.AppendUint32([]byte{0xBF}, uint32(imm32))
}

// MovlImm32ESI encodes: movl $imm32, %esi (BE <imm32>)
func MovlImm32ESI(imm32 int32) []byte {
	return binary.LittleEndian.AppendUint32([]byte{0xBE}, uint32(imm32))
}

// MovlImm32EDX encodes: movl $imm32, %edx (BA <imm32>)
func MovlImm32EDX(imm32 int32) []byte {
	return binary.LittleEndian.AppendUint32([]byte{0xBA}, uint32(imm32))
}

// XorEAXEAX encodes: xorl %eax, %eax (31 C0)
// Zeros RAX (32-bit ops clear the upper half).
func XorEAXEAX() []byte {
	return []byte{0x31, 0xC0}
}

// XorEDIEDI encodes: xorl %edi, %edi (31 FF)
// Zeros RDI.
func XorEDIEDI() []byte {
	return []byte{0x31, 0xFF}
}

// RepStosb encodes: rep stosb (F3 AA)
// Stores AL into RCX bytes starting at (%rdi).
func RepStosb() []byte {
	return []byte{0xF3, 0xAA}
}

// Jz returns the opcode of: jz rel32 (0F 84). The 32-bit displacement,
// relative to the end of the instruction, is emitted by the caller.
func Jz() []byte {
	return []byte{0x0F, 0x84}
}

// Jnz returns the opcode of: jnz rel32 (0F 85). The 32-bit displacement,
// relative to the end of the instruction, is emitted by the caller.
func Jnz() []byte {
	return []byte{0x0F, 0x85}
}

// Call returns the opcode of: call rel32 (E8). The 32-bit displacement,
// relative to the end of the instruction, is emitted by the caller.
func Call() []byte {
	return []byte{0xE8}
}

// Ret encodes: ret (C3)
func Ret() []byte {
	return []byte{0xC3}
}

// Syscall encodes: syscall (0F 05)
func Syscall() []byte {
	return []byte{0x0F, 0x05}
}
