//go:build (amd64 && linux) || (amd64 && darwin)

// Package asm encodes the x86-64 instruction forms the JIT engines need to
// read and write dispatchbench/vm.NativeState and to move between compiled
// instructions. It is not a general assembler: every function returns
// exactly one instruction's bytes, addressed against a fixed calling
// convention (RDI holds a *vm.NativeState, following System V AMD64) —
// the same shape go-interpreter/wagon's internal/x86 package takes for its
// own hand-rolled encoder, which is also where jit/codebuf's padding-byte
// convention comes from.
package asm

import "encoding/binary"

// Reg is a 3-bit general-purpose register encoding.
type Reg byte

const (
	EAX Reg = 0
	ECX Reg = 1
	EDX Reg = 2
	EBX Reg = 3
	ESI Reg = 6
	EDI Reg = 7
)

func modrmDirect(reg, rm Reg) byte {
	return 0xC0 | (byte(reg) << 3) | byte(rm)
}

// modrmDisp32RDI builds a ModRM byte for a [rdi+disp32] operand with reg as
// the other operand's register field.
func modrmDisp32RDI(reg Reg) byte {
	return 0x80 | (byte(reg) << 3) | 0x07
}

// modrmSIB_RDI builds a ModRM+SIB pair for a [rdi+index*4+disp32] operand.
func modrmSIB_RDI(reg, index Reg) (modrm, sib byte) {
	modrm = 0x80 | (byte(reg) << 3) | 0x04
	sib = (2 << 6) | (byte(index) << 3) | 0x07 // scale=4, base=rdi
	return
}

func le32(v int32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return buf
}

// LoadMemRDI encodes "mov dst, dword [rdi+disp]".
func LoadMemRDI(dst Reg, disp int32) []byte {
	return append([]byte{0x8B, modrmDisp32RDI(dst)}, le32(disp)...)
}

// StoreMemRDI encodes "mov dword [rdi+disp], src".
func StoreMemRDI(src Reg, disp int32) []byte {
	return append([]byte{0x89, modrmDisp32RDI(src)}, le32(disp)...)
}

// StoreMemRDIImm32 encodes "mov dword [rdi+disp], imm32".
func StoreMemRDIImm32(disp, imm int32) []byte {
	buf := []byte{0xC7, modrmDisp32RDI(0)}
	buf = append(buf, le32(disp)...)
	return append(buf, le32(imm)...)
}

// AddMemRDIImm32 encodes "add dword [rdi+disp], imm32" (opcode extension
// /0).
func AddMemRDIImm32(disp, imm int32) []byte {
	buf := []byte{0x81, modrmDisp32RDI(0)}
	buf = append(buf, le32(disp)...)
	return append(buf, le32(imm)...)
}

// AddMemRDIReg encodes "add dword [rdi+disp], src".
func AddMemRDIReg(src Reg, disp int32) []byte {
	return append([]byte{0x01, modrmDisp32RDI(src)}, le32(disp)...)
}

// AddMemRDIImm8_64 encodes "add qword [rdi+disp], imm8" (64-bit operand
// size, REX.W prefix).
func AddMemRDIImm8_64(disp int32, imm int8) []byte {
	buf := []byte{0x48, 0x83, modrmDisp32RDI(0)}
	buf = append(buf, le32(disp)...)
	return append(buf, byte(imm))
}

// LoadMemRDI64 encodes "mov dst, qword [rdi+disp]" (REX.W).
func LoadMemRDI64(dst Reg, disp int32) []byte {
	return append([]byte{0x48, 0x8B, modrmDisp32RDI(dst)}, le32(disp)...)
}

// CmpMemRDI64Reg encodes "cmp qword [rdi+disp], src" (REX.W).
func CmpMemRDI64Reg(disp int32, src Reg) []byte {
	return append([]byte{0x48, 0x39, modrmDisp32RDI(src)}, le32(disp)...)
}

// CmpMemRDIImm32 encodes "cmp dword [rdi+disp], imm32" (opcode extension
// /7).
func CmpMemRDIImm32(disp, imm int32) []byte {
	modrm := 0x80 | (byte(7) << 3) | 0x07
	buf := []byte{0x81, modrm}
	buf = append(buf, le32(disp)...)
	return append(buf, le32(imm)...)
}

// LoadMemSIB encodes "mov dst, dword [rdi+index*4+disp]".
func LoadMemSIB(dst, index Reg, disp int32) []byte {
	modrm, sib := modrmSIB_RDI(dst, index)
	buf := []byte{0x8B, modrm, sib}
	return append(buf, le32(disp)...)
}

// StoreMemSIB encodes "mov dword [rdi+index*4+disp], src".
func StoreMemSIB(src, index Reg, disp int32) []byte {
	modrm, sib := modrmSIB_RDI(src, index)
	buf := []byte{0x89, modrm, sib}
	return append(buf, le32(disp)...)
}

func IncReg(r Reg) []byte { return []byte{0xFF, 0xC0 | byte(r)} }
func DecReg(r Reg) []byte { return []byte{0xFF, 0xC8 | byte(r)} }

// CmpRegImm32 encodes "cmp reg, imm32" (opcode extension /7), register
// operand in direct addressing mode (mod=11).
func CmpRegImm32(reg Reg, imm int32) []byte {
	modrm := 0xC0 | (byte(7) << 3) | byte(reg)
	buf := []byte{0x81, modrm}
	return append(buf, le32(imm)...)
}

// AddRegReg encodes "add dst, src".
func AddRegReg(dst, src Reg) []byte { return []byte{0x01, modrmDirect(src, dst)} }

// SubRegReg encodes "sub dst, src" (dst -= src).
func SubRegReg(dst, src Reg) []byte { return []byte{0x29, modrmDirect(src, dst)} }

func AndRegReg(dst, src Reg) []byte { return []byte{0x21, modrmDirect(src, dst)} }
func OrRegReg(dst, src Reg) []byte  { return []byte{0x09, modrmDirect(src, dst)} }
func XorRegReg(dst, src Reg) []byte { return []byte{0x31, modrmDirect(src, dst)} }

// PushReg64/PopReg64 encode push/pop of a full 64-bit register.
func PushReg64(r Reg) []byte { return []byte{0x50 | byte(r)} }
func PopReg64(r Reg) []byte  { return []byte{0x58 | byte(r)} }

// JccRel32 encodes a near conditional jump with a placeholder rel32,
// patched in place by PatchRel32 once the target offset is known (both
// offsets are within the same buffer being assembled, so this never
// crosses the codebuf/relocation boundary JmpRel32/CallRel32 need).
//
// cond is the low nibble of the one-byte Jcc opcode (0x70 | cond is the
// short form; this always emits the 0F 8x near form so the placeholder is
// a full rel32 regardless of how far away the target ends up being).
func JccRel32(cond byte) []byte {
	return []byte{0x0F, 0x80 | cond, 0, 0, 0, 0}
}

const (
	CondE  = 0x4 // ZF=1
	CondNE = 0x5 // ZF=0
	CondAE = 0x3 // CF=0 (unsigned >=)
	CondL  = 0xC // SF!=OF (signed <)
	CondGE = 0xD // SF=OF (signed >=)
)

// JmpRel32 encodes "jmp rel32" with a placeholder displacement.
func JmpRel32() []byte { return []byte{0xE9, 0, 0, 0, 0} }

// CallRel32 encodes "call rel32" with a placeholder displacement.
func CallRel32() []byte { return []byte{0xE8, 0, 0, 0, 0} }

// Ret encodes "ret".
func Ret() []byte { return []byte{0xC3} }

// Int3 encodes "int3", the trap codebuf pre-fills idle buffer space with.
func Int3() []byte { return []byte{0xCC} }

// IndirectJmpMemSIB encodes "jmp [base+index*8]" — used to jump through
// the inline JIT's per-address block table.
func IndirectJmpMemSIB(base, index Reg) []byte {
	modrm := 0x00 | (byte(4) << 3) | 0x04 // /4 (jmp r/m), mod=00, rm=100 (SIB)
	sib := (3 << 6) | (byte(index) << 3) | byte(base)
	return []byte{0xFF, modrm, sib}
}

// PatchRel32 writes the little-endian rel32 displacement for a
// placeholder instruction (JccRel32, JmpRel32 or CallRel32, all 6 or 5
// bytes with the displacement in the last 4) so it lands at targetAddr.
// siteAddr is the address of code[0] in the final buffer, instrOffset the
// byte offset of the instruction's first opcode byte within code, and
// instrLen its total length (6 for JccRel32, 5 for Jmp/CallRel32).
func PatchRel32(code []byte, instrOffset, instrLen int, siteAddr, targetAddr uintptr) {
	rel := int32(int64(targetAddr) - int64(siteAddr+uintptr(instrOffset+instrLen)))
	binary.LittleEndian.PutUint32(code[instrOffset+instrLen-4:instrOffset+instrLen], uint32(rel))
}
