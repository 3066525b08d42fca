package cpu

import (
	"fmt"
)

// CodeOp is the 6-bit operation selector of an instruction word.
type CodeOp uint8

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_EXIT = CodeOp(0) // EXIT
	OP_ADD  = CodeOp(1) // ADD
	OP_ADDI = CodeOp(2) // ADDI
	OP_LI   = CodeOp(3) // LI
	OP_BEQ  = CodeOp(4) // BEQ
	OP_JMP  = CodeOp(5) // JMP
	OP_SUB  = CodeOp(6) // SUB
)

// Field layout of an instruction word.
const (
	OP_SHIFT  = 26
	OP_MASK   = 0x3f
	REG_MASK  = 0x1f
	IMM_MASK  = 0xffff
	RD_SHIFT  = 21
	RS1_SHIFT = 16
	RS2_SHIFT = 11

	CODE_SIZE = 4 // Bytes per instruction word.
)

// CodeShape is the bit-field layout used by an opcode.
type CodeShape int

const (
	SHAPE_R = CodeShape(iota) // opcode | rd | rs1 | rs2 | unused
	SHAPE_I                   // opcode | rd | rs1 | imm16
	SHAPE_B                   // opcode | rs1 | rs2 | offset16
)

// Shape returns the field layout of the opcode.
func (op CodeOp) Shape() CodeShape {
	switch op {
	case OP_ADDI, OP_LI:
		return SHAPE_I
	case OP_BEQ, OP_JMP:
		return SHAPE_B
	default:
		return SHAPE_R
	}
}

// Valid returns true if the opcode is one the CPU can execute.
func (op CodeOp) Valid() bool {
	return op <= OP_SUB
}

// Code is a single 32-bit instruction word.
type Code uint32

func makeCode(op CodeOp, a, b int, low uint32) Code {
	return Code((uint32(op)&OP_MASK)<<OP_SHIFT |
		(uint32(a)&REG_MASK)<<RD_SHIFT |
		(uint32(b)&REG_MASK)<<RS1_SHIFT |
		low)
}

// MakeCodeR creates a register-only instruction.
func MakeCodeR(op CodeOp, rd, rs1, rs2 int) Code {
	return makeCode(op, rd, rs1, (uint32(rs2)&REG_MASK)<<RS2_SHIFT)
}

// MakeCodeI creates a register and immediate instruction.
// Only the low 16 bits of imm are kept.
func MakeCodeI(op CodeOp, rd, rs1 int, imm int) Code {
	return makeCode(op, rd, rs1, uint32(imm)&IMM_MASK)
}

// MakeCodeB creates a branch instruction with a signed byte offset.
// Only the low 16 bits of offset are kept.
func MakeCodeB(op CodeOp, rs1, rs2 int, offset int) Code {
	return makeCode(op, rs1, rs2, uint32(offset)&IMM_MASK)
}

// MakeCodeExit creates the halt instruction.
func MakeCodeExit() Code {
	return MakeCodeR(OP_EXIT, 0, 0, 0)
}

// Op returns the opcode field of the instruction word.
func (code Code) Op() CodeOp {
	return CodeOp((uint32(code) >> OP_SHIFT) & OP_MASK)
}

// RDecode decodes the destination and both source registers.
func (code Code) RDecode() (rd, rs1, rs2 int) {
	word := uint32(code)
	rd = int((word >> RD_SHIFT) & REG_MASK)
	rs1 = int((word >> RS1_SHIFT) & REG_MASK)
	rs2 = int((word >> RS2_SHIFT) & REG_MASK)
	return
}

// IDecode decodes the destination, source, and sign-extended immediate.
func (code Code) IDecode() (rd, rs1 int, imm int16) {
	word := uint32(code)
	rd = int((word >> RD_SHIFT) & REG_MASK)
	rs1 = int((word >> RS1_SHIFT) & REG_MASK)
	imm = int16(uint16(word & IMM_MASK))
	return
}

// BDecode decodes both compared registers and the sign-extended offset.
func (code Code) BDecode() (rs1, rs2 int, offset int16) {
	word := uint32(code)
	rs1 = int((word >> RD_SHIFT) & REG_MASK)
	rs2 = int((word >> RS1_SHIFT) & REG_MASK)
	offset = int16(uint16(word & IMM_MASK))
	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	op := code.Op()
	if !op.Valid() {
		return fmt.Sprintf(".word 0x%08x", uint32(code))
	}

	switch op {
	case OP_EXIT:
		out = op.String()
	case OP_JMP:
		_, _, offset := code.BDecode()
		out = fmt.Sprintf("%v %d", op, offset)
	case OP_LI:
		rd, _, imm := code.IDecode()
		out = fmt.Sprintf("%v R%d, %d", op, rd, imm)
	default:
		switch op.Shape() {
		case SHAPE_R:
			rd, rs1, rs2 := code.RDecode()
			out = fmt.Sprintf("%v R%d, R%d, R%d", op, rd, rs1, rs2)
		case SHAPE_I:
			rd, rs1, imm := code.IDecode()
			out = fmt.Sprintf("%v R%d, R%d, %d", op, rd, rs1, imm)
		case SHAPE_B:
			rs1, rs2, offset := code.BDecode()
			out = fmt.Sprintf("%v R%d, R%d, %d", op, rs1, rs2, offset)
		}
	}

	return
}
