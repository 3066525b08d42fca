package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location
// and generated instruction word.
type Opcode struct {
	LineNo int      // Source line number, starting at 1.
	Ip     int      // Byte address of the instruction.
	Words  []string // Source words of the line.
	Code   Code     // Assembled instruction word.
}

// Program is an ordered listing of assembled source lines.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
}

// Debug finds the source line of the instruction at byte address ip.
func (prog *Program) Debug(ip uint64) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= uint64(op.Ip) && ip < uint64(op.Ip)+CODE_SIZE {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
			}
			break
		}
	}

	return
}

// Binary returns the program image words, in address order.
func (prog *Program) Binary() (bins []uint32) {
	bins = make([]uint32, 0, len(prog.Opcodes))
	for _, code := range prog.Codes() {
		bins = append(bins, uint32(code))
	}

	return
}

// Codes iterates over the byte address and instruction of each line.
func (prog *Program) Codes() iter.Seq2[uint64, Code] {
	return func(yield func(ip uint64, code Code) bool) {
		for _, op := range prog.Opcodes {
			if !yield(uint64(op.Ip), op.Code) {
				return
			}
		}
	}
}
