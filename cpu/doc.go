// Package cpu implements the register machine and assembler for the DREL
// instruction set.
//
// Every DREL instruction is a single 32-bit word, with a 6-bit opcode in
// the high bits followed by register and immediate fields in one of three
// layouts (R, I, and B type). The CPU has 32 64-bit registers (R0 always
// reads as zero), a byte addressed program counter, and a flat memory
// that holds the program image at address 0.
//
// The assembler converts one line of source text into one instruction
// word, with no labels or cross-line analysis.
package cpu
