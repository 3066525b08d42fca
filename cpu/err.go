package cpu

import (
	"errors"

	"github.com/ezrec/drel/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted       = errors.New(f("cpu halted"))
	ErrFetch        = errors.New(f("fetch"))
	ErrAddressRange = errors.New(f("address out of range"))
	ErrMemoryClosed = errors.New(f("memory released"))

	// Instruction decode errors
	ErrOpcodeDecode = errors.New(f("decode"))
)

// ErrOpcode is the fault raised for an instruction word whose opcode
// the CPU does not implement.
type ErrOpcode struct {
	Code Code   // Offending instruction word.
	Ip   uint64 // Byte address of the instruction.
}

func (eo ErrOpcode) Error() string {
	return f("illegal opcode 0x%02x at 0x%04x", uint8(eo.Code.Op()), eo.Ip)
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

func (eo ErrOpcode) Unwrap() error {
	return ErrOpcodeDecode
}

// ErrLine describes a source line that assembled to the neutral zero word.
type ErrLine struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrLine) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrLine) Unwrap() error {
	return err.Err
}

var (
	// Assembler diagnostics. These are only ever logged; a malformed
	// line still assembles to the zero word.
	ErrMnemonicMissing = errors.New(f("mnemonic missing"))
	ErrMnemonicInvalid = errors.New(f("mnemonic invalid"))
	ErrOperandCount    = errors.New(f("operand count"))
)

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
