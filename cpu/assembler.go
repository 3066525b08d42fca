// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Operand kind for a mnemonic argument.
type Operand int

const (
	ARG_REG = Operand(iota) // Register, R0 through R31.
	ARG_IMM                 // Signed decimal immediate or byte offset.
)

// Mnemonic describes how one source mnemonic is lowered to a Code.
type Mnemonic struct {
	Op     CodeOp    // Opcode that is emitted.
	Args   []Operand // Expected operands, in source order.
	encode func(op CodeOp, args []int) Code
}

func makeR(op CodeOp, args []int) Code { return MakeCodeR(op, args[0], args[1], args[2]) }
func makeI(op CodeOp, args []int) Code { return MakeCodeI(op, args[0], args[1], args[2]) }
func makeB(op CodeOp, args []int) Code { return MakeCodeB(op, args[0], args[1], args[2]) }

// mnemonicMap maps upper case mnemonics to their encodings.
// Every executable opcode must have an entry here.
var mnemonicMap = map[string]Mnemonic{
	"EXIT": {OP_EXIT, nil, func(op CodeOp, args []int) Code { return MakeCodeExit() }},
	"ADD":  {OP_ADD, []Operand{ARG_REG, ARG_REG, ARG_REG}, makeR},
	"SUB":  {OP_SUB, []Operand{ARG_REG, ARG_REG, ARG_REG}, makeR},
	"ADDI": {OP_ADDI, []Operand{ARG_REG, ARG_REG, ARG_IMM}, makeI},
	// LI Rd, Imm => ADDI Rd, R0, Imm
	"LI": {OP_ADDI, []Operand{ARG_REG, ARG_IMM}, func(op CodeOp, args []int) Code {
		return MakeCodeI(op, args[0], 0, args[1])
	}},
	"BEQ": {OP_BEQ, []Operand{ARG_REG, ARG_REG, ARG_IMM}, makeB},
	// JMP Offset => B-Type with both registers zero
	"JMP": {OP_JMP, []Operand{ARG_IMM}, func(op CodeOp, args []int) Code {
		return MakeCodeB(op, 0, 0, args[0])
	}},
}

var (
	reRegister   = regexp.MustCompile(`[0-9]+`)
	reImmediate  = regexp.MustCompile(`-?[0-9]+`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
)

// Assembler converts DREL source text into instruction words.
//
// Each line is assembled on its own; there are no labels, and branch
// offsets are literal byte counts. A line that cannot be assembled
// yields the zero word, which is also the encoding of EXIT.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Names visible to $(...) expressions.
}

// Predefine defines a new name or redefines an existing name for
// use in $(...) operand expressions.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// splitWords splits a line on commas and spaces.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.predefine {
		v64, perr := strconv.ParseInt(str, 0, 64)
		if perr != nil {
			// Only integer names are visible.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// expand replaces all $(...) expressions in the line with their values.
func (asm *Assembler) expand(line string) (out string, err error) {
	out = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
			return str
		}
		return fmt.Sprintf("%d", value)
	})
	return
}

// valueOf extracts the first embedded decimal run of an operand.
func valueOf(kind Operand, word string) (value int, err error) {
	re := reRegister
	if kind == ARG_IMM {
		re = reImmediate
	}

	digits := re.FindString(word)
	if len(digits) == 0 {
		err = ErrParseNumber(word)
		return
	}

	v64, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)
	return
}

// assemble encodes a single line, or reports why it could not.
func (asm *Assembler) assemble(line string) (code Code, err error) {
	if strings.Contains(line, "$(") {
		line, err = asm.expand(line)
		if err != nil {
			return
		}
	}

	words := splitWords(line)
	if len(words) == 0 {
		err = ErrMnemonicMissing
		return
	}

	mn, ok := mnemonicMap[strings.ToUpper(words[0])]
	if !ok {
		err = ErrMnemonicInvalid
		return
	}

	words = words[1:]
	if len(words) != len(mn.Args) {
		err = ErrOperandCount
		return
	}

	args := make([]int, len(words))
	for n, word := range words {
		args[n], err = valueOf(mn.Args[n], word)
		if err != nil {
			return
		}
	}

	code = mn.encode(mn.Op, args)
	return
}

// assembleLine assembles and logs a line in verbose mode.
func (asm *Assembler) assembleLine(line string, lineno int) Code {
	if asm.Verbose {
		log.Printf("%v: %v\n", lineno, line)
	}

	code, err := asm.assemble(line)
	if err != nil {
		if asm.Verbose {
			log.Printf("asm: %v", ErrLine{LineNo: lineno, Line: line, Err: err})
		}
		return Code(0)
	}

	return code
}

// AssembleLine converts one line of source text to an instruction word.
// Unrecognized mnemonics and malformed operand lists return the zero word.
func (asm *Assembler) AssembleLine(line string) Code {
	return asm.assembleLine(line, 0)
}

// AssembleProgram assembles each line independently, in order.
// The program always has exactly one opcode per input line.
func (asm *Assembler) AssembleProgram(lines []string) (prog *Program) {
	prog = &Program{
		Opcodes: make([]Opcode, 0, len(lines)),
	}

	for n, line := range lines {
		prog.Opcodes = append(prog.Opcodes, Opcode{
			LineNo: n + 1,
			Ip:     n * CODE_SIZE,
			Words:  splitWords(line),
			Code:   asm.assembleLine(line, n+1),
		})
	}

	return
}

// Parse parses an input stream into a Program.
// Text after a ';' is a comment, and blank lines are skipped.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	prog = &Program{}

	var lineno int
	for scanner.Scan() {
		lineno += 1

		text_comment := strings.Split(scanner.Text(), ";")
		line := strings.TrimSpace(text_comment[0])
		if len(line) == 0 {
			continue
		}

		prog.Opcodes = append(prog.Opcodes, Opcode{
			LineNo: lineno,
			Ip:     len(prog.Opcodes) * CODE_SIZE,
			Words:  splitWords(line),
			Code:   asm.assembleLine(line, lineno),
		})
	}

	err = scanner.Err()
	if err != nil {
		prog = nil
		return
	}

	return
}
