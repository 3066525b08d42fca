// Package bench compares the front-end decode cost of the fixed width
// DREL encoding against a simulated variable width legacy decoder.
//
// Every DREL instruction is decoded in a single cycle. The legacy decoder
// must first find the length of each instruction, which is modelled as a
// random penalty per instruction.
package bench

import (
	"errors"
	"io"
	"math/rand/v2"

	"github.com/ezrec/drel/cpu"
	"github.com/ezrec/drel/emulator"
	"github.com/ezrec/drel/translate"
)

const (
	ITERATIONS         = 100000 // Default loop count.
	COUNTER_REGISTER   = 1      // Register holding the loop count.
	DREL_DECODE_CYCLES = 1      // Fixed width decode cost.
)

var f = translate.From

var ErrIterations = errors.New(f("iterations must be at least 1"))

// SampleProgram counts R1 down to zero, one per loop.
// R1 is preset by the benchmark before the run.
var SampleProgram = []string{
	"LI   R2, 1",      // Decrement
	"LI   R3, 0",      // Limit
	"SUB  R1, R1, R2", // [8]  R1 = R1 - R2
	"BEQ  R1, R3, 8",  // [12] If R1 == R3, skip to EXIT
	"JMP  -8",         // [16] Back to SUB
	"EXIT",            // [20] End of program
}

// LegacyPenalty returns the simulated cycles needed by a variable width
// decoder to find the length of one instruction.
// 70% of instructions are easy (1 cycle), 20% medium (2 cycles), and
// 10% complex (4 cycles).
func LegacyPenalty(rng *rand.Rand) int {
	r := rng.IntN(100)
	switch {
	case r < 70:
		return 1
	case r < 90:
		return 2
	default:
		return 4
	}
}

// Result of a benchmark run.
type Result struct {
	Steps        int   // Instructions executed, including the final EXIT.
	DrelCycles   int64 // Decode cycles for the fixed width encoding.
	LegacyCycles int64 // Decode cycles for the simulated legacy decoder.
}

// Gain is the percentage of front-end work saved by fixed width decode.
func (res Result) Gain() float64 {
	if res.LegacyCycles == 0 {
		return 0
	}

	return float64(res.LegacyCycles-res.DrelCycles) / float64(res.LegacyCycles) * 100.0
}

// Report writes a human readable summary of the result.
func (res Result) Report(w io.Writer) (err error) {
	lines := []struct {
		format string
		args   []any
	}{
		{"------------------------------------------------------------\n", nil},
		{"RESULTS (Lower is Better):\n", nil},
		{"------------------------------------------------------------\n", nil},
		{"Instructions:        %d\n", []any{res.Steps}},
		{"DREL Decoder Cycles: %d (Base Line)\n", []any{res.DrelCycles}},
		{"x86  Decoder Cycles: %d (Legacy Tax)\n", []any{res.LegacyCycles}},
		{"------------------------------------------------------------\n", nil},
		{"EFFICIENCY GAIN: +%.2f%% less front-end work\n", []any{res.Gain()}},
		{"------------------------------------------------------------\n", nil},
	}

	for _, line := range lines {
		_, err = translate.Fprintf(w, line.format, line.args...)
		if err != nil {
			return
		}
	}

	return
}

// Bench drives an emulator through a program, counting decode cycles.
type Bench struct {
	Iterations uint64     // Loop count preset into R1.
	Rand       *rand.Rand // Source for the legacy decoder penalty.
}

// NewBench creates a benchmark with a seeded penalty source.
func NewBench(iterations uint64, seed uint64) *Bench {
	return &Bench{
		Iterations: iterations,
		Rand:       rand.New(rand.NewPCG(seed, seed)),
	}
}

// Program assembles the sample program.
func (bench *Bench) Program(asm *cpu.Assembler) *cpu.Program {
	return asm.AssembleProgram(SampleProgram)
}

// Run resets the emulator, presets the loop counter, and runs to halt.
func (bench *Bench) Run(emu *emulator.Emulator) (res Result, err error) {
	if bench.Iterations == 0 {
		err = ErrIterations
		return
	}

	err = emu.Reset()
	if err != nil {
		return
	}

	emu.Cpu.Register[COUNTER_REGISTER] = bench.Iterations

	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}

		res.Steps += 1
		res.DrelCycles += DREL_DECODE_CYCLES
		res.LegacyCycles += int64(LegacyPenalty(bench.Rand))
	}

	return
}
