// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"io"

	"github.com/ezrec/drel/cpu"
	drelio "github.com/ezrec/drel/io"
)

// Emulator state. CPU + program listing + program image.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Rom drelio.Rom // Program image loaded on reset.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(cpu.MEMORY_SIZE),
		Program: &cpu.Program{},
	}

	return
}

// Close the emulator, releasing the CPU memory.
func (emu *Emulator) Close() (err error) {
	return emu.Cpu.Close()
}

// Reset the CPU and load the program image.
// If a program listing is present, the image is rebuilt from it.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	if emu.Program != nil && len(emu.Program.Opcodes) != 0 {
		emu.Rom.Data = emu.Program.Binary()
	}

	err = emu.Cpu.Reset()
	if err != nil {
		return
	}

	_, err = emu.Cpu.Load(emu.Rom.Reader())
	return
}

// LoadImage replaces the program with a raw image, and resets.
// There is no source listing for an image, so LineNo() is always 0.
func (emu *Emulator) LoadImage(image io.Reader) (err error) {
	emu.Program = &cpu.Program{}

	err = emu.Rom.Unmarshal(image)
	if err != nil {
		return
	}

	return emu.Reset()
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Ip returns the current program counter.
func (emu *Emulator) Ip() uint64 {
	return emu.Cpu.Pc
}

// LineNo returns the source line number of the next instruction.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.Opcode.LineNo
}

// Tick performs a single tick of the emulator.
// done is set once the CPU has halted, by EXIT or by a fault.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	ip := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Ip: ip, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}

	done = !emu.Cpu.Running

	return
}

// Run ticks the emulator until the CPU halts.
// There is no step limit.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
