package cpu

import (
	"errors"
	"fmt"
	"io"
	"log"
)

const (
	REGISTER_COUNT = 32        // General purpose registers, R0 is always zero.
	MEMORY_SIZE    = 64 * 1024 // Default address space, in bytes.
	DUMP_REGISTERS = 8         // Registers shown by String().
)

// Cpu is the simulation context for a DREL register machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Pc       uint64                 // Byte address of the next instruction.
	Register [REGISTER_COUNT]uint64 // Register bank.
	Memory   []byte                 // Byte addressable memory.
	Running  bool                   // Cleared once the CPU halts.

	Exit  uint64 // Byte address of the instruction that halted the CPU.
	Ticks int    // CPU ticks counter.
}

// NewCpu creates a new CPU with a specifically sized memory.
func NewCpu(size uint) (cpu *Cpu) {
	cpu = &Cpu{
		Memory:  make([]byte, size),
		Running: true,
	}

	return
}

// Close releases the CPU memory. The CPU cannot run afterwards.
func (cpu *Cpu) Close() (err error) {
	cpu.Memory = nil
	cpu.Running = false

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	for n := range DUMP_REGISTERS {
		text += fmt.Sprintf("% 5s: %d\n", fmt.Sprintf("R%d", n), int64(cpu.Register[n]))
	}
	text += fmt.Sprintf("% 5s: %d\n", "PC", cpu.Pc)

	return
}

// Reset the CPU state.
// - Clears the registers and memory.
// - Zeros statistics counters.
// - Sets the PC to 0 and the CPU running.
func (cpu *Cpu) Reset() (err error) {
	if cpu.Memory == nil {
		err = ErrMemoryClosed
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Memory)
	cpu.Pc = 0
	cpu.Exit = 0
	cpu.Ticks = 0
	cpu.Running = true

	return
}

// Load reads a program image into memory, starting at address 0.
// A short image leaves the rest of memory zeroed, and a long image
// is truncated to the memory size.
func (cpu *Cpu) Load(in io.Reader) (n int, err error) {
	if cpu.Memory == nil {
		err = ErrMemoryClosed
		return
	}

	clear(cpu.Memory)

	n, err = io.ReadFull(in, cpu.Memory)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", n)
	}

	return
}

// readByte is a bounds checked memory read.
func (cpu *Cpu) readByte(addr uint64) (value byte, err error) {
	if addr >= uint64(len(cpu.Memory)) {
		err = ErrAddressRange
		return
	}

	value = cpu.Memory[addr]
	return
}

// FetchCode fetches the little-endian instruction word at the PC.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	if !cpu.Running {
		err = ErrHalted
		return
	}

	var word uint32
	for n := range uint64(CODE_SIZE) {
		addr := cpu.Pc + n
		if addr < cpu.Pc {
			err = errors.Join(ErrFetch, ErrAddressRange)
			return
		}
		var value byte
		value, err = cpu.readByte(addr)
		if err != nil {
			err = errors.Join(ErrFetch, err)
			return
		}
		word |= uint32(value) << (8 * n)
	}

	code = Code(word)
	return
}

// Tick executes a single CPU instruction cycle.
func (cpu *Cpu) Tick() (err error) {
	code, err := cpu.FetchCode()
	if errors.Is(err, ErrHalted) {
		return
	}
	if err != nil {
		cpu.halt()
		return
	}

	cpu.Pc += CODE_SIZE
	cpu.Ticks += 1

	err = cpu.Execute(code)

	return
}

// halt stops the CPU at the instruction just fetched.
func (cpu *Cpu) halt() {
	cpu.Running = false
	cpu.Exit = cpu.Pc
}

// branchTarget computes the destination of a taken branch or jump.
// The offset is relative to the address of the branch itself.
func branchTarget(next uint64, offset int16) uint64 {
	return next - CODE_SIZE + uint64(int64(offset))
}

// Execute executes a single decoded instruction. The PC must
// already point at the following instruction.
func (cpu *Cpu) Execute(code Code) (err error) {
	ip := cpu.Pc - CODE_SIZE

	if cpu.Verbose {
		log.Printf("%04x: %v", ip, code)
	}

	regs := &cpu.Register

	regs[0] = 0

	switch op := code.Op(); op {
	case OP_EXIT:
		cpu.Running = false
		cpu.Exit = ip
		if cpu.Verbose {
			log.Printf("cpu: exit at pc=%d", ip)
		}
	case OP_ADD:
		rd, rs1, rs2 := code.RDecode()
		regs[rd] = regs[rs1] + regs[rs2]
	case OP_ADDI:
		rd, rs1, imm := code.IDecode()
		regs[rd] = regs[rs1] + uint64(int64(imm))
	case OP_LI:
		rd, _, imm := code.IDecode()
		regs[rd] = uint64(int64(imm))
	case OP_SUB:
		rd, rs1, rs2 := code.RDecode()
		regs[rd] = regs[rs1] - regs[rs2]
	case OP_BEQ:
		rs1, rs2, offset := code.BDecode()
		if regs[rs1] == regs[rs2] {
			cpu.Pc = branchTarget(cpu.Pc, offset)
		}
	case OP_JMP:
		_, _, offset := code.BDecode()
		cpu.Pc = branchTarget(cpu.Pc, offset)
	default:
		cpu.Running = false
		cpu.Exit = ip
		err = ErrOpcode{Code: code, Ip: ip}
		if cpu.Verbose {
			log.Printf("cpu: %v", err)
		}
	}

	regs[0] = 0

	return
}
