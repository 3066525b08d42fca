package cpu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
)

// newLoaded creates a CPU with the codes loaded at address 0.
func newLoaded(t *testing.T, codes ...Code) (cpu *Cpu) {
	var image []byte
	for _, code := range codes {
		image = binary.LittleEndian.AppendUint32(image, uint32(code))
	}

	cpu = NewCpu(MEMORY_SIZE)
	n, err := cpu.Load(bytes.NewReader(image))
	assert.NoError(t, err)
	assert.Equal(t, len(image), n)

	return
}

// runToHalt ticks until the CPU halts, failing after limit ticks.
func runToHalt(t *testing.T, cpu *Cpu, limit int) (err error) {
	for cpu.Running {
		if cpu.Ticks >= limit {
			t.Fatalf("no halt after %d ticks\n%v", limit, cpu)
		}
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}

func TestCpu(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)
	assert.True(cpu.Running)
	assert.Equal(uint64(0), cpu.Pc)
	assert.Equal(MEMORY_SIZE, len(cpu.Memory))
	assert.Equal([REGISTER_COUNT]uint64{}, cpu.Register)

	assert.NoError(cpu.Close())
	assert.False(cpu.Running)
	assert.Nil(cpu.Memory)
	assert.ErrorIs(cpu.Reset(), ErrMemoryClosed)
	_, err := cpu.Load(bytes.NewReader(nil))
	assert.ErrorIs(err, ErrMemoryClosed)
}

func TestCpuLoad(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(16)
	cpu.Memory[12] = 0xaa

	// Short images leave the rest of memory zeroed.
	n, err := cpu.Load(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
	assert.NoError(err)
	assert.Equal(5, n)
	assert.Equal([]byte{1, 2, 3, 4, 5, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, cpu.Memory)

	// Long images are truncated.
	long := bytes.Repeat([]byte{0x5a}, 20)
	n, err = cpu.Load(bytes.NewReader(long))
	assert.NoError(err)
	assert.Equal(16, n)
	assert.Equal(long[:16], cpu.Memory)

	_, err = cpu.Load(iotest.ErrReader(iotest.ErrTimeout))
	assert.ErrorIs(err, iotest.ErrTimeout)
}

func TestCpuReset(t *testing.T) {
	assert := assert.New(t)

	cpu := newLoaded(t, MakeCodeI(OP_ADDI, 1, 0, 7), MakeCodeExit())
	assert.NoError(runToHalt(t, cpu, 10))
	assert.Equal(uint64(7), cpu.Register[1])
	assert.Equal(2, cpu.Ticks)

	assert.NoError(cpu.Reset())
	assert.True(cpu.Running)
	assert.Equal(uint64(0), cpu.Pc)
	assert.Equal(uint64(0), cpu.Exit)
	assert.Equal(0, cpu.Ticks)
	assert.Equal(uint64(0), cpu.Register[1])
	assert.Equal(make([]byte, MEMORY_SIZE), cpu.Memory)
}

func TestCpuFetch(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(8)
	copy(cpu.Memory, []byte{0x78, 0x56, 0x34, 0x12, 0xf8, 0xff, 0x00, 0x14})

	code, err := cpu.FetchCode()
	assert.NoError(err)
	assert.Equal(Code(0x12345678), code)

	cpu.Pc = 4
	code, err = cpu.FetchCode()
	assert.NoError(err)
	assert.Equal(MakeCodeB(OP_JMP, 0, 0, -8), code)

	cpu.Pc = 6
	_, err = cpu.FetchCode()
	assert.ErrorIs(err, ErrFetch)
	assert.ErrorIs(err, ErrAddressRange)

	cpu.Pc = ^uint64(1)
	_, err = cpu.FetchCode()
	assert.ErrorIs(err, ErrAddressRange)
}

func TestCpuExecute(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		code   Code
		pc     uint64
		xreg   int
		xvalue uint64
		xpc    uint64
	}){
		{"add", MakeCodeR(OP_ADD, 4, 1, 2), 4, 4, 13, 4},
		{"sub", MakeCodeR(OP_SUB, 4, 2, 1), 4, 4, 0xffff_ffff_ffff_fffb, 4},
		{"addi", MakeCodeI(OP_ADDI, 4, 1, -11), 4, 4, 0xffff_ffff_ffff_fffe, 4},
		{"li", MakeCodeI(OP_LI, 4, 1, -1), 4, 4, 0xffff_ffff_ffff_ffff, 4},
		{"beq taken", MakeCodeB(OP_BEQ, 1, 3, 16), 12, 0, 0, 24},
		{"beq not taken", MakeCodeB(OP_BEQ, 1, 2, 16), 12, 0, 0, 12},
		{"beq backward", MakeCodeB(OP_BEQ, 0, 0, -8), 12, 0, 0, 0},
		{"jmp", MakeCodeB(OP_JMP, 0, 0, -4), 8, 0, 0, 0},
		{"jmp self", MakeCodeB(OP_JMP, 0, 0, 0), 8, 0, 0, 4},
		{"write r0", MakeCodeR(OP_ADD, 0, 1, 2), 4, 0, 0, 4},
		{"li r0", MakeCodeI(OP_ADDI, 0, 0, 99), 4, 0, 0, 4},
	}

	for _, entry := range table {
		cpu := NewCpu(64)
		cpu.Register[1] = 9
		cpu.Register[2] = 4
		cpu.Register[3] = 9
		cpu.Pc = entry.pc

		err := cpu.Execute(entry.code)
		assert.NoError(err, entry.name)
		assert.True(cpu.Running, entry.name)
		assert.Equal(entry.xvalue, cpu.Register[entry.xreg], entry.name)
		assert.Equal(entry.xpc, cpu.Pc, entry.name)
	}
}

func TestCpuRegisterZero(t *testing.T) {
	assert := assert.New(t)

	cpu := newLoaded(t,
		MakeCodeI(OP_ADDI, 1, 0, 5),
		MakeCodeI(OP_ADDI, 2, 0, 6),
		MakeCodeR(OP_ADD, 0, 1, 2),
		MakeCodeI(OP_ADDI, 0, 1, 1),
		MakeCodeI(OP_LI, 0, 0, 3),
		MakeCodeR(OP_SUB, 0, 0, 1),
		MakeCodeExit(),
	)

	for cpu.Running {
		assert.Equal(uint64(0), cpu.Register[0])
		assert.NoError(cpu.Tick())
		assert.Equal(uint64(0), cpu.Register[0])
	}

	assert.Equal(uint64(5), cpu.Register[1])
	assert.Equal(uint64(6), cpu.Register[2])

	// A stray R0 value is ignored as a source.
	cpu = newLoaded(t, MakeCodeR(OP_ADD, 1, 0, 0), MakeCodeExit())
	cpu.Register[0] = 42
	assert.NoError(runToHalt(t, cpu, 10))
	assert.Equal(uint64(0), cpu.Register[1])
	assert.Equal(uint64(0), cpu.Register[0])
}

func TestCpuBranchLoop(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog := asm.AssembleProgram([]string{
		"SUB R1,R1,R2", // [0]
		"BEQ R1,R3,8",  // [4]
		"JMP -8",       // [8]
		"EXIT",         // [12]
	})

	cpu := newLoaded(t, prog.Opcodes[0].Code, prog.Opcodes[1].Code, prog.Opcodes[2].Code, prog.Opcodes[3].Code)
	cpu.Register[1] = 3
	cpu.Register[2] = 1
	cpu.Register[3] = 0

	loops := 0
	for cpu.Running {
		if cpu.Pc == 0 {
			loops++
		}
		assert.NoError(cpu.Tick())
		if loops > 3 {
			t.Fatalf("too many loops\n%v", cpu)
		}
	}

	assert.Equal(3, loops)
	assert.Equal(uint64(0), cpu.Register[1])
	assert.Equal(uint64(12), cpu.Exit)
	assert.Equal(uint64(16), cpu.Pc)
	// 3 x (SUB, BEQ), 2 x JMP, EXIT
	assert.Equal(9, cpu.Ticks)
}

func TestCpuIllegalOpcode(t *testing.T) {
	assert := assert.New(t)

	for op := range CodeOp(OP_MASK + 1) {
		if op.Valid() {
			continue
		}

		cpu := newLoaded(t, MakeCodeI(op, 1, 2, 3), MakeCodeExit())
		cpu.Register[1] = 11
		cpu.Register[2] = 22
		before := cpu.Register

		err := cpu.Tick()
		assert.Error(err)
		assert.ErrorIs(err, ErrOpcode{})
		assert.ErrorIs(err, ErrOpcodeDecode)

		var eo ErrOpcode
		assert.True(errors.As(err, &eo))
		assert.Equal(op, eo.Code.Op())
		assert.Equal(uint64(0), eo.Ip)

		assert.False(cpu.Running)
		assert.Equal(1, cpu.Ticks)
		assert.Equal(uint64(0), cpu.Exit)
		assert.Equal(before, cpu.Register)

		// Halted CPUs do not tick.
		assert.ErrorIs(cpu.Tick(), ErrHalted)
		assert.Equal(1, cpu.Ticks)
	}
}

func TestCpuRunOffEnd(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(8)
	binary.LittleEndian.PutUint32(cpu.Memory[0:], uint32(MakeCodeB(OP_JMP, 0, 0, 8)))

	err := cpu.Tick()
	assert.NoError(err)
	assert.Equal(uint64(8), cpu.Pc)

	err = cpu.Tick()
	assert.ErrorIs(err, ErrAddressRange)
	assert.False(cpu.Running)
	assert.Equal(uint64(8), cpu.Exit)
	assert.Equal(1, cpu.Ticks)
}

func TestCpuString(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(4)
	cpu.Register[1] = 5
	cpu.Register[7] = ^uint64(0)
	cpu.Pc = 24

	text := cpu.String()
	assert.Contains(text, "   R1: 5\n")
	assert.Contains(text, "   R7: -1\n")
	assert.Contains(text, "   PC: 24\n")
	assert.NotContains(text, "R8")
}
