package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func run(t *testing.T, cpu *Cpu, steps int) {
	for range steps {
		err := cpu.Step()
		assert.NoError(t, err)
		if err != nil {
			t.Log(cpu.String())
			t.FailNow()
		}
	}
}

func TestCpu_Reset(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.Equal(uint16(PROGRAM_START), cpu.Pc)
	assert.Equal(FONT[:], cpu.Memory[:len(FONT)])
	assert.True(cpu.Stack.Empty())

	cpu.V[3] = 9
	cpu.I = 0x123
	cpu.Delay = 4
	cpu.Waiting = true
	cpu.Stack.Push(0x202)
	cpu.Reset()

	assert.Equal(uint8(0), cpu.V[3])
	assert.Equal(uint16(0), cpu.I)
	assert.Equal(uint8(0), cpu.Delay)
	assert.False(cpu.Waiting)
	assert.True(cpu.Stack.Empty())
}

func TestCpu_Load(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load([]byte{0x12, 0x34}))
	assert.Equal(uint8(0x12), cpu.Memory[0x200])
	assert.Equal(uint8(0x34), cpu.Memory[0x201])
	assert.Equal(uint8(0x00), cpu.Memory[0x202])

	assert.NoError(cpu.Load(make([]byte, PROGRAM_LIMIT)))
	assert.ErrorIs(cpu.Load(make([]byte, PROGRAM_LIMIT+1)), ErrProgramSize)
}

func TestCpu_AddScenario(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load([]byte{0x60, 0x05, 0x61, 0x03, 0x80, 0x14}))
	run(t, cpu, 3)

	assert.Equal(uint8(8), cpu.V[0])
	assert.Equal(uint8(0), cpu.V[0xf])
	assert.Equal(uint16(0x206), cpu.Pc)
	assert.Equal(3, cpu.Steps)
}

func TestCpu_BcdScenario(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load([]byte{0xa2, 0x00, 0xf0, 0x33}))
	cpu.V[0] = 0xfe
	run(t, cpu, 2)

	assert.Equal(uint8(2), cpu.Memory[0x200])
	assert.Equal(uint8(5), cpu.Memory[0x201])
	assert.Equal(uint8(4), cpu.Memory[0x202])
}

func TestCpu_Jump(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load(words(0x1300)))
	run(t, cpu, 1)

	assert.Equal(uint16(0x300), cpu.Pc)
	assert.True(cpu.Stack.Empty())
}

func TestCpu_CallReturn(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load(words(0x6000, 0x2300)))
	cpu.Memory[0x300] = 0x00
	cpu.Memory[0x301] = 0xee

	run(t, cpu, 2)
	assert.Equal(uint16(0x300), cpu.Pc)
	top, ok := cpu.Stack.Peek()
	assert.True(ok)
	assert.Equal(uint16(0x204), top)

	run(t, cpu, 1)
	assert.Equal(uint16(0x204), cpu.Pc)
	assert.True(cpu.Stack.Empty())
}

func TestCpu_ReturnEmpty(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load(words(0x00ee)))

	err := cpu.Step()
	assert.ErrorIs(err, ErrStackEmpty)
	assert.Equal(uint16(0x200), cpu.Pc)
	assert.Equal(0, cpu.Steps)
}

func TestCpu_UnknownOpcode(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load(words(0x6007, 0xffff)))
	run(t, cpu, 1)

	err := cpu.Step()
	assert.Equal(ErrUnknownOpcode(0xffff), err)
	assert.Equal(uint16(0x202), cpu.Pc)
	assert.Equal(uint8(7), cpu.V[0])

	err = cpu.Execute(Code{Word: 0x1234, Op: OP_COUNT})
	assert.True(errors.Is(err, ErrUnknownOpcode(0)))
	assert.Equal(uint16(0x202), cpu.Pc)
}

func TestCpu_Sys(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load(words(0x0123)))
	run(t, cpu, 1)
	assert.Equal(uint16(0x202), cpu.Pc)
}

func TestCpu_Skips(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		code  uint16
		vx    uint8
		vy    uint8
		key   bool
		skips bool
	}){
		{"se_vb_eq", 0x3142, 0x42, 0, false, true},
		{"se_vb_ne", 0x3142, 0x41, 0, false, false},
		{"sne_vb_eq", 0x4142, 0x42, 0, false, false},
		{"sne_vb_ne", 0x4142, 0x41, 0, false, true},
		{"se_vv_eq", 0x5120, 0x10, 0x10, false, true},
		{"se_vv_ne", 0x5120, 0x10, 0x11, false, false},
		{"sne_vv_eq", 0x9120, 0x10, 0x10, false, false},
		{"sne_vv_ne", 0x9120, 0x10, 0x11, false, true},
		{"se_vv_nibble_eq", 0x5121, 0x10, 0x10, false, true},
		{"se_vv_nibble_ne", 0x5121, 0x10, 0x11, false, false},
		{"sne_vv_nibble_eq", 0x912f, 0x10, 0x10, false, false},
		{"sne_vv_nibble_ne", 0x912f, 0x10, 0x11, false, true},
		{"skp_held", 0xe19e, 0x0a, 0, true, true},
		{"skp_up", 0xe19e, 0x0a, 0, false, false},
		{"sknp_held", 0xe1a1, 0x0a, 0, true, false},
		{"sknp_up", 0xe1a1, 0x0a, 0, false, true},
	}

	for _, entry := range table {
		cpu, _, keyboard := newTestCpu()
		assert.NoError(cpu.Load(words(entry.code)), entry.name)
		cpu.V[1] = entry.vx
		cpu.V[2] = entry.vy
		keyboard.held[0xa] = entry.key

		run(t, cpu, 1)
		if entry.skips {
			assert.Equal(uint16(0x204), cpu.Pc, entry.name)
		} else {
			assert.Equal(uint16(0x202), cpu.Pc, entry.name)
		}
	}
}

func TestCpu_Alu(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		code uint16
		vx   uint8
		vy   uint8
		out  uint8
		vf   uint8
	}){
		{"ld", 0x8120, 0x11, 0x22, 0x22, 0xcc},
		{"or", 0x8121, 0x0f, 0xf0, 0xff, 0xcc},
		{"and", 0x8122, 0x3c, 0x0f, 0x0c, 0xcc},
		{"xor", 0x8123, 0xff, 0x0f, 0xf0, 0xcc},
		{"add", 0x8124, 0x05, 0x03, 0x08, 0},
		{"add_carry", 0x8124, 0xff, 0x01, 0x00, 1},
		{"add_carry_max", 0x8124, 0xff, 0xff, 0xfe, 1},
		{"sub", 0x8125, 0x05, 0x03, 0x02, 1},
		{"sub_equal", 0x8125, 0x05, 0x05, 0x00, 0},
		{"sub_borrow", 0x8125, 0x03, 0x05, 0xfe, 0},
		{"shr_odd", 0x8126, 0x05, 0x00, 0x02, 1},
		{"shr_even", 0x8126, 0x04, 0x00, 0x02, 0},
		{"subn", 0x8127, 0x03, 0x05, 0x02, 1},
		{"subn_equal", 0x8127, 0x05, 0x05, 0x00, 0},
		{"subn_borrow", 0x8127, 0x05, 0x03, 0xfe, 0},
		{"shl_msb", 0x812e, 0x81, 0x00, 0x02, 1},
		{"shl_no_msb", 0x812e, 0x41, 0x00, 0x82, 0},
		{"ld_vb", 0x61ab, 0x00, 0x00, 0xab, 0xcc},
		{"add_vb", 0x71ff, 0x02, 0x00, 0x01, 0xcc},
	}

	for _, entry := range table {
		cpu, _, _ := newTestCpu()
		assert.NoError(cpu.Load(words(entry.code)), entry.name)
		cpu.V[1] = entry.vx
		cpu.V[2] = entry.vy
		cpu.V[0xf] = 0xcc

		run(t, cpu, 1)
		assert.Equal(entry.out, cpu.V[1], entry.name)
		assert.Equal(entry.vf, cpu.V[0xf], entry.name)
	}
}

func TestCpu_FlagWins(t *testing.T) {
	assert := assert.New(t)

	// When the destination is VF, the flag overwrites the result.
	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load(words(0x8f14)))
	cpu.V[0xf] = 0xff
	cpu.V[1] = 0x02
	run(t, cpu, 1)
	assert.Equal(uint8(1), cpu.V[0xf])
}

func TestCpu_AddProperties(t *testing.T) {
	assert := assert.New(t)

	for a := range 256 {
		for _, b := range []int{0, 1, 0x7f, 0x80, 0xfe, 0xff} {
			cpu, _, _ := newTestCpu()
			assert.NoError(cpu.Load(words(0x8124, 0x7302)))
			cpu.V[1] = uint8(a)
			cpu.V[2] = uint8(b)
			cpu.V[3] = uint8(a)
			run(t, cpu, 2)

			assert.Equal(uint8((a+b)%256), cpu.V[1])
			assert.Equal(flag(a+b > 255), cpu.V[0xf])
			assert.Equal(uint8((a+2)%256), cpu.V[3])
		}
	}
}

func TestCpu_AddImmediateProperties(t *testing.T) {
	assert := assert.New(t)

	for x := range 16 {
		for kk := range 256 {
			cpu, _, _ := newTestCpu()
			assert.NoError(cpu.Load(words(uint16(0x7000 | x<<8 | kk))))

			for _, a := range []int{0, 1, 0x7f, 0x80, 0xfe, 0xff} {
				cpu.Pc = PROGRAM_START
				for n := range cpu.V {
					cpu.V[n] = 0x5a
				}
				cpu.V[x] = uint8(a)
				run(t, cpu, 1)

				// VF is only written as the target register.
				for n, value := range cpu.V {
					if n == x {
						assert.Equal(uint8((a+kk)%256), value, "x=%d kk=%d a=%d", x, kk, a)
					} else {
						assert.Equal(uint8(0x5a), value, "x=%d kk=%d a=%d V%X", x, kk, a, n)
					}
				}
				assert.Equal(uint16(0x202), cpu.Pc)
			}
		}
	}
}

func TestCpu_SubProperties(t *testing.T) {
	assert := assert.New(t)

	for a := range 256 {
		for _, b := range []int{0, 1, 0x7f, 0x80, 0xfe, 0xff} {
			cpu, _, _ := newTestCpu()
			assert.NoError(cpu.Load(words(0x8125)))
			cpu.V[1] = uint8(a)
			cpu.V[2] = uint8(b)
			run(t, cpu, 1)

			assert.Equal(uint8(a-b), cpu.V[1])
			assert.Equal(flag(a > b), cpu.V[0xf])
		}
	}
}

func TestCpu_AddressRegister(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load(words(0xaffe, 0xf11e, 0xf229)))
	cpu.V[1] = 0x03
	cpu.V[2] = 0x0b

	run(t, cpu, 1)
	assert.Equal(uint16(0xffe), cpu.I)

	run(t, cpu, 1)
	assert.Equal(uint16(0x001), cpu.I)

	run(t, cpu, 1)
	assert.Equal(uint16(0x0b*5), cpu.I)
}

func TestCpu_JumpV0(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load(words(0xb300)))
	cpu.V[0] = 0x10
	run(t, cpu, 1)
	assert.Equal(uint16(0x310), cpu.Pc)

	cpu.Reset()
	assert.NoError(cpu.Load(words(0xbfff)))
	cpu.V[0] = 0x02
	run(t, cpu, 1)
	assert.Equal(uint16(0x001), cpu.Pc)
}

func TestCpu_Random(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load(words(0xc10f, 0xc2ff)))
	run(t, cpu, 2)

	assert.Equal(uint8(0xa5&0x0f), cpu.V[1])
	assert.Equal(uint8(0xa5), cpu.V[2])
}

func TestCpu_Timers(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load(words(0x6102, 0xf115, 0xf118, 0xf207)))
	run(t, cpu, 3)
	assert.Equal(uint8(2), cpu.Delay)
	assert.Equal(uint8(2), cpu.Sound)
	assert.True(cpu.Tone())

	cpu.TickTimers()
	run(t, cpu, 1)
	assert.Equal(uint8(1), cpu.V[2])

	cpu.TickTimers()
	assert.False(cpu.Tone())
	cpu.TickTimers()
	assert.Equal(uint8(0), cpu.Delay)
	assert.Equal(uint8(0), cpu.Sound)
}

func TestCpu_StoreLoadRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for x := range 16 {
		cpu, _, _ := newTestCpu()
		store := MakeCode(OP_LD_MV, Reg(x), 0, 0).Word
		load := MakeCode(OP_LD_VM, Reg(x), 0, 0).Word
		assert.NoError(cpu.Load(words(0xa400, store, load)))

		for n := range 16 {
			cpu.V[n] = uint8(0x10 + n)
		}
		run(t, cpu, 2)

		for n := range 16 {
			if n <= x {
				assert.Equal(uint8(0x10+n), cpu.Memory[0x400+n])
			} else {
				assert.Equal(uint8(0), cpu.Memory[0x400+n])
			}
		}

		clear(cpu.V[:x+1])
		run(t, cpu, 1)
		for n := range x + 1 {
			assert.Equal(uint8(0x10+n), cpu.V[n])
		}
		assert.Equal(uint16(0x400), cpu.I)
	}
}

func TestCpu_Draw(t *testing.T) {
	assert := assert.New(t)

	cpu, display, _ := newTestCpu()
	// Draw the '0' glyph at (1, 2), then again to erase it.
	assert.NoError(cpu.Load(words(0x6000, 0xf029, 0x6101, 0x6202, 0xd125, 0xd125, 0x00e0)))
	run(t, cpu, 5)

	assert.Equal(uint8(0), cpu.V[0xf])
	assert.Equal(14, display.toggles)
	for row, bits := range FONT[:5] {
		for col := range 8 {
			on := bits&(0x80>>col) != 0
			assert.Equal(on, display.pixels[2+row][1+col])
		}
	}

	run(t, cpu, 1)
	assert.Equal(uint8(1), cpu.V[0xf])
	assert.Equal(display.pixels, [mockHeight][mockWidth]bool{})

	run(t, cpu, 1)
	assert.Equal(1, display.clears)
}

func TestCpu_DrawCollisionWholeSprite(t *testing.T) {
	assert := assert.New(t)

	cpu, display, _ := newTestCpu()
	assert.NoError(cpu.Load(words(0xa300, 0xd012)))
	cpu.Memory[0x300] = 0x80
	cpu.Memory[0x301] = 0x80
	// Only the first row collides; the second row turns a pixel on.
	display.pixels[0][0] = true
	run(t, cpu, 2)

	assert.Equal(uint8(1), cpu.V[0xf])
	assert.False(display.pixels[0][0])
	assert.True(display.pixels[1][0])
}

func TestCpu_DrawWrap(t *testing.T) {
	assert := assert.New(t)

	cpu, display, _ := newTestCpu()
	assert.NoError(cpu.Load(words(0xa300, 0xd011)))
	cpu.Memory[0x300] = 0xff
	cpu.V[0] = 60
	cpu.V[1] = 31
	run(t, cpu, 2)

	for _, x := range []int{60, 61, 62, 63, 0, 1, 2, 3} {
		assert.True(display.pixels[31][x], "x=%v", x)
	}
	assert.False(display.pixels[31][4])
}

func TestCpu_KeyWait(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	assert.NoError(cpu.Load(words(0xf30a, 0x6101)))

	assert.False(cpu.KeyPress(0x4))

	run(t, cpu, 1)
	assert.True(cpu.Waiting)
	assert.Equal(REG_V3, cpu.WaitReg)
	assert.Equal(uint16(0x202), cpu.Pc)

	// No instructions are fetched while waiting.
	run(t, cpu, 3)
	assert.Equal(uint16(0x202), cpu.Pc)
	assert.Equal(uint8(0), cpu.V[1])

	assert.False(cpu.KeyPress(0x10))
	assert.True(cpu.Waiting)

	assert.True(cpu.KeyPress(0xc))
	assert.False(cpu.Waiting)
	assert.Equal(uint8(0xc), cpu.V[3])

	// At most once.
	assert.False(cpu.KeyPress(0xd))
	assert.Equal(uint8(0xc), cpu.V[3])

	run(t, cpu, 1)
	assert.Equal(uint8(1), cpu.V[1])
}

func TestCpu_PcWrap(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	cpu.Pc = 0xffe
	cpu.Memory[0xffe] = 0x60
	cpu.Memory[0xfff] = 0x42
	run(t, cpu, 1)

	assert.Equal(uint8(0x42), cpu.V[0])
	assert.Equal(uint16(0x000), cpu.Pc)
}

func TestCpu_String(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	cpu.V[0xa] = 0x5a
	cpu.Stack.Push(0x234)
	cpu.Waiting = true
	cpu.WaitReg = REG_V7

	text := cpu.String()
	assert.Contains(text, "   pc: 200\n")
	assert.Contains(text, "   VA: 5A\n")
	assert.Contains(text, "stack: 234 (1)\n")
	assert.Contains(text, " wait: V7\n")
}

func TestCpu_Defines(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	defines := map[string]string{}
	for key, value := range cpu.Defines() {
		defines[key] = value
	}
	assert.Equal("0x200", defines["PROGRAM_START"])
	assert.Equal("5", defines["FONT_SPRITE_SIZE"])
}
