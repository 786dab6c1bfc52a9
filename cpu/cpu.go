package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"
)

const (
	SPRITE_WIDTH = 8  // Pixels per sprite row.
	KEY_COUNT    = 16 // Keys on the hex keypad.
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":      fmt.Sprintf("0x%x", MEMORY_SIZE),
	"PROGRAM_START":    fmt.Sprintf("0x%x", PROGRAM_START),
	"FONT_START":       fmt.Sprintf("0x%x", FONT_START),
	"FONT_SPRITE_SIZE": fmt.Sprintf("%v", FONT_SPRITE_SIZE),
	"SPRITE_WIDTH":     fmt.Sprintf("%v", SPRITE_WIDTH),
	"KEY_COUNT":        fmt.Sprintf("%v", KEY_COUNT),
}

// Display is the pixel buffer the Cpu draws through.
type Display interface {
	// Clear turns every pixel off.
	Clear()
	// Toggle flips the pixel at (x, y), wrapping coordinates to the
	// display size, and reports whether the pixel went from on to off.
	Toggle(x, y int) (erased bool)
}

// Keyboard reports the held state of the hex keypad.
type Keyboard interface {
	Pressed(key uint8) bool
}

// Random is the source of Cxkk random bytes.
type Random interface {
	Byte() uint8
}

// Cpu is the simulation context for the CHIP-8 interpreter.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Display  Display
	Keyboard Keyboard
	Random   Random

	Memory Memory    // Font and program memory.
	V      [16]uint8 // Register bank.
	I      uint16    // Address register.
	Pc     uint16    // Program counter.
	Stack  Stack     // Return address stack.
	Delay  uint8     // Delay timer.
	Sound  uint8     // Sound timer.

	Waiting bool // Blocked on Fx0A until a key press.
	WaitReg Reg  // Destination of the awaited key.

	Steps int // Instructions executed since reset.
}

// NewCpu creates a new CPU attached to its collaborators, in reset state.
func NewCpu(display Display, keyboard Keyboard, random Random) (cpu *Cpu) {
	cpu = &Cpu{
		Display:  display,
		Keyboard: keyboard,
		Random:   random,
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Zeros memory, and installs the font.
// - Clears the registers, stack and timers.
// - Sets Pc to the program start.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	clear(cpu.V[:])
	cpu.I = 0
	cpu.Pc = PROGRAM_START
	cpu.Stack.Reset()
	cpu.Delay = 0
	cpu.Sound = 0
	cpu.Waiting = false
	cpu.WaitReg = REG_V0
	cpu.Steps = 0
}

// Load a program image at PROGRAM_START.
func (cpu *Cpu) Load(program []byte) (err error) {
	if len(program) > PROGRAM_LIMIT {
		err = ErrProgramSize
		return
	}

	copy(cpu.Memory[PROGRAM_START:], program)

	if cpu.Verbose {
		log.Printf("cpu: loaded %v bytes", len(program))
	}

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "   pc: %03X\n", cpu.Pc)
	fmt.Fprintf(&sb, "    i: %03X\n", cpu.I)
	for n, value := range cpu.V {
		fmt.Fprintf(&sb, "   %v: %02X\n", Reg(n), value)
	}
	if top, ok := cpu.Stack.Peek(); ok {
		fmt.Fprintf(&sb, "stack: %03X (%v)\n", top, cpu.Stack.Depth())
	} else {
		fmt.Fprintf(&sb, "stack: ---\n")
	}
	fmt.Fprintf(&sb, "   dt: %02X\n", cpu.Delay)
	fmt.Fprintf(&sb, "   st: %02X\n", cpu.Sound)
	if cpu.Waiting {
		fmt.Fprintf(&sb, " wait: %v\n", cpu.WaitReg)
	}

	text = sb.String()
	return
}

// Step fetches, decodes and executes the instruction at Pc.
// While waiting for a key nothing is fetched.
func (cpu *Cpu) Step() (err error) {
	if cpu.Waiting {
		return
	}

	code, err := Decode(cpu.Memory.Word(cpu.Pc))
	if err != nil {
		if cpu.Verbose {
			log.Printf("cpu: %03X: %v", cpu.Pc, err)
		}
		return
	}

	err = cpu.Execute(code)
	return
}

// Execute a decoded instruction as if it had been fetched from Pc.
// On error no state is modified.
func (cpu *Cpu) Execute(code Code) (err error) {
	if cpu.Verbose {
		log.Printf("cpu: %03X: %04X %v", cpu.Pc, code.Word, code)
	}

	next_pc := cpu.Pc + 2

	vx := &cpu.V[code.X&0xf]
	vy := &cpu.V[code.Y&0xf]
	vf := &cpu.V[REG_VF]

	switch code.Op {
	case OP_CLS:
		cpu.Display.Clear()
	case OP_RET:
		var ok bool
		next_pc, ok = cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
	case OP_SYS:
		// Machine code routines are not supported, and are ignored.
	case OP_JP:
		next_pc = code.NNN
	case OP_CALL:
		cpu.Stack.Push(next_pc & ADDRESS_MASK)
		next_pc = code.NNN
	case OP_SE_VB:
		if *vx == code.KK {
			next_pc += 2
		}
	case OP_SNE_VB:
		if *vx != code.KK {
			next_pc += 2
		}
	case OP_SE_VV:
		if *vx == *vy {
			next_pc += 2
		}
	case OP_LD_VB:
		*vx = code.KK
	case OP_ADD_VB:
		*vx += code.KK
	case OP_LD_VV:
		*vx = *vy
	case OP_OR:
		*vx |= *vy
	case OP_AND:
		*vx &= *vy
	case OP_XOR:
		*vx ^= *vy
	case OP_ADD_VV:
		sum := uint16(*vx) + uint16(*vy)
		*vx = uint8(sum)
		*vf = flag(sum > 0xff)
	case OP_SUB:
		not_borrow := flag(*vx > *vy)
		*vx -= *vy
		*vf = not_borrow
	case OP_SHR:
		carry := *vx & 0x01
		*vx >>= 1
		*vf = carry
	case OP_SUBN:
		not_borrow := flag(*vy > *vx)
		*vx = *vy - *vx
		*vf = not_borrow
	case OP_SHL:
		carry := *vx >> 7
		*vx <<= 1
		*vf = carry
	case OP_SNE_VV:
		if *vx != *vy {
			next_pc += 2
		}
	case OP_LD_IA:
		cpu.I = code.NNN
	case OP_JP_V0:
		next_pc = code.NNN + uint16(cpu.V[REG_V0])
	case OP_RND:
		*vx = cpu.Random.Byte() & code.KK
	case OP_DRW:
		*vf = cpu.draw(*vx, *vy, code.N)
	case OP_SKP:
		if cpu.Keyboard.Pressed(*vx) {
			next_pc += 2
		}
	case OP_SKNP:
		if !cpu.Keyboard.Pressed(*vx) {
			next_pc += 2
		}
	case OP_LD_VDT:
		*vx = cpu.Delay
	case OP_LD_VK:
		cpu.Waiting = true
		cpu.WaitReg = code.X & 0xf
		if cpu.Verbose {
			log.Printf("cpu: waiting for key into %v", cpu.WaitReg)
		}
	case OP_LD_DTV:
		cpu.Delay = *vx
	case OP_LD_STV:
		cpu.Sound = *vx
	case OP_ADD_IV:
		cpu.I = (cpu.I + uint16(*vx)) & ADDRESS_MASK
	case OP_LD_FV:
		cpu.I = FontAddress(*vx)
	case OP_LD_BV:
		value := *vx
		cpu.Memory.Write(cpu.I+0, value/100)
		cpu.Memory.Write(cpu.I+1, (value/10)%10)
		cpu.Memory.Write(cpu.I+2, value%10)
	case OP_LD_MV:
		for n := range int(code.X&0xf) + 1 {
			cpu.Memory.Write(cpu.I+uint16(n), cpu.V[n])
		}
	case OP_LD_VM:
		for n := range int(code.X&0xf) + 1 {
			cpu.V[n] = cpu.Memory.Read(cpu.I + uint16(n))
		}
	default:
		err = ErrUnknownOpcode(code.Word)
		return
	}

	cpu.Pc = next_pc & ADDRESS_MASK
	cpu.Steps++

	return
}

// draw XORs an 8 pixel wide, n row sprite from memory at I onto the
// display, returning 1 if any pixel was erased.
func (cpu *Cpu) draw(x, y uint8, n uint8) (collision uint8) {
	for row := range int(n) {
		sprite := cpu.Memory.Read(cpu.I + uint16(row))
		for col := range SPRITE_WIDTH {
			if sprite&(0x80>>col) == 0 {
				continue
			}
			if cpu.Display.Toggle(int(x)+col, int(y)+row) {
				collision = 1
			}
		}
	}

	return
}

// KeyPress delivers a key-down event. If the CPU is waiting on Fx0A the
// key is stored, the wait ends, and true is returned.
func (cpu *Cpu) KeyPress(key uint8) (ok bool) {
	if !cpu.Waiting || key >= KEY_COUNT {
		return
	}

	cpu.V[cpu.WaitReg&0xf] = key
	cpu.Waiting = false
	ok = true

	if cpu.Verbose {
		log.Printf("cpu: key %X into %v", key, cpu.WaitReg)
	}

	return
}

// TickTimers decrements the delay and sound timers, stopping at zero.
func (cpu *Cpu) TickTimers() {
	if cpu.Delay > 0 {
		cpu.Delay--
	}
	if cpu.Sound > 0 {
		cpu.Sound--
	}
}

// Tone returns true while the sound timer is running.
func (cpu *Cpu) Tone() bool {
	return cpu.Sound > 0
}

func flag(set bool) (value uint8) {
	if set {
		value = 1
	}
	return
}
