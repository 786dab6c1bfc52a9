package cpu

const (
	MEMORY_SIZE      = 0x1000 // Addressable bytes.
	ADDRESS_MASK     = 0x0fff // Addresses wrap to 12 bits.
	FONT_START       = 0x000  // Font sprite table offset.
	FONT_SPRITE_SIZE = 5      // Bytes per font sprite.
	PROGRAM_START    = 0x200  // Program load address, and initial Pc.
	PROGRAM_LIMIT    = MEMORY_SIZE - PROGRAM_START
)

// FONT is the hex-digit sprite table, 4 pixels wide and 5 rows tall.
var FONT = [16 * FONT_SPRITE_SIZE]uint8{
	0xf0, 0x90, 0x90, 0x90, 0xf0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xf0, 0x10, 0xf0, 0x80, 0xf0, // 2
	0xf0, 0x10, 0xf0, 0x10, 0xf0, // 3
	0x90, 0x90, 0xf0, 0x10, 0x10, // 4
	0xf0, 0x80, 0xf0, 0x10, 0xf0, // 5
	0xf0, 0x80, 0xf0, 0x90, 0xf0, // 6
	0xf0, 0x10, 0x20, 0x40, 0x40, // 7
	0xf0, 0x90, 0xf0, 0x90, 0xf0, // 8
	0xf0, 0x90, 0xf0, 0x10, 0xf0, // 9
	0xf0, 0x90, 0xf0, 0x90, 0x90, // A
	0xe0, 0x90, 0xe0, 0x90, 0xe0, // B
	0xf0, 0x80, 0x80, 0x80, 0xf0, // C
	0xe0, 0x90, 0x90, 0x90, 0xe0, // D
	0xf0, 0x80, 0xf0, 0x80, 0xf0, // E
	0xf0, 0x80, 0xf0, 0x80, 0x80, // F
}

// FontAddress returns the address of the sprite for a digit.
// Digits above 0xF are not masked.
func FontAddress(digit uint8) uint16 {
	return FONT_START + uint16(digit)*FONT_SPRITE_SIZE
}

// Memory is the flat byte store. Addresses are masked, never faulted.
type Memory [MEMORY_SIZE]uint8

// Reset zeros memory, and installs the font.
func (mem *Memory) Reset() {
	clear(mem[:])
	copy(mem[FONT_START:], FONT[:])
}

func (mem *Memory) Read(addr uint16) uint8 {
	return mem[addr&ADDRESS_MASK]
}

func (mem *Memory) Write(addr uint16, value uint8) {
	mem[addr&ADDRESS_MASK] = value
}

// Word reads a big-endian instruction word.
func (mem *Memory) Word(addr uint16) uint16 {
	return uint16(mem.Read(addr))<<8 | uint16(mem.Read(addr+1))
}
