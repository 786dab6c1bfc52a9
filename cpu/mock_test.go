package cpu

const (
	mockWidth  = 64
	mockHeight = 32
)

type mockDisplay struct {
	pixels  [mockHeight][mockWidth]bool
	toggles int
	clears  int
}

func (md *mockDisplay) Clear() {
	md.pixels = [mockHeight][mockWidth]bool{}
	md.clears++
}

func (md *mockDisplay) Toggle(x, y int) (erased bool) {
	x = ((x % mockWidth) + mockWidth) % mockWidth
	y = ((y % mockHeight) + mockHeight) % mockHeight
	md.toggles++
	erased = md.pixels[y][x]
	md.pixels[y][x] = !erased
	return
}

type mockKeyboard struct {
	held [KEY_COUNT]bool
}

func (mk *mockKeyboard) Pressed(key uint8) bool {
	return key < KEY_COUNT && mk.held[key]
}

type mockRandom struct {
	value uint8
}

func (mr *mockRandom) Byte() uint8 {
	return mr.value
}

func newTestCpu() (cpu *Cpu, display *mockDisplay, keyboard *mockKeyboard) {
	display = &mockDisplay{}
	keyboard = &mockKeyboard{}
	cpu = NewCpu(display, keyboard, &mockRandom{value: 0xa5})
	return
}

// words packs instruction words into a program image.
func words(codes ...uint16) (program []byte) {
	for _, code := range codes {
		program = append(program, uint8(code>>8), uint8(code))
	}
	return
}
