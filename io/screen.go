package io

import (
	"strings"

	"github.com/ezrec/chip8/cpu"
)

const (
	SCREEN_WIDTH  = 64 // Pixels per row.
	SCREEN_HEIGHT = 32 // Rows.
)

// Frame is a snapshot of the display. Indexed by row, then column.
type Frame [SCREEN_HEIGHT][SCREEN_WIDTH]bool

// String renders the frame as text, '#' for lit pixels and '.' otherwise.
func (fr *Frame) String() string {
	var sb strings.Builder
	sb.Grow(SCREEN_HEIGHT * (SCREEN_WIDTH + 1))
	for _, row := range fr {
		for _, lit := range row {
			if lit {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Screen is the 64x32 monochrome display. The Cpu draws into the back
// buffer; Flush publishes it once per tick.
type Screen struct {
	Frames int // Number of flushes since reset.

	back  Frame
	front Frame
	dirty bool
}

var _ cpu.Display = (*Screen)(nil)

// Reset blanks both buffers.
func (sc *Screen) Reset() {
	sc.back = Frame{}
	sc.front = Frame{}
	sc.dirty = false
	sc.Frames = 0
}

// Clear turns every pixel of the back buffer off.
func (sc *Screen) Clear() {
	sc.back = Frame{}
	sc.dirty = true
}

// Toggle flips a pixel, wrapping coordinates, and reports if the pixel was
// turned off.
func (sc *Screen) Toggle(x, y int) (erased bool) {
	x = wrap(x, SCREEN_WIDTH)
	y = wrap(y, SCREEN_HEIGHT)

	erased = sc.back[y][x]
	sc.back[y][x] = !erased
	sc.dirty = true

	return
}

// Flush copies the back buffer to the front buffer. Returns true if the
// back buffer was drawn into since the last flush.
func (sc *Screen) Flush() (changed bool) {
	changed = sc.dirty
	if changed {
		sc.front = sc.back
		sc.dirty = false
	}
	sc.Frames++

	return
}

// Front returns the last flushed frame.
func (sc *Screen) Front() Frame {
	return sc.front
}

// Pixel returns a pixel of the last flushed frame.
func (sc *Screen) Pixel(x, y int) bool {
	return sc.front[wrap(y, SCREEN_HEIGHT)][wrap(x, SCREEN_WIDTH)]
}

func (sc *Screen) String() string {
	return sc.front.String()
}

func wrap(value, size int) int {
	return ((value % size) + size) % size
}
