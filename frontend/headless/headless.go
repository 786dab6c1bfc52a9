// Package headless is a frontend without a display or keyboard.
package headless

import (
	"io"

	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/frontend"
	chipio "github.com/ezrec/chip8/io"
)

// Headless keeps the last frame and tone state, and writes the final
// screen on Close.
type Headless struct {
	Output io.Writer   // Destination of the final screen, may be nil.
	Tone   chipio.Tone // Speaker state.
	Last   chipio.Frame
	Frames int // Number of frames presented.
}

var _ frontend.Frontend = (*Headless)(nil)

// NewHeadless creates a headless frontend writing to output.
func NewHeadless(output io.Writer) *Headless {
	return &Headless{Output: output}
}

func (hl *Headless) SetTone(on bool) {
	hl.Tone.SetTone(on)
}

func (hl *Headless) Frame(emu *emulator.Emulator) (quit bool, err error) {
	hl.Last = emu.Screen.Front()
	hl.Frames++
	return
}

func (hl *Headless) Close() (err error) {
	if hl.Output == nil {
		return
	}

	_, err = io.WriteString(hl.Output, hl.Last.String())
	return
}
