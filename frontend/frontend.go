// Package frontend connects the emulator to a host display, keyboard and
// speaker.
package frontend

import (
	"context"

	"github.com/ezrec/chip8/emulator"
	chipio "github.com/ezrec/chip8/io"
)

// Frontend is a host user interface.
type Frontend interface {
	chipio.Speaker

	// Frame is called after every emulator tick. It delivers pending host
	// key events to the emulator, and presents the screen.
	Frame(emu *emulator.Emulator) (quit bool, err error)

	// Close releases the host resources.
	Close() error
}

// Run the emulator with a frontend until the frontend quits, the context is
// done, an error occurs, or limit ticks have run. A limit of zero runs
// forever.
func Run(ctx context.Context, emu *emulator.Emulator, fe Frontend, limit int) (err error) {
	speaker := emu.Speaker
	if speaker == nil {
		emu.Speaker = fe
	} else {
		emu.Speaker = emulator.Speakers{speaker, fe}
	}
	defer func() {
		emu.Speaker = speaker
	}()

	ticks := 0
	err = emu.Run(ctx, func() (quit bool, err error) {
		quit, err = fe.Frame(emu)
		ticks++
		if limit > 0 && ticks >= limit {
			quit = true
		}
		return
	})

	return
}
