// Package terminal is a frontend for ANSI terminals.
//
// The screen is drawn with half-block characters, two pixel rows per text
// line. A terminal reports key presses but not releases, so a key is
// released a fixed number of ticks after its last press. ESC or Ctrl-C
// quits.
//
// Input is read by a goroutine. After Close it exits on the next
// character read, or at the end of the input; a read already blocked on
// the input is not interrupted.
package terminal

import (
	"bufio"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/frontend"
	chipio "github.com/ezrec/chip8/io"
)

const (
	DEFAULT_HOLD  = 6    // Ticks a key stays down after its last press.
	KEY_ESCAPE    = 0x1b // Quits.
	KEY_INTERRUPT = 0x03 // Ctrl-C, quits while in raw mode.
)

const (
	ansiHome       = "\x1b[H"
	ansiClear      = "\x1b[2J"
	ansiHideCursor = "\x1b[?25l"
	ansiShowCursor = "\x1b[?25h"
	ansiBell       = "\a"
)

// Terminal is the terminal frontend.
type Terminal struct {
	Verbose bool
	KeyMap  chipio.KeyMap // Host key layout.
	Hold    int           // Ticks a key stays down after its last press.

	output  io.Writer
	input   *os.File // Set while the input is in raw mode.
	canAttr unix.Termios
	keys    chan rune
	done    chan struct{} // Closed to stop the input reader.

	held  [cpu.KEY_COUNT]int // Remaining hold ticks per key.
	tone  bool
	shown chipio.Frame
	drawn bool
}

var _ frontend.Frontend = (*Terminal)(nil)

// NewTerminal creates a terminal frontend. If input is a terminal it is
// put into raw mode until Close.
func NewTerminal(input io.Reader, output io.Writer) (tm *Terminal, err error) {
	tm = &Terminal{
		KeyMap: chipio.DefaultKeyMap,
		Hold:   DEFAULT_HOLD,
		output: output,
		keys:   make(chan rune, 64),
		done:   make(chan struct{}),
	}

	if file, ok := input.(*os.File); ok {
		var attr unix.Termios
		if termios.Tcgetattr(file.Fd(), &attr) == nil {
			tm.canAttr = attr
			termios.Cfmakeraw(&attr)
			err = termios.Tcsetattr(file.Fd(), termios.TCSANOW, &attr)
			if err != nil {
				tm = nil
				return
			}
			tm.input = file
		}
	}

	keys := tm.keys
	done := tm.done
	go func() {
		defer close(keys)
		rd := bufio.NewReader(input)
		for {
			r, _, err := rd.ReadRune()
			if err != nil {
				return
			}
			select {
			case <-done:
				return
			default:
			}
			select {
			case keys <- r:
			case <-done:
				return
			}
		}
	}()

	_, err = io.WriteString(output, ansiClear+ansiHideCursor)
	return
}

// SetTone rings the terminal bell when the tone starts.
func (tm *Terminal) SetTone(on bool) {
	if on && !tm.tone {
		io.WriteString(tm.output, ansiBell)
	}
	tm.tone = on
}

// Frame delivers the typed keys, releases expired keys, and redraws the
// screen if it changed.
func (tm *Terminal) Frame(emu *emulator.Emulator) (quit bool, err error) {
	err = tm.release(emu)
	if err != nil {
		return
	}

	for pending := true; pending && !quit; {
		select {
		case r, ok := <-tm.keys:
			if !ok {
				// Input closed; keep running without it.
				tm.keys = nil
				pending = false
				continue
			}
			quit, err = tm.press(emu, r)
			if err != nil {
				return
			}
		default:
			pending = false
		}
	}

	err = tm.draw(emu.Screen.Front())
	return
}

// press handles one typed character.
func (tm *Terminal) press(emu *emulator.Emulator, r rune) (quit bool, err error) {
	switch r {
	case KEY_ESCAPE, KEY_INTERRUPT:
		quit = true
		return
	}

	key, ok := tm.KeyMap.KeyOf(r)
	if !ok {
		return
	}

	if tm.Verbose {
		log.Printf("terminal: %q is key %X", r, key)
	}

	err = emu.KeyDown(key)
	tm.held[key] = max(tm.Hold, 1)
	return
}

// release counts down the held keys, releasing them at zero.
func (tm *Terminal) release(emu *emulator.Emulator) (err error) {
	for key, ticks := range tm.held {
		if ticks == 0 {
			continue
		}
		tm.held[key] = ticks - 1
		if ticks == 1 {
			err = emu.KeyUp(uint8(key))
			if err != nil {
				return
			}
		}
	}
	return
}

func (tm *Terminal) draw(frame chipio.Frame) (err error) {
	if tm.drawn && frame == tm.shown {
		return
	}

	tm.shown = frame
	tm.drawn = true
	_, err = io.WriteString(tm.output, ansiHome+Render(&frame))
	return
}

// Close restores the terminal, and stops the input reader.
func (tm *Terminal) Close() (err error) {
	if tm.done != nil {
		close(tm.done)
		tm.done = nil
	}

	_, err = io.WriteString(tm.output, ansiShowCursor+"\r\n")

	if tm.input != nil {
		rerr := termios.Tcsetattr(tm.input.Fd(), termios.TCSANOW, &tm.canAttr)
		if err == nil {
			err = rerr
		}
		tm.input = nil
	}

	return
}

// Render draws a frame with half-block characters. Lines end with CR LF,
// as the terminal does not translate newlines in raw mode.
func Render(frame *chipio.Frame) string {
	var sb strings.Builder
	for y := 0; y < chipio.SCREEN_HEIGHT; y += 2 {
		for x := range chipio.SCREEN_WIDTH {
			top := frame[y][x]
			bottom := y+1 < chipio.SCREEN_HEIGHT && frame[y+1][x]
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}
