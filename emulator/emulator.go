// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"slices"
	"time"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
	chipio "github.com/ezrec/chip8/io"
	"github.com/ezrec/chip8/random"
)

// Speakers plays a tone through several speakers.
type Speakers []chipio.Speaker

func (sp Speakers) SetTone(on bool) {
	for _, speaker := range sp {
		speaker.SetTone(on)
	}
}

// Emulator state. CPU + display, keypad, random source and speaker.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Listing of the running program, if assembled.

	Config  Config         // Scheduler configuration.
	Screen  chipio.Screen  // Display.
	Keypad  chipio.Keypad  // Hex keypad.
	Random  *random.Random // Cxkk byte source.
	Speaker chipio.Speaker // Sound timer tone, may be nil.
	Ticks   int            // Timer ticks since reset.

	rom []byte
	err error // Latched fatal error.
}

// NewEmulator creates a new emulator.
func NewEmulator(cfg Config) (emu *Emulator, err error) {
	err = cfg.Validate()
	if err != nil {
		return
	}

	emu = &Emulator{
		Verbose: cfg.Verbose,
		Config:  cfg,
		Random:  random.NewRandom(cfg.Seed),
	}

	emu.Cpu = cpu.NewCpu(&emu.Screen, &emu.Keypad, emu.Random)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	defines := map[string]string{
		"INSTRUCTIONS_PER_TICK": fmt.Sprintf("%v", emu.Config.InstructionsPerTick),
		"TICK_RATE_HZ":          fmt.Sprintf("%v", emu.Config.TickRateHz),
	}

	return internal.Concat2(maps.All(defines),
		emu.Cpu.Defines(),
		chipio.Defines(),
	)
}

// Reset the machine, and reload the current program.
func (emu *Emulator) Reset() (err error) {
	if emu.Verbose {
		log.Printf("emulator: reset")
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Screen.Reset()
	emu.Keypad.Reset()
	emu.Random.Reset()
	emu.Ticks = 0
	emu.err = nil

	if emu.rom != nil {
		err = emu.Cpu.Load(emu.rom)
	}

	return
}

// Load a program image, and reset.
func (emu *Emulator) Load(rom []byte) (err error) {
	if len(rom) > cpu.PROGRAM_LIMIT {
		err = cpu.ErrProgramSize
		return
	}

	emu.rom = slices.Clone(rom)
	emu.Program = nil

	err = emu.Reset()
	return
}

// Assemble a program source, load it, and reset. The emulator defines are
// available to the source as equates.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	err = emu.Load(prog.Binary())
	if err != nil {
		return
	}

	emu.Program = prog
	return
}

// LineNo returns the source line of the instruction at Pc, or zero.
func (emu *Emulator) LineNo() int {
	return emu.lineNo(emu.Cpu.Pc)
}

func (emu *Emulator) lineNo(pc uint16) (lineno int) {
	if emu.Program == nil {
		return
	}

	dbg := emu.Program.Debug(pc)
	if dbg.Line != nil {
		lineno = dbg.LineNo
	}
	return
}

// Err returns the latched fatal error, if any.
func (emu *Emulator) Err() error {
	return emu.err
}

// KeyDown presses a keypad key. A pending key wait is satisfied.
func (emu *Emulator) KeyDown(key uint8) (err error) {
	err = emu.Keypad.Press(key)
	if err != nil {
		return
	}

	emu.Cpu.KeyPress(key)
	return
}

// KeyUp releases a keypad key.
func (emu *Emulator) KeyUp(key uint8) (err error) {
	err = emu.Keypad.Release(key)
	return
}

// Tick performs a single timer tick of the emulator: a burst of
// instructions, then the timers, display and speaker.
// After a fatal error every Tick returns the same error until Reset.
func (emu *Emulator) Tick() (err error) {
	if emu.err != nil {
		err = emu.err
		return
	}

	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	for range emu.Config.InstructionsPerTick {
		if emu.Cpu.Waiting {
			break
		}
		pc := emu.Cpu.Pc
		err = emu.Cpu.Step()
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: emu.lineNo(pc), Err: err}
			emu.err = err
			if emu.Verbose {
				log.Printf("emulator: %v", err)
			}
			return
		}
	}

	emu.Cpu.TickTimers()
	emu.Screen.Flush()
	if emu.Speaker != nil {
		emu.Speaker.SetTone(emu.Cpu.Tone())
	}
	emu.Ticks++

	return
}

// Run ticks the emulator at the configured rate until frame requests a
// quit, an error occurs, or the context is done. frame is called after
// every tick, and may be nil.
func (emu *Emulator) Run(ctx context.Context, frame func() (quit bool, err error)) (err error) {
	ticker := time.NewTicker(emu.Config.TickPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err = emu.Tick()
		if err != nil {
			return
		}

		if frame == nil {
			continue
		}

		var quit bool
		quit, err = frame()
		if err != nil || quit {
			return
		}
	}
}
