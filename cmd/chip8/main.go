// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/frontend"
	"github.com/ezrec/chip8/frontend/headless"
	"github.com/ezrec/chip8/frontend/sdlplay"
	"github.com/ezrec/chip8/frontend/terminal"
	"github.com/ezrec/chip8/internal"
	chipio "github.com/ezrec/chip8/io"
	"github.com/ezrec/chip8/statsview"
	"github.com/ezrec/chip8/translate"
)

func newFrontend(ui string, scale int) (fe frontend.Frontend, err error) {
	switch ui {
	case "term":
		fe, err = terminal.NewTerminal(os.Stdin, os.Stdout)
	case "sdl":
		fe, err = sdlplay.NewSdlPlay(scale)
	case "headless":
		fe = headless.NewHeadless(os.Stdout)
	default:
		err = fmt.Errorf("unknown -ui %q", ui)
	}
	return
}

// closeAll closes every closer in order, and returns err, or if err is nil
// the first error from Close.
func closeAll(err error, closers ...io.Closer) error {
	for _, closer := range closers {
		cerr := closer.Close()
		if cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func main() {
	cfg := emulator.DefaultConfig()

	var compile string
	var ui string
	var frames int
	var scale int
	var wavfile string
	var lang string
	var stats bool
	var defines bool

	flag.StringVar(&compile, "c", "", ".asm file to assemble and run, instead of a ROM")
	flag.IntVar(&cfg.InstructionsPerTick, "ipt", cfg.InstructionsPerTick, "Instructions per timer tick")
	flag.IntVar(&cfg.TickRateHz, "hz", cfg.TickRateHz, "Timer ticks per second")
	flag.Uint64Var(&cfg.Seed, "seed", 0, "Random seed (0 for time based)")
	flag.StringVar(&ui, "ui", "term", "User interface: term, sdl or headless")
	flag.IntVar(&frames, "frames", 0, "Stop after this many ticks (0 for no limit)")
	flag.IntVar(&scale, "scale", sdlplay.DEFAULT_SCALE, "SDL window scale")
	flag.StringVar(&wavfile, "wav", "", "Record the tone to a .wav file")
	flag.StringVar(&lang, "lang", "", "Message language (BCP 47 tag)")
	flag.BoolVar(&stats, "statsview", false, "Serve runtime statistics on "+statsview.Address)
	flag.BoolVar(&defines, "defines", false, "List the assembler predefines, and exit")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose mode")

	flag.Parse()

	if len(lang) != 0 {
		err := translate.SetLanguage(lang)
		if err != nil {
			log.Fatalf("%v: -lang %v: %v", os.Args[0], lang, err)
		}
	}

	emu, err := emulator.NewEmulator(cfg)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	if defines {
		for key, value := range internal.Sorted2(emu.Defines()) {
			fmt.Printf(".equ %v %v\n", key, value)
		}
		return
	}

	switch {
	case len(compile) != 0:
		if flag.NArg() != 0 {
			log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
		}
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		err = emu.Assemble(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	case flag.NArg() == 1:
		path := flag.Arg(0)
		rom, err := chipio.OpenRom(os.DirFS(filepath.Dir(path)), filepath.Base(path))
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
		err = emu.Load(rom)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
	default:
		log.Fatalf("%v: Expected a ROM file, or -c source", os.Args[0])
	}

	var wav *chipio.WavTone
	var wavout *os.File
	if len(wavfile) != 0 {
		wavout, err = os.Create(wavfile)
		if err != nil {
			log.Fatalf("%v: %v", wavfile, err)
		}
		wav = chipio.NewWavTone(wavout, cfg.TickRateHz)
		wav.Verbose = cfg.Verbose
		emu.Speaker = wav
	}

	if stats {
		statsview.Launch(os.Stderr, "")
	}

	fe, err := newFrontend(ui, scale)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = frontend.Run(ctx, emu, fe, frames)

	closers := []io.Closer{fe}
	if wav != nil {
		// The stream is finished before its file is closed.
		closers = append(closers, wav, wavout)
	}
	err = closeAll(err, closers...)

	if err != nil {
		if emu.Program != nil || cfg.Verbose {
			fmt.Fprint(os.Stderr, emu.Cpu.String())
		}
		log.Fatalf("%v: %v", os.Args[0], err)
	}
}
