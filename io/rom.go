package io

import (
	"io"
	"io/fs"

	"github.com/ezrec/chip8/cpu"
)

// ReadRom reads a program image. Images must fit between PROGRAM_START
// and the end of memory.
func ReadRom(r io.Reader) (rom []byte, err error) {
	rom, err = io.ReadAll(io.LimitReader(r, cpu.PROGRAM_LIMIT+1))
	if err != nil {
		return
	}

	switch {
	case len(rom) == 0:
		err = ErrRomEmpty
	case len(rom) > cpu.PROGRAM_LIMIT:
		err = ErrRomSize
	}
	if err != nil {
		rom = nil
	}

	return
}

// OpenRom reads a program image from a file system.
func OpenRom(fsys fs.FS, name string) (rom []byte, err error) {
	inf, err := fsys.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	rom, err = ReadRom(inf)
	return
}
