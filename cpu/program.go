package cpu

// Line is a single line of assembled source, and the bytes it produced.
type Line struct {
	LineNo int      // Source line number.
	Addr   uint16   // Address of the first byte.
	Words  []string // Mnemonic (or directive) followed by its operands.
	Bytes  []byte   // Emitted bytes.
}

// Program is an assembled listing.
type Program struct {
	Origin uint16
	Lines  []Line
}

type Debug struct {
	*Line
	Index int
}

// Debug locates the line that emitted the byte at addr.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, line := range prog.Lines {
		if addr >= line.Addr && int(addr) < int(line.Addr)+len(line.Bytes) {
			dbg = Debug{
				Line:  &prog.Lines[n],
				Index: int(addr - line.Addr),
			}
			break
		}
	}

	return
}

// Binary returns the program image, starting at Origin.
func (prog *Program) Binary() (bin []byte) {
	for _, line := range prog.Lines {
		offset := int(line.Addr) - int(prog.Origin)
		if offset < 0 {
			continue
		}
		for len(bin) < offset {
			bin = append(bin, 0)
		}
		bin = append(bin[:offset], line.Bytes...)
	}

	return
}
