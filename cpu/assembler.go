package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Keywords that are never values.
var keywords = map[string]bool{
	"I":   true,
	"[I]": true,
	"DT":  true,
	"ST":  true,
	"K":   true,
	"F":   true,
	"B":   true,
}

var labelRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// mnemonicMap maps an upper-case mnemonic to its candidate operations.
var mnemonicMap = func() (mm map[string][]Op) {
	mm = make(map[string][]Op, OP_COUNT)
	for op := range OP_COUNT {
		mnemonic := op.Mnemonic()
		mm[mnemonic] = append(mm[mnemonic], op)
	}
	return
}()

// Assembler is a two pass assembler for CHIP-8 programs.
type Assembler struct {
	Verbose bool   // If set, verbosely logs the assembler actions.
	Origin  uint16 // Load address of the program, PROGRAM_START if zero.

	predefine map[string]string // Predefines
	Label     map[string]uint16 // Map of labels to addresses.
	Equate    map[string]string // Map of equates.
}

// pending is a source line waiting for the second pass.
type pending struct {
	lineno int
	line   string
	addr   uint16
	words  []string
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// Parse parses an input stream into an assembled Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	origin := asm.Origin
	if origin == 0 {
		origin = PROGRAM_START
	}

	asm.Label = make(map[string]uint16, 16)
	asm.Equate = maps.Clone(asm.predefine)
	if asm.Equate == nil {
		asm.Equate = make(map[string]string)
	}

	// First pass: labels, equates, and addresses.
	var lines []pending
	addr := origin
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		code, _, _ := strings.Cut(text, ";")
		line = strings.TrimSpace(strings.ReplaceAll(code, "\t", " "))

		var words []string
		words, err = asm.parseLine(line, addr)
		if err != nil {
			return
		}
		if len(words) == 0 {
			continue
		}

		lines = append(lines, pending{lineno: lineno, line: line, addr: addr, words: words})

		switch strings.ToLower(words[0]) {
		case ".byte":
			addr += uint16(len(words) - 1)
		case ".word":
			addr += uint16(2 * (len(words) - 1))
		default:
			addr += 2
		}

		if int(addr) > MEMORY_SIZE {
			err = ErrProgramSize
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Second pass: encoding.
	prog = &Program{Origin: origin}
	for _, pl := range lines {
		lineno = pl.lineno
		line = pl.line

		var bytes []byte
		bytes, err = asm.parseWords(pl.words)
		if err != nil {
			prog = nil
			return
		}

		prog.Lines = append(prog.Lines, Line{
			LineNo: pl.lineno,
			Addr:   pl.addr,
			Words:  pl.words,
			Bytes:  bytes,
		})
	}

	return
}

// parseLine handles labels and equates, and splits the remainder into
// a mnemonic followed by its operands.
func (asm *Assembler) parseLine(line string, addr uint16) (words []string, err error) {
	for {
		head, rest, _ := strings.Cut(line, " ")
		if !strings.HasSuffix(head, ":") {
			break
		}
		label := strings.TrimSuffix(head, ":")
		if !labelRe.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = addr
		line = strings.TrimSpace(rest)
	}

	if len(line) == 0 {
		return
	}

	mnemonic, args, _ := strings.Cut(line, " ")
	args = strings.TrimSpace(args)

	// .equ NAME VALUE
	if strings.EqualFold(mnemonic, ".equ") {
		name, value, _ := strings.Cut(args, " ")
		value = strings.TrimSpace(value)
		if !labelRe.MatchString(name) || len(value) == 0 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[name]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[name] = value
		return
	}

	words = append([]string{mnemonic}, splitOperands(args)...)
	return
}

// splitOperands splits on commas outside of parentheses and quotes.
func splitOperands(args string) (operands []string) {
	if len(args) == 0 {
		return
	}

	depth := 0
	quoted := false
	start := 0
	for n, c := range args {
		switch {
		case c == '\'':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			operands = append(operands, strings.TrimSpace(args[start:n]))
			start = n + 1
		}
	}
	operands = append(operands, strings.TrimSpace(args[start:]))

	return
}

// parseWords encodes a mnemonic or directive and its operands.
func (asm *Assembler) parseWords(words []string) (bytes []byte, err error) {
	mnemonic := strings.ToUpper(words[0])
	operands := words[1:]

	switch mnemonic {
	case ".BYTE", ".WORD":
		if len(operands) == 0 {
			err = ErrOperandMissing
			return
		}
		limit := uint16(0xff)
		if mnemonic == ".WORD" {
			limit = 0xffff
		}
		for _, operand := range operands {
			var value uint16
			value, err = asm.value(asm.expand(operand), limit)
			if err != nil {
				return
			}
			if mnemonic == ".WORD" {
				bytes = append(bytes, uint8(value>>8))
			}
			bytes = append(bytes, uint8(value))
		}
		return
	}

	ops, ok := mnemonicMap[mnemonic]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	expanded := make([]string, len(operands))
	for n, operand := range operands {
		expanded[n] = asm.expand(operand)
	}

	for _, op := range ops {
		var code Code
		var matched bool
		code, matched, err = asm.match(op, expanded)
		if err != nil {
			return
		}
		if matched {
			bytes = []byte{uint8(code.Word >> 8), uint8(code.Word)}
			return
		}
	}

	err = ErrOperandInvalid
	return
}

// match attempts to encode the operands as the operation. If the
// operands have the wrong shape for the operation, matched is false.
func (asm *Assembler) match(op Op, operands []string) (code Code, matched bool, err error) {
	pattern := op.Operands()

	required := 0
	for _, pat := range pattern {
		if !strings.HasSuffix(pat, "?") {
			required++
		}
	}
	if len(operands) < required || len(operands) > len(pattern) {
		return
	}

	// Check shape before evaluating any values.
	for n, operand := range operands {
		pat := strings.TrimSuffix(pattern[n], "?")
		_, is_reg := parseReg(operand)
		switch pat {
		case "Vx", "Vy":
			if !is_reg {
				return
			}
		case "nnn", "kk", "n":
			if is_reg || keywords[strings.ToUpper(operand)] {
				return
			}
		default:
			if !strings.EqualFold(pat, operand) {
				return
			}
		}
	}

	matched = true

	var x, y Reg
	var arg uint16
	for n, operand := range operands {
		pat := strings.TrimSuffix(pattern[n], "?")
		switch pat {
		case "Vx":
			x, _ = parseReg(operand)
		case "Vy":
			y, _ = parseReg(operand)
		case "nnn":
			arg, err = asm.value(operand, 0xfff)
		case "kk":
			arg, err = asm.value(operand, 0xff)
		case "n":
			arg, err = asm.value(operand, 0xf)
		}
		if err != nil {
			return
		}
	}

	code = MakeCode(op, x, y, arg)
	return
}

// parseReg parses a V0-VF register name.
func parseReg(word string) (reg Reg, ok bool) {
	if len(word) != 2 || (word[0] != 'V' && word[0] != 'v') {
		return
	}

	value, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		return
	}

	reg = Reg(value)
	ok = true
	return
}

// expand replaces an equate by its value, following chains of equates.
func (asm *Assembler) expand(word string) string {
	for range len(asm.Equate) {
		equate, ok := asm.Equate[word]
		if !ok {
			break
		}
		word = equate
	}

	return word
}

// value evaluates a numeric operand, which must fit within limit.
// Negative values are accepted as two's complement of limit+1.
func (asm *Assembler) value(word string, limit uint16) (value uint16, err error) {
	v64, err := asm.number(word)
	if err != nil {
		return
	}

	if v64 < 0 && v64 >= -(int64(limit)+1)/2 {
		v64 += int64(limit) + 1
	}
	if v64 < 0 || v64 > int64(limit) {
		err = fmt.Errorf("%w: %v", ErrValueRange, word)
		return
	}

	value = uint16(v64)
	return
}

// number evaluates a label, literal or $(expression).
func (asm *Assembler) number(word string) (value int64, err error) {
	if strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")") {
		value, err = asm.parenEval(word[2 : len(word)-1])
		return
	}

	addr, ok := asm.Label[word]
	if ok {
		value = int64(addr)
		return
	}

	value, err = literal(word)
	if err != nil && labelRe.MatchString(word) {
		err = ErrLabelMissing(word)
	}
	return
}

// literal parses decimal, 0x, 0b, 0o, #hex, $hex and 'c' numbers.
func literal(word string) (value int64, err error) {
	if len(word) == 3 && word[0] == '\'' && word[2] == '\'' {
		value = int64(word[1])
		return
	}

	text := word
	switch {
	case strings.HasPrefix(text, "#"), strings.HasPrefix(text, "$"):
		text = "0x" + text[1:]
	}

	value, err = strconv.ParseInt(text, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
	}
	return
}

// parenEval evaluates an expression, with labels and numeric equates
// predeclared.
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = literal(asm.expand(str))
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(int(addr))
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	return
}
