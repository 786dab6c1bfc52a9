package cpu

import (
	"fmt"
	"strings"
)

// Reg is a register index, decoded from a 4-bit instruction field.
type Reg uint8

const (
	REG_V0 = Reg(0x0)
	REG_V1 = Reg(0x1)
	REG_V2 = Reg(0x2)
	REG_V3 = Reg(0x3)
	REG_V4 = Reg(0x4)
	REG_V5 = Reg(0x5)
	REG_V6 = Reg(0x6)
	REG_V7 = Reg(0x7)
	REG_V8 = Reg(0x8)
	REG_V9 = Reg(0x9)
	REG_VA = Reg(0xa)
	REG_VB = Reg(0xb)
	REG_VC = Reg(0xc)
	REG_VD = Reg(0xd)
	REG_VE = Reg(0xe)
	REG_VF = Reg(0xf) // Carry, borrow and collision flag.
)

func (r Reg) String() string {
	return fmt.Sprintf("V%X", uint8(r)&0xf)
}

// CodeForm describes which operand fields an instruction carries.
type CodeForm int

const (
	FORM_NONE = CodeForm(0) // ----
	FORM_NNN  = CodeForm(1) // -nnn
	FORM_XKK  = CodeForm(2) // -xkk
	FORM_XY   = CodeForm(3) // -xy-
	FORM_XYN  = CodeForm(4) // -xyn
	FORM_X    = CodeForm(5) // -x--
)

// Op is the decoded operation of an instruction word.
type Op int

const (
	OP_CLS    = Op(iota) // 00E0
	OP_RET               // 00EE
	OP_SYS               // 0nnn
	OP_JP                // 1nnn
	OP_CALL              // 2nnn
	OP_SE_VB             // 3xkk
	OP_SNE_VB            // 4xkk
	OP_SE_VV             // 5xy0
	OP_LD_VB             // 6xkk
	OP_ADD_VB            // 7xkk
	OP_LD_VV             // 8xy0
	OP_OR                // 8xy1
	OP_AND               // 8xy2
	OP_XOR               // 8xy3
	OP_ADD_VV            // 8xy4
	OP_SUB               // 8xy5
	OP_SHR               // 8xy6
	OP_SUBN              // 8xy7
	OP_SHL               // 8xyE
	OP_SNE_VV            // 9xy0
	OP_LD_IA             // Annn
	OP_JP_V0             // Bnnn
	OP_RND               // Cxkk
	OP_DRW               // Dxyn
	OP_SKP               // Ex9E
	OP_SKNP              // ExA1
	OP_LD_VDT            // Fx07
	OP_LD_VK             // Fx0A
	OP_LD_DTV            // Fx15
	OP_LD_STV            // Fx18
	OP_ADD_IV            // Fx1E
	OP_LD_FV             // Fx29
	OP_LD_BV             // Fx33
	OP_LD_MV             // Fx55
	OP_LD_VM             // Fx65
	OP_COUNT
)

type opInfo struct {
	Base   uint16 // Instruction word with all operand fields zero.
	Form   CodeForm
	Syntax string // Mnemonic and operand pattern.
}

// Operand patterns: Vx, Vy, nnn, kk and n are fields, a trailing '?'
// marks an optional operand, anything else is a literal keyword.
var opTable = [OP_COUNT]opInfo{
	OP_CLS:    {0x00e0, FORM_NONE, "CLS"},
	OP_RET:    {0x00ee, FORM_NONE, "RET"},
	OP_SYS:    {0x0000, FORM_NNN, "SYS nnn"},
	OP_JP:     {0x1000, FORM_NNN, "JP nnn"},
	OP_CALL:   {0x2000, FORM_NNN, "CALL nnn"},
	OP_SE_VB:  {0x3000, FORM_XKK, "SE Vx, kk"},
	OP_SNE_VB: {0x4000, FORM_XKK, "SNE Vx, kk"},
	OP_SE_VV:  {0x5000, FORM_XY, "SE Vx, Vy"},
	OP_LD_VB:  {0x6000, FORM_XKK, "LD Vx, kk"},
	OP_ADD_VB: {0x7000, FORM_XKK, "ADD Vx, kk"},
	OP_LD_VV:  {0x8000, FORM_XY, "LD Vx, Vy"},
	OP_OR:     {0x8001, FORM_XY, "OR Vx, Vy"},
	OP_AND:    {0x8002, FORM_XY, "AND Vx, Vy"},
	OP_XOR:    {0x8003, FORM_XY, "XOR Vx, Vy"},
	OP_ADD_VV: {0x8004, FORM_XY, "ADD Vx, Vy"},
	OP_SUB:    {0x8005, FORM_XY, "SUB Vx, Vy"},
	OP_SHR:    {0x8006, FORM_XY, "SHR Vx, Vy?"},
	OP_SUBN:   {0x8007, FORM_XY, "SUBN Vx, Vy"},
	OP_SHL:    {0x800e, FORM_XY, "SHL Vx, Vy?"},
	OP_SNE_VV: {0x9000, FORM_XY, "SNE Vx, Vy"},
	OP_LD_IA:  {0xa000, FORM_NNN, "LD I, nnn"},
	OP_JP_V0:  {0xb000, FORM_NNN, "JP V0, nnn"},
	OP_RND:    {0xc000, FORM_XKK, "RND Vx, kk"},
	OP_DRW:    {0xd000, FORM_XYN, "DRW Vx, Vy, n"},
	OP_SKP:    {0xe09e, FORM_X, "SKP Vx"},
	OP_SKNP:   {0xe0a1, FORM_X, "SKNP Vx"},
	OP_LD_VDT: {0xf007, FORM_X, "LD Vx, DT"},
	OP_LD_VK:  {0xf00a, FORM_X, "LD Vx, K"},
	OP_LD_DTV: {0xf015, FORM_X, "LD DT, Vx"},
	OP_LD_STV: {0xf018, FORM_X, "LD ST, Vx"},
	OP_ADD_IV: {0xf01e, FORM_X, "ADD I, Vx"},
	OP_LD_FV:  {0xf029, FORM_X, "LD F, Vx"},
	OP_LD_BV:  {0xf033, FORM_X, "LD B, Vx"},
	OP_LD_MV:  {0xf055, FORM_X, "LD [I], Vx"},
	OP_LD_VM:  {0xf065, FORM_X, "LD Vx, [I]"},
}

func (op Op) info() (oi opInfo) {
	if op >= 0 && op < OP_COUNT {
		oi = opTable[op]
	}
	return
}

// Mnemonic returns the assembly mnemonic of the operation.
func (op Op) Mnemonic() string {
	syntax := op.info().Syntax
	if mnemonic, _, ok := strings.Cut(syntax, " "); ok {
		return mnemonic
	}
	return syntax
}

// Operands returns the operand pattern of the operation.
func (op Op) Operands() (operands []string) {
	_, args, ok := strings.Cut(op.info().Syntax, " ")
	if ok {
		operands = strings.Split(args, ", ")
	}
	return
}

// Form returns the operand field layout of the operation.
func (op Op) Form() CodeForm {
	return op.info().Form
}

func (op Op) String() string {
	syntax := op.info().Syntax
	if len(syntax) == 0 {
		return fmt.Sprintf("op(%d)", int(op))
	}
	return strings.ReplaceAll(syntax, "?", "")
}

// Code is a decoded instruction. All field views are populated
// regardless of the operation's form.
type Code struct {
	Word uint16 // Raw instruction word.
	Op   Op     // Decoded operation.
	X    Reg    // Bits 11-8.
	Y    Reg    // Bits 7-4.
	N    uint8  // Bits 3-0.
	KK   uint8  // Bits 7-0.
	NNN  uint16 // Bits 11-0.
}

// Decode an instruction word. Words without a matching operation return
// ErrUnknownOpcode.
func Decode(word uint16) (code Code, err error) {
	code = Code{
		Word: word,
		X:    Reg((word >> 8) & 0xf),
		Y:    Reg((word >> 4) & 0xf),
		N:    uint8(word & 0xf),
		KK:   uint8(word & 0xff),
		NNN:  word & 0xfff,
	}

	op, ok := decodeOp(word)
	if !ok {
		err = ErrUnknownOpcode(word)
		return
	}
	code.Op = op

	return
}

// decodeOp selects by the high nibble, then by the low nibble or low
// byte for the 0x0, 0x8, 0xE and 0xF groups. The low nibble of 5xy? and
// 9xy? is not checked.
func decodeOp(word uint16) (op Op, ok bool) {
	ok = true
	switch word >> 12 {
	case 0x0:
		switch word {
		case 0x00e0:
			op = OP_CLS
		case 0x00ee:
			op = OP_RET
		default:
			op = OP_SYS
		}
	case 0x1:
		op = OP_JP
	case 0x2:
		op = OP_CALL
	case 0x3:
		op = OP_SE_VB
	case 0x4:
		op = OP_SNE_VB
	case 0x5:
		op = OP_SE_VV
	case 0x6:
		op = OP_LD_VB
	case 0x7:
		op = OP_ADD_VB
	case 0x8:
		switch word & 0xf {
		case 0x0:
			op = OP_LD_VV
		case 0x1:
			op = OP_OR
		case 0x2:
			op = OP_AND
		case 0x3:
			op = OP_XOR
		case 0x4:
			op = OP_ADD_VV
		case 0x5:
			op = OP_SUB
		case 0x6:
			op = OP_SHR
		case 0x7:
			op = OP_SUBN
		case 0xe:
			op = OP_SHL
		default:
			ok = false
		}
	case 0x9:
		op = OP_SNE_VV
	case 0xa:
		op = OP_LD_IA
	case 0xb:
		op = OP_JP_V0
	case 0xc:
		op = OP_RND
	case 0xd:
		op = OP_DRW
	case 0xe:
		switch word & 0xff {
		case 0x9e:
			op = OP_SKP
		case 0xa1:
			op = OP_SKNP
		default:
			ok = false
		}
	case 0xf:
		switch word & 0xff {
		case 0x07:
			op = OP_LD_VDT
		case 0x0a:
			op = OP_LD_VK
		case 0x15:
			op = OP_LD_DTV
		case 0x18:
			op = OP_LD_STV
		case 0x1e:
			op = OP_ADD_IV
		case 0x29:
			op = OP_LD_FV
		case 0x33:
			op = OP_LD_BV
		case 0x55:
			op = OP_LD_MV
		case 0x65:
			op = OP_LD_VM
		default:
			ok = false
		}
	default:
		ok = false
	}

	return
}

// MakeCode encodes an operation. 'arg' is the nnn, kk or n field,
// depending on the operation's form; unused fields are ignored.
func MakeCode(op Op, x, y Reg, arg uint16) (code Code) {
	oi := op.info()
	word := oi.Base

	xf := uint16(x&0xf) << 8
	yf := uint16(y&0xf) << 4

	switch oi.Form {
	case FORM_NNN:
		word |= arg & 0xfff
	case FORM_XKK:
		word |= xf | (arg & 0xff)
	case FORM_XY:
		word |= xf | yf
	case FORM_XYN:
		word |= xf | yf | (arg & 0xf)
	case FORM_X:
		word |= xf
	}

	code, _ = Decode(word)
	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	operands := code.Op.Operands()
	if len(operands) == 0 {
		return code.Op.Mnemonic()
	}

	args := make([]string, len(operands))
	for n, operand := range operands {
		switch strings.TrimSuffix(operand, "?") {
		case "Vx":
			args[n] = code.X.String()
		case "Vy":
			args[n] = code.Y.String()
		case "nnn":
			args[n] = fmt.Sprintf("0x%03X", code.NNN)
		case "kk":
			args[n] = fmt.Sprintf("0x%02X", code.KK)
		case "n":
			args[n] = fmt.Sprintf("%d", code.N)
		default:
			args[n] = operand
		}
	}

	return code.Op.Mnemonic() + " " + strings.Join(args, ", ")
}
