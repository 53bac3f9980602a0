// Package instset is the static catalog of the 6502's mnemonics,
// addressing modes, and opcodes, keyed by the dialect's suffix-fused
// mnemonic spelling (e.g. "lda#" for immediate, "ldax" for absolute
// or zero-page indexed by X, depending on operand magnitude).
package instset

import (
	"fmt"
	"strings"
)

// Tier identifies which variant of the 6502 family introduced an
// instruction. The catalog here is the original NMOS 6502 base
// instruction set only; no Rockwell or 65C02 extensions.
type Tier byte

const (
	Base Tier = iota
)

// Mode is one of the thirteen 6502 addressing modes.
type Mode byte

const (
	Implied Mode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	ZPIndirectX
	ZPIndirectY
	Absolute
	AbsoluteX
	AbsoluteY
	AbsoluteIndirect
	Relative
)

// pal65Suffix is the dialect's mnemonic suffix for each addressing
// mode: the empty string for implied/zero-page/absolute/relative,
// since those are unsuffixed.
var pal65Suffix = [...]string{
	Implied:          "",
	Accumulator:      "a",
	Immediate:        "#",
	ZeroPage:         "",
	ZeroPageX:        "x",
	ZeroPageY:        "y",
	ZPIndirectX:      "x@",
	ZPIndirectY:      "@y",
	Absolute:         "",
	AbsoluteX:        "x",
	AbsoluteY:        "y",
	AbsoluteIndirect: "@",
	Relative:         "",
}

var operandSize = [...]byte{
	Implied:          0,
	Accumulator:      0,
	Immediate:        1,
	ZeroPage:         1,
	ZeroPageX:        1,
	ZeroPageY:        1,
	ZPIndirectX:      1,
	ZPIndirectY:      1,
	Absolute:         2,
	AbsoluteX:        2,
	AbsoluteY:        2,
	AbsoluteIndirect: 2,
	Relative:         1,
}

// OperandSizeBytes returns the number of operand bytes a mode
// requires: 0 for implied/accumulator, 1 for immediate, zero-page (and
// its indexed/indirect variants), and relative, 2 for the absolute
// variants.
func OperandSizeBytes(mode Mode) byte {
	return operandSize[mode]
}

// Info is one (mnemonic, tier, mode, opcode) entry of the catalog.
type Info struct {
	Mnemonic string // canonical MOS mnemonic, e.g. "lda"
	Tier     Tier
	Mode     Mode
	Opcode   byte
}

// UnrecognizedMnemonicError reports a dialect mnemonic with no catalog
// entry.
type UnrecognizedMnemonicError struct {
	Mnemonic string
}

func (e *UnrecognizedMnemonicError) Error() string {
	return fmt.Sprintf("unrecognized mnemonic %q", e.Mnemonic)
}

// table is the canonical NMOS 6502 opcode table, one row per
// (mnemonic, mode) pair.
var table = []Info{
	{"adc", Base, Immediate, 0x69},
	{"adc", Base, ZeroPage, 0x65},
	{"adc", Base, ZeroPageX, 0x75},
	{"adc", Base, ZPIndirectX, 0x61},
	{"adc", Base, ZPIndirectY, 0x71},
	{"adc", Base, Absolute, 0x6d},
	{"adc", Base, AbsoluteX, 0x7d},
	{"adc", Base, AbsoluteY, 0x79},

	{"and", Base, Immediate, 0x29},
	{"and", Base, ZeroPage, 0x25},
	{"and", Base, ZeroPageX, 0x35},
	{"and", Base, ZPIndirectX, 0x21},
	{"and", Base, ZPIndirectY, 0x31},
	{"and", Base, Absolute, 0x2d},
	{"and", Base, AbsoluteX, 0x3d},
	{"and", Base, AbsoluteY, 0x39},

	{"asl", Base, Accumulator, 0x0a},
	{"asl", Base, ZeroPage, 0x06},
	{"asl", Base, ZeroPageX, 0x16},
	{"asl", Base, Absolute, 0x0e},
	{"asl", Base, AbsoluteX, 0x1e},

	{"bcc", Base, Relative, 0x90},
	{"bcs", Base, Relative, 0xb0},
	{"beq", Base, Relative, 0xf0},

	{"bit", Base, ZeroPage, 0x24},
	{"bit", Base, Absolute, 0x2c},

	{"bmi", Base, Relative, 0x30},
	{"bne", Base, Relative, 0xd0},
	{"bpl", Base, Relative, 0x10},

	{"brk", Base, Implied, 0x00},

	{"bvc", Base, Relative, 0x50},
	{"bvs", Base, Relative, 0x70},

	{"clc", Base, Implied, 0x18},
	{"cld", Base, Implied, 0xd8},
	{"cli", Base, Implied, 0x58},
	{"clv", Base, Implied, 0xb8},

	{"cmp", Base, Immediate, 0xc9},
	{"cmp", Base, ZeroPage, 0xc5},
	{"cmp", Base, ZeroPageX, 0xd5},
	{"cmp", Base, ZPIndirectX, 0xc1},
	{"cmp", Base, ZPIndirectY, 0xd1},
	{"cmp", Base, Absolute, 0xcd},
	{"cmp", Base, AbsoluteX, 0xdd},
	{"cmp", Base, AbsoluteY, 0xd9},

	{"cpx", Base, Immediate, 0xe0},
	{"cpx", Base, ZeroPage, 0xe4},
	{"cpx", Base, Absolute, 0xec},

	{"cpy", Base, Immediate, 0xc0},
	{"cpy", Base, ZeroPage, 0xc4},
	{"cpy", Base, Absolute, 0xcc},

	{"dec", Base, ZeroPage, 0xc6},
	{"dec", Base, ZeroPageX, 0xd6},
	{"dec", Base, Absolute, 0xce},
	{"dec", Base, AbsoluteX, 0xde},

	{"dex", Base, Implied, 0xca},
	{"dey", Base, Implied, 0x88},

	{"eor", Base, Immediate, 0x49},
	{"eor", Base, ZeroPage, 0x45},
	{"eor", Base, ZeroPageX, 0x55},
	{"eor", Base, ZPIndirectX, 0x41},
	{"eor", Base, ZPIndirectY, 0x51},
	{"eor", Base, Absolute, 0x4d},
	{"eor", Base, AbsoluteX, 0x5d},
	{"eor", Base, AbsoluteY, 0x59},

	{"inc", Base, ZeroPage, 0xe6},
	{"inc", Base, ZeroPageX, 0xf6},
	{"inc", Base, Absolute, 0xee},
	{"inc", Base, AbsoluteX, 0xfe},

	{"inx", Base, Implied, 0xe8},
	{"iny", Base, Implied, 0xc8},

	{"jmp", Base, Absolute, 0x4c},
	{"jmp", Base, AbsoluteIndirect, 0x6c},

	{"jsr", Base, Absolute, 0x20},

	{"lda", Base, Immediate, 0xa9},
	{"lda", Base, ZeroPage, 0xa5},
	{"lda", Base, ZeroPageX, 0xb5},
	{"lda", Base, ZPIndirectX, 0xa1},
	{"lda", Base, ZPIndirectY, 0xb1},
	{"lda", Base, Absolute, 0xad},
	{"lda", Base, AbsoluteX, 0xbd},
	{"lda", Base, AbsoluteY, 0xb9},

	{"ldx", Base, Immediate, 0xa2},
	{"ldx", Base, ZeroPage, 0xa6},
	{"ldx", Base, ZeroPageY, 0xb6},
	{"ldx", Base, Absolute, 0xae},
	{"ldx", Base, AbsoluteY, 0xbe},

	{"ldy", Base, Immediate, 0xa0},
	{"ldy", Base, ZeroPage, 0xa4},
	{"ldy", Base, ZeroPageX, 0xb4},
	{"ldy", Base, Absolute, 0xac},
	{"ldy", Base, AbsoluteX, 0xbc},

	{"lsr", Base, Accumulator, 0x4a},
	{"lsr", Base, ZeroPage, 0x46},
	{"lsr", Base, ZeroPageX, 0x56},
	{"lsr", Base, Absolute, 0x4e},
	{"lsr", Base, AbsoluteX, 0x5e},

	{"nop", Base, Implied, 0xea},

	{"ora", Base, Immediate, 0x09},
	{"ora", Base, ZeroPage, 0x05},
	{"ora", Base, ZeroPageX, 0x15},
	{"ora", Base, ZPIndirectX, 0x01},
	{"ora", Base, ZPIndirectY, 0x11},
	{"ora", Base, Absolute, 0x0d},
	{"ora", Base, AbsoluteX, 0x1d},
	{"ora", Base, AbsoluteY, 0x19},

	{"pha", Base, Implied, 0x48},
	{"php", Base, Implied, 0x08},
	{"pla", Base, Implied, 0x68},
	{"plp", Base, Implied, 0x28},

	{"rol", Base, Accumulator, 0x2a},
	{"rol", Base, ZeroPage, 0x26},
	{"rol", Base, ZeroPageX, 0x36},
	{"rol", Base, Absolute, 0x2e},
	{"rol", Base, AbsoluteX, 0x3e},

	{"ror", Base, Accumulator, 0x6a},
	{"ror", Base, ZeroPage, 0x66},
	{"ror", Base, ZeroPageX, 0x76},
	{"ror", Base, Absolute, 0x6e},
	{"ror", Base, AbsoluteX, 0x7e},

	{"rti", Base, Implied, 0x40},
	{"rts", Base, Implied, 0x60},

	{"sbc", Base, Immediate, 0xe9},
	{"sbc", Base, ZeroPage, 0xe5},
	{"sbc", Base, ZeroPageX, 0xf5},
	{"sbc", Base, ZPIndirectX, 0xe1},
	{"sbc", Base, ZPIndirectY, 0xf1},
	{"sbc", Base, Absolute, 0xed},
	{"sbc", Base, AbsoluteX, 0xfd},
	{"sbc", Base, AbsoluteY, 0xf9},

	{"sec", Base, Implied, 0x38},
	{"sed", Base, Implied, 0xf8},
	{"sei", Base, Implied, 0x78},

	{"sta", Base, ZeroPage, 0x85},
	{"sta", Base, ZeroPageX, 0x95},
	{"sta", Base, ZPIndirectX, 0x81},
	{"sta", Base, ZPIndirectY, 0x91},
	{"sta", Base, Absolute, 0x8d},
	{"sta", Base, AbsoluteX, 0x9d},
	{"sta", Base, AbsoluteY, 0x99},

	{"stx", Base, ZeroPage, 0x86},
	{"stx", Base, ZeroPageY, 0x96},
	{"stx", Base, Absolute, 0x8e},

	{"sty", Base, ZeroPage, 0x84},
	{"sty", Base, ZeroPageX, 0x94},
	{"sty", Base, Absolute, 0x8c},

	{"tax", Base, Implied, 0xaa},
	{"tay", Base, Implied, 0xa8},
	{"tsx", Base, Implied, 0xba},
	{"txa", Base, Implied, 0x8a},
	{"txs", Base, Implied, 0x9a},
	{"tya", Base, Implied, 0x98},
}

// compatiblePair reports whether m1/m2 are the one permitted kind of
// dialect-mnemonic collision: a zero-page form paired with its
// corresponding absolute form (same index register, or both
// unindexed).
func compatiblePair(m1, m2 Mode) bool {
	pairs := [][2]Mode{
		{ZeroPage, Absolute},
		{ZeroPageX, AbsoluteX},
		{ZeroPageY, AbsoluteY},
	}
	for _, p := range pairs {
		if (m1 == p[0] && m2 == p[1]) || (m1 == p[1] && m2 == p[0]) {
			return true
		}
	}
	return false
}

// Set is the built catalog, indexed by dialect mnemonic.
type Set struct {
	byMnemonic map[string][]Info
}

// New builds the catalog from the static table, validating opcode
// uniqueness and dialect-mnemonic arity. A violation of either
// invariant is a logic error: it panics rather than returning an
// error, since it reflects a bug in the static table, not user input.
func New() *Set {
	s := &Set{byMnemonic: make(map[string][]Info)}
	var opcodeUsed [256]bool
	for _, info := range table {
		dialect := info.Mnemonic + pal65Suffix[info.Mode]
		if opcodeUsed[info.Opcode] {
			panic(fmt.Sprintf("instset: duplicate opcode %#02x", info.Opcode))
		}
		opcodeUsed[info.Opcode] = true
		if existing, ok := s.byMnemonic[dialect]; ok {
			if !compatiblePair(existing[0].Mode, info.Mode) {
				panic(fmt.Sprintf("instset: incompatible dialect mnemonic collision %q", dialect))
			}
		}
		s.byMnemonic[dialect] = append(s.byMnemonic[dialect], info)
	}
	for mnemonic, infos := range s.byMnemonic {
		if len(infos) > 2 {
			panic(fmt.Sprintf("instset: mnemonic %q has %d modes, want 1 or 2", mnemonic, len(infos)))
		}
		if len(infos) == 2 {
			if OperandSizeBytes(infos[0].Mode) != 1 || OperandSizeBytes(infos[1].Mode) != 2 {
				panic(fmt.Sprintf("instset: mnemonic %q pair must be (1-byte, 2-byte) in order", mnemonic))
			}
		}
	}
	return s
}

// Get returns the Info list for a dialect mnemonic. At most two
// entries: a lone Info, or a zero-page/absolute sibling pair ordered
// (1-byte operand, 2-byte operand).
func (s *Set) Get(mnemonic string) ([]Info, error) {
	infos, ok := s.byMnemonic[strings.ToLower(mnemonic)]
	if !ok {
		return nil, &UnrecognizedMnemonicError{Mnemonic: mnemonic}
	}
	return infos, nil
}

// Valid reports whether mnemonic names a catalog entry.
func (s *Set) Valid(mnemonic string) bool {
	_, ok := s.byMnemonic[strings.ToLower(mnemonic)]
	return ok
}
