// Package pseudoop is the static catalog of assembler directives
// (mnemonics beginning with '.') and their per-directive flags.
package pseudoop

import "strings"

// Op identifies a directive.
type Op byte

const (
	Ascii Op = iota
	Byte
	Def
	End
	Hbyte
	Link
	List
	Loc
	Nolist
	Page
	Word
)

// Flag bits modify how the driver handles a label attached to a
// directive's statement.
type Flag byte

const (
	// LabelDisallowed: the directive errors if a label is attached.
	LabelDisallowed Flag = 1 << iota
	// LabelIsntLoc: the label is still defined, but not bound to the
	// current location counter (.def binds it to the directive's own
	// operand value instead).
	LabelIsntLoc
)

// Info is one catalog entry.
type Info struct {
	Mnemonic string
	Op       Op
	Flags    Flag
}

var byEnum = [...]Info{
	Ascii:  {".ascii", Ascii, 0},
	Byte:   {".byte", Byte, 0},
	Def:    {".def", Def, LabelIsntLoc},
	End:    {".end", End, 0},
	Hbyte:  {".hbyte", Hbyte, 0},
	Link:   {".link", Link, 0},
	List:   {".list", List, 0},
	Loc:    {".loc", Loc, 0},
	Nolist: {".nolist", Nolist, 0},
	Page:   {".page", Page, 0},
	Word:   {".word", Word, 0},
}

var byMnemonic map[string]Op

func init() {
	byMnemonic = make(map[string]Op, len(byEnum))
	for op, info := range byEnum {
		byMnemonic[info.Mnemonic] = Op(op)
	}
}

// Valid reports whether mnemonic (case-folded) names a directive.
func Valid(mnemonic string) bool {
	_, ok := byMnemonic[strings.ToLower(mnemonic)]
	return ok
}

// Lookup returns the Info for mnemonic. The caller must check Valid
// first, or be prepared for the zero-valued Info and false.
func Lookup(mnemonic string) (Info, bool) {
	op, ok := byMnemonic[strings.ToLower(mnemonic)]
	if !ok {
		return Info{}, false
	}
	return byEnum[op], true
}

// Has reports whether flags includes f.
func (flags Flag) Has(f Flag) bool {
	return flags&f != 0
}
