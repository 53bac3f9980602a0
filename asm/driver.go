// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/brouhaha/impala/ast"
	"github.com/brouhaha/impala/instset"
	"github.com/brouhaha/impala/pseudoop"
	"github.com/brouhaha/impala/symtab"
	"github.com/brouhaha/impala/value"
)

const tabWidth = 8

// untabify expands tabs to spaces on fixed 8-column stops, so column
// arithmetic during parsing never has to special-case tabs.
func untabify(s string) string {
	var b strings.Builder
	col := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\t' {
			n := tabWidth - col%tabWidth
			for j := 0; j < n; j++ {
				b.WriteByte(' ')
			}
			col += n
		} else {
			b.WriteByte(s[i])
			col++
		}
	}
	return b.String()
}

// Stop is one diagnostic: the source line it was raised on and the
// error. Parse and assembly errors from either pass are recorded this
// way rather than aborting the run: an assembler keeps going to
// surface as many errors as it can in one invocation.
type Stop struct {
	Line int
	Err  error
}

func (s *Stop) Error() string {
	return fmt.Sprintf("line %d: %s", s.Line, s.Err)
}

// Result is returned by Assemble: the total diagnostics raised across
// both passes, pass 1's first and then pass 2's, each in source order.
// An error raised on the same line in both passes appears twice.
type Result struct {
	Errors []*Stop
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// Driver runs the two-pass assembly of one source file: pass 1
// discovers every symbol's value (tolerating forward references),
// pass 2 emits the object file and listing, erroring on anything
// still unresolved.
type Driver struct {
	instrs  *instset.Set
	parser  *Parser
	symbols *symtab.Table

	locationCounter uint16
	lineNumber      int
	pass            int

	object  *objectWriter
	listing io.Writer

	result Result
}

// NewDriver returns a Driver with a fresh symbol table and the
// standard instruction catalog.
func NewDriver() *Driver {
	instrs := instset.New()
	return &Driver{
		instrs:  instrs,
		parser:  NewParser(instrs),
		symbols: symtab.New(),
	}
}

// Assemble runs both passes over source, writing the finished object
// file to object and the source listing to listing. It returns the
// accumulated Result even on a reported error, so the caller can print
// every diagnostic, and a non-nil error only when at least one
// diagnostic was raised. If reading source fails, it returns a nil
// Result and that read error.
func (d *Driver) Assemble(source io.Reader, object, listing io.Writer) (*Result, error) {
	lines, err := readLines(source)
	if err != nil {
		return nil, err
	}

	d.listing = listing
	d.runPass(1, lines, nil)
	d.object = &objectWriter{w: object, nextAddr: -1}
	d.runPass(2, lines, listing)

	if d.result.HasErrors() {
		return &d.result, fmt.Errorf("assembly failed with %d error(s)", len(d.result.Errors))
	}
	return &d.result, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		lines = append(lines, untabify(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// runPass assembles every line once. listing is nil during pass 1,
// since nothing is written until addresses and symbol values are
// final.
func (d *Driver) runPass(pass int, lines []string, listing io.Writer) {
	d.pass = pass
	d.locationCounter = 0
	d.symbols.SetLookupUndefinedOK(pass == 1)

	for i, raw := range lines {
		d.lineNumber = i + 1
		addr := d.locationCounter

		stmt, err := d.parser.Parse(d.lineNumber, addr, raw)
		if err != nil {
			d.recordError(err)
			continue
		}

		data, err := d.assembleStatement(stmt, addr)
		if err != nil && err != errEndOfSource {
			d.recordError(err)
			continue
		}

		if pass == 2 {
			hasAddr := stmt.Mnemonic != "" || stmt.Label != ""
			// .loc repoints d.locationCounter directly inside
			// assembleStatement without emitting bytes; every other
			// statement leaves it unchanged until the increment
			// below, so reading it here (not addr) shows .loc's new
			// address on its own listing line.
			d.writeListingLine(d.lineNumber, d.locationCounter, hasAddr, data, raw)
			if len(data) > 0 {
				d.object.writeBytes(addr, data)
			}
		}

		d.locationCounter += uint16(len(data))

		if err == errEndOfSource {
			break
		}
	}
}

// errEndOfSource signals .end: not a diagnostic, just a stop request
// for the remainder of the current pass.
var errEndOfSource = fmt.Errorf(".end")

func (d *Driver) recordError(err error) {
	d.result.Errors = append(d.result.Errors, &Stop{Line: d.lineNumber, Err: err})
}

// assembleStatement binds the statement's label (if any binds to the
// location counter rather than a directive-supplied value) and then
// dispatches to the instruction or pseudo-op assembler. It returns the
// bytes this statement contributes to the object stream.
func (d *Driver) assembleStatement(stmt *ast.Statement, addr uint16) ([]byte, error) {
	var popInfo pseudoop.Info
	isPseudoOp := false
	if stmt.Mnemonic != "" {
		if info, ok := pseudoop.Lookup(stmt.Mnemonic); ok {
			popInfo, isPseudoOp = info, true
		}
	}

	if stmt.Label != "" {
		if isPseudoOp && popInfo.Flags.Has(pseudoop.LabelDisallowed) {
			return nil, fmt.Errorf("label not allowed on %q", stmt.Mnemonic)
		}
		if !isPseudoOp || !popInfo.Flags.Has(pseudoop.LabelIsntLoc) {
			if err := d.symbols.Define(d.lineNumber, stmt.Label, value.Known(addr)); err != nil {
				return nil, err
			}
		}
	}

	switch {
	case stmt.Mnemonic == "":
		return nil, nil
	case isPseudoOp:
		return d.assemblePseudoOp(popInfo, stmt, addr)
	default:
		return d.assembleInstruction(stmt, addr)
	}
}

func (d *Driver) evalContext() ast.EvalContext {
	return ast.EvalContext{Symbols: d.symbols, Line: d.lineNumber}
}

// assembleInstruction resolves a dialect mnemonic's catalog entry (or
// entry pair), evaluates its operand if it has one, and emits the
// opcode followed by the operand bytes the chosen addressing mode
// requires.
func (d *Driver) assembleInstruction(stmt *ast.Statement, addr uint16) ([]byte, error) {
	infos, err := d.instrs.Get(stmt.Mnemonic)
	if err != nil {
		return nil, err
	}
	if len(stmt.Operands) == 0 {
		return []byte{infos[0].Opcode}, nil
	}

	val, err := stmt.Operands[0].Eval(d.evalContext())
	if err != nil {
		return nil, err
	}

	info := chooseInfo(infos, val)
	operand, err := encodeOperand(info, val, addr)
	if err != nil {
		return nil, err
	}
	return append([]byte{info.Opcode}, operand...), nil
}

// chooseInfo picks between a zero-page/absolute sibling pair by the
// operand's magnitude. A still-unknown operand (a pass-1 forward
// reference) is treated as if it were out of zero-page range, so pass 1
// sizes the instruction as the absolute form. Pass 2 chooses by the
// resolved value, so a forward reference that resolves to 0x00FF or
// less is encoded one byte shorter in pass 2 than pass 1 sized it.
func chooseInfo(infos []instset.Info, val value.Value) instset.Info {
	if len(infos) == 1 {
		return infos[0]
	}
	if v, err := val.Get(); err == nil && v <= 0x00ff {
		return infos[0]
	}
	return infos[1]
}

// encodeOperand converts a resolved operand value into the bytes its
// addressing mode requires. A still-unknown value (pass 1) yields
// zeroed placeholder bytes of the correct count; only pass 2 ever
// writes bytes to the object file, so the placeholder content itself
// is never observed.
func encodeOperand(info instset.Info, val value.Value, addr uint16) ([]byte, error) {
	size := instset.OperandSizeBytes(info.Mode)

	if info.Mode == instset.Relative {
		v, err := val.Get()
		if err != nil {
			return []byte{0}, nil
		}
		disp := int(v) - int(addr) - 2
		if disp < -128 || disp > 127 {
			return nil, fmt.Errorf("branch target out of range")
		}
		return []byte{byte(int8(disp))}, nil
	}

	v, err := val.Get()
	if err != nil {
		return make([]byte, size), nil
	}
	switch size {
	case 1:
		return []byte{byte(v)}, nil
	case 2:
		return []byte{byte(v), byte(v >> 8)}, nil
	}
	return nil, nil
}

// assemblePseudoOp implements the eleven directives. .list, .nolist,
// .page and .link are accepted as no-ops: a batch assembler has no
// paginated printer output or external linker pass to drive.
func (d *Driver) assemblePseudoOp(info pseudoop.Info, stmt *ast.Statement, addr uint16) ([]byte, error) {
	ctx := d.evalContext()

	switch info.Op {
	case pseudoop.Ascii:
		return []byte(stmt.Operands[0].Str), nil

	case pseudoop.Byte:
		return d.evalOperandList(stmt.Operands, ctx, 1, false)

	case pseudoop.Hbyte:
		return d.evalOperandList(stmt.Operands, ctx, 1, true)

	case pseudoop.Word:
		return d.evalOperandList(stmt.Operands, ctx, 2, false)

	case pseudoop.Loc:
		val, err := stmt.Operands[0].Eval(ctx)
		if err != nil {
			return nil, err
		}
		v, err := val.Get()
		if err != nil {
			return nil, fmt.Errorf(".loc requires a fully resolved address")
		}
		d.locationCounter = v
		return nil, nil

	case pseudoop.Def:
		val, err := stmt.Operands[1].Eval(ctx)
		if err != nil {
			return nil, err
		}
		if err := d.symbols.Define(d.lineNumber, stmt.Operands[0].Name, val); err != nil {
			return nil, err
		}
		if stmt.Label != "" {
			if err := d.symbols.Define(d.lineNumber, stmt.Label, val); err != nil {
				return nil, err
			}
		}
		return nil, nil

	case pseudoop.End:
		return nil, errEndOfSource

	case pseudoop.Link, pseudoop.List, pseudoop.Nolist, pseudoop.Page:
		return nil, nil
	}
	return nil, nil
}

// evalOperandList evaluates a comma-separated expression list into a
// flat byte slice, bytesPer bytes per value, little-endian unless high
// selects the high-byte-only form used by .hbyte. An empty list (the
// directive named with no operands at all) emits a single zero
// value, matching .byte/.hbyte/.word's documented behavior.
func (d *Driver) evalOperandList(operands []*ast.Expr, ctx ast.EvalContext, bytesPer int, high bool) ([]byte, error) {
	if len(operands) == 0 {
		if high {
			return []byte{0}, nil
		}
		return make([]byte, bytesPer), nil
	}
	var out []byte
	for _, e := range operands {
		val, err := e.Eval(ctx)
		if err != nil {
			return nil, err
		}
		v, err := val.Get()
		if err != nil {
			if high {
				out = append(out, 0)
			} else {
				out = append(out, make([]byte, bytesPer)...)
			}
			continue
		}
		switch {
		case high:
			out = append(out, byte(v>>8))
		case bytesPer == 2:
			out = append(out, byte(v), byte(v>>8))
		default:
			out = append(out, byte(v))
		}
	}
	return out, nil
}

// objectWriter renders assembled bytes as the ASCII hex object format:
// two hex digits per byte, with an upper-case "*XXXX" address prefix
// emitted only when the address isn't a direct continuation of the
// previously written byte.
type objectWriter struct {
	w        io.Writer
	nextAddr int // -1 until the first byte is written
}

func (o *objectWriter) writeBytes(addr uint16, data []byte) {
	if len(data) == 0 {
		return
	}
	if o.nextAddr != int(addr) {
		fmt.Fprintf(o.w, "*%04X", addr)
	}
	for _, b := range data {
		fmt.Fprintf(o.w, "%02X", b)
	}
	o.nextAddr = int(addr) + len(data)
}

// writeListingLine renders one source line's listing row: a 5-digit
// line number, the line's address (blank if the statement has neither
// a label nor a mnemonic), up to 3 object bytes, then the
// untabified source text. Object bytes beyond the first 3 continue on
// blank-prefixed rows below.
func (d *Driver) writeListingLine(lineNumber int, addr uint16, hasAddr bool, data []byte, source string) {
	fmt.Fprintf(d.listing, "%5d  ", lineNumber)
	if hasAddr {
		fmt.Fprintf(d.listing, "%04X ", addr)
	} else {
		fmt.Fprint(d.listing, "     ")
	}
	fmt.Fprint(d.listing, formatListingBytes(data, 3))
	fmt.Fprintf(d.listing, "  %s\n", source)

	for i := 3; i < len(data); i += 3 {
		end := i + 3
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprint(d.listing, "             ")
		fmt.Fprint(d.listing, formatListingBytes(data[i:end], 3))
		fmt.Fprintln(d.listing)
	}
}

func formatListingBytes(data []byte, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i < len(data) {
			fmt.Fprintf(&b, " %02X", data[i])
		} else {
			b.WriteString("   ")
		}
	}
	return b.String()
}
