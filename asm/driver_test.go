package asm

import (
	"strings"
	"testing"
)

// assemble runs the two-pass driver over src and returns the object
// file's hex text and the listing text.
func assemble(t *testing.T, src string) (objHex, listing string, err error) {
	t.Helper()
	d := NewDriver()
	var obj, lst strings.Builder
	_, err = d.Assemble(strings.NewReader(src), &obj, &lst)
	return obj.String(), lst.String(), err
}

func checkASM(t *testing.T, src, wantObj string) {
	t.Helper()
	obj, _, err := assemble(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj != wantObj {
		t.Errorf("object mismatch:\n got  %q\n want %q", obj, wantObj)
	}
}

func checkASMError(t *testing.T, src string) {
	t.Helper()
	_, _, err := assemble(t, src)
	if err == nil {
		t.Fatalf("expected an error, got none")
	}
}

func TestImmediateLoad(t *testing.T) {
	checkASM(t, ".loc $200\nlda# $42\n.end\n", "*0200A942")
}

func TestZeroPageVsAbsoluteByMagnitude(t *testing.T) {
	checkASM(t, ".loc $200\nldax $10\nldax $1000\n.end\n", "*0200B510BD0010")
}

func TestForwardBranch(t *testing.T) {
	// bne to a label two bytes past the branch: displacement is 0.
	checkASM(t, ".loc $200\nbne target\ntarget:\n.end\n", "*0200D000")
}

func TestDefAndExpression(t *testing.T) {
	checkASM(t, ".loc $200\n.def size = 5\nlda# size+1\n.end\n", "*0200A906")
}

func TestSymbolMultiplyDefined(t *testing.T) {
	checkASMError(t, ".loc $200\nfoo: nop\nfoo: nop\n.end\n")
}

func TestDivideByZero(t *testing.T) {
	checkASMError(t, ".loc $200\nlda# 4/0\n.end\n")
}

func TestUndefinedSymbolAtEnd(t *testing.T) {
	checkASMError(t, ".loc $200\nlda# nowhere\n.end\n")
}

func TestAccumulatorShift(t *testing.T) {
	checkASM(t, ".loc $200\nasla\n.end\n", "*02000A")
}

func TestImpliedInstruction(t *testing.T) {
	checkASM(t, ".loc $200\nnop\n.end\n", "*0200EA")
}

func TestIndirectX(t *testing.T) {
	checkASM(t, ".loc $200\nldax@ $10\n.end\n", "*0200A110")
}

func TestIndirectY(t *testing.T) {
	checkASM(t, ".loc $200\nlda@y $10\n.end\n", "*0200B110")
}

func TestAbsoluteIndirectJump(t *testing.T) {
	checkASM(t, ".loc $200\njmp@ $1000\n.end\n", "*02006C0010")
}

func TestByteDirective(t *testing.T) {
	checkASM(t, ".loc $200\n.byte 1, 2, 3\n.end\n", "*0200010203")
}

func TestWordDirective(t *testing.T) {
	checkASM(t, ".loc $200\n.word $1234\n.end\n", "*02003412")
}

func TestHbyteDirective(t *testing.T) {
	checkASM(t, ".loc $200\n.hbyte $1234\n.end\n", "*020012")
}

func TestAsciiDirective(t *testing.T) {
	checkASM(t, ".loc $200\n.ascii \"AB\"\n.end\n", "*02004142")
}

func TestLowHighByteOperators(t *testing.T) {
	checkASM(t, ".loc $200\n.def addr = $1234\nlda# <addr\nlda# >addr\n.end\n", "*0200A934A912")
}

func TestLabelReferencesOwnLine(t *testing.T) {
	checkASM(t, ".loc $200\nloop: bne loop\n.end\n", "*0200D0FE")
}

func TestCaseInsensitiveMnemonics(t *testing.T) {
	checkASM(t, ".loc $200\nLDA# $42\n.END\n", "*0200A942")
}

func TestLocDirectiveRepositions(t *testing.T) {
	checkASM(t, ".loc $200\nnop\n.loc $300\nnop\n.end\n", "*0200EA*0300EA")
}

// The remaining tests reproduce the worked scenarios verbatim: bare
// "lda" (unsuffixed) selecting zero-page or absolute purely by
// operand magnitude, a forward-referenced branch whose target is
// defined later in the file, and .word emitting a two-expression
// list at a .def-computed base address.

func TestWorkedZeroPageVsAbsolute(t *testing.T) {
	checkASM(t, ".loc 0\nlda 5\nlda $200\n.end\n", "*0000A505AD0002")
}

func TestWorkedForwardBranchOverAnInstruction(t *testing.T) {
	checkASM(t, ".loc $100\nstart: bne end\nnop\nend: rts\n.end\n", "*0100D001EA60")
}

func TestWorkedDefAndWordList(t *testing.T) {
	checkASM(t, ".def base = $1000\n.loc base\n.word base+2, base+4\n.end\n", "*100002100410")
}

func TestEndStopsRemainingLines(t *testing.T) {
	obj, _, err := assemble(t, ".loc $200\nnop\n.end\nlda# $42\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj != "*0200EA" {
		t.Errorf("got %q, want *0200EA (line after .end must not assemble)", obj)
	}
}

func TestEmptyByteListEmitsOneZero(t *testing.T) {
	checkASM(t, ".loc $200\n.byte\n.end\n", "*020000")
}

func TestEmptyWordListEmitsOneZeroWord(t *testing.T) {
	checkASM(t, ".loc $200\n.word\n.end\n", "*02000000")
}

func TestLocShowsNewAddressInListing(t *testing.T) {
	_, listing, err := assemble(t, ".loc $200\n.end\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstLine := strings.SplitN(listing, "\n", 2)[0]
	if !strings.Contains(firstLine, "0200") {
		t.Errorf("listing line for .loc should show its new address 0200, got %q", firstLine)
	}
}
