package asm

import (
	"testing"

	"github.com/brouhaha/impala/instset"
)

func newTestParser() *Parser {
	return NewParser(instset.New())
}

func TestParseLabelOnly(t *testing.T) {
	p := newTestParser()
	stmt, err := p.Parse(1, 0x200, "loop:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt.Label != "loop" {
		t.Errorf("got label %q, want loop", stmt.Label)
	}
	if stmt.Mnemonic != "" {
		t.Errorf("expected no mnemonic, got %q", stmt.Mnemonic)
	}
}

func TestParseLabelAndInstruction(t *testing.T) {
	p := newTestParser()
	stmt, err := p.Parse(1, 0x200, "loop: lda# $10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt.Label != "loop" || stmt.Mnemonic != "lda#" {
		t.Errorf("got %+v", stmt)
	}
	if len(stmt.Operands) != 1 {
		t.Fatalf("expected 1 operand, got %d", len(stmt.Operands))
	}
}

func TestParseBlankLine(t *testing.T) {
	p := newTestParser()
	stmt, err := p.Parse(1, 0, "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt.Label != "" || stmt.Mnemonic != "" {
		t.Errorf("expected empty statement, got %+v", stmt)
	}
}

func TestParseCommentOnly(t *testing.T) {
	p := newTestParser()
	stmt, err := p.Parse(1, 0, "  ; just a comment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt.Mnemonic != "" {
		t.Errorf("expected empty statement, got %+v", stmt)
	}
}

func TestParseUnrecognizedMnemonic(t *testing.T) {
	p := newTestParser()
	if _, err := p.Parse(1, 0, "bogus $10"); err == nil {
		t.Fatal("expected an error for an unrecognized mnemonic")
	}
}

func TestParseZeroOperandTakesNoOperand(t *testing.T) {
	p := newTestParser()
	if _, err := p.Parse(1, 0, "nop $10"); err == nil {
		t.Fatal("expected an error: nop takes no operand")
	}
}

func TestParseMissingWhitespaceAfterMnemonic(t *testing.T) {
	p := newTestParser()
	if _, err := p.Parse(1, 0, "ldavalue"); err == nil {
		t.Fatal("expected an error: no whitespace before operand")
	}
}

func TestParseDefDirective(t *testing.T) {
	p := newTestParser()
	stmt, err := p.Parse(1, 0, ".def size = 5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt.Mnemonic != ".def" || len(stmt.Operands) != 2 {
		t.Fatalf("got %+v", stmt)
	}
	if stmt.Operands[0].Name != "size" {
		t.Errorf("got symbol name %q, want size", stmt.Operands[0].Name)
	}
}

func TestParseByteList(t *testing.T) {
	p := newTestParser()
	stmt, err := p.Parse(1, 0, ".byte 1, 2, 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmt.Operands) != 3 {
		t.Fatalf("got %d operands, want 3", len(stmt.Operands))
	}
}

func TestParseAsciiDirective(t *testing.T) {
	p := newTestParser()
	stmt, err := p.Parse(1, 0, `.ascii "hi"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt.Operands[0].Str != "hi" {
		t.Errorf("got %q, want hi", stmt.Operands[0].Str)
	}
}

func TestParseLinkDirective(t *testing.T) {
	p := newTestParser()
	stmt, err := p.Parse(1, 0, ".link external")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt.Operands[0].Name != "external" {
		t.Errorf("got %+v", stmt.Operands)
	}
}
