package asm

import (
	"fmt"

	"github.com/brouhaha/impala/ast"
	"github.com/brouhaha/impala/instset"
	"github.com/brouhaha/impala/pseudoop"
)

// ParseError is returned for a malformed source line. It carries the
// line number so the driver can report it and move on; no partial AST
// escapes a failed parse.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parser recognizes one source line at a time and builds its
// Statement. It is stateless between calls save for the static
// instruction catalog it was built with.
type Parser struct {
	instrs *instset.Set
}

// NewParser returns a Parser driven by the given instruction catalog.
func NewParser(instrs *instset.Set) *Parser {
	return &Parser{instrs: instrs}
}

// Parse recognizes one already-untabified source line. locationCounter
// is the counter's value at the start of this line, used to resolve
// the '.' token. A malformed line returns *ParseError; the caller's
// AST-building stack is local to this call, so a failure leaves
// nothing behind to clean up.
func (p *Parser) Parse(lineNumber int, locationCounter uint16, raw string) (*ast.Statement, error) {
	line := newFstring(lineNumber, raw).stripTrailingComment()
	line = line.consumeWhitespace()

	stmt := &ast.Statement{}

	label, rest, hasLabel := p.tryParseLabel(line)
	if hasLabel {
		stmt.Label = label
		line = rest.consumeWhitespace()
	}

	if line.isEmpty() {
		return stmt, nil
	}

	var err error
	if line.startsWithChar('.') {
		err = p.parsePseudoOp(lineNumber, locationCounter, line, stmt)
	} else if line.startsWith(symbolStartChar) {
		err = p.parseInstruction(lineNumber, locationCounter, line, stmt)
	} else {
		err = &ParseError{Line: lineNumber, Msg: fmt.Sprintf("expected mnemonic, found %q", line.str)}
	}
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

// tryParseLabel recognizes `symbol ':'` at the start of the line. If
// the leading word isn't followed by ':', it is not a label (most
// likely the mnemonic itself) and the original line is returned
// unconsumed.
func (p *Parser) tryParseLabel(line fstring) (label string, out fstring, ok bool) {
	if !line.startsWith(symbolStartChar) {
		return "", line, false
	}
	name, rest := line.consumeWhile(symbolChar)
	if !rest.startsWithChar(':') {
		return "", line, false
	}
	sym, err := normalizeSymbol(name)
	if err != nil {
		return "", line, false
	}
	return sym, rest.consume(1), true
}

// suffixOrder is tried longest-match-first against the text immediately
// following a 3-letter base mnemonic.
var suffixOrder = []string{"x@", "@y", "#", "@", "x", "y", "a"}

// splitSuffix recognizes the dialect's address-mode suffix spelling
// immediately after a base mnemonic, case-insensitively. An absent
// suffix (the zero-page/absolute/relative/implied case) is legal and
// returns "".
func splitSuffix(line fstring) (suffix string, out fstring) {
	for _, s := range suffixOrder {
		if len(line.str) >= len(s) && equalFold(line.str[:len(s)], s) {
			return s, line.consume(len(s))
		}
	}
	return "", line
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// parseInstruction recognizes `mnemonic-of-zero-operand-instruction`
// or `mnemonic-of-one-operand-instruction mode-suffix? WS expression`.
// Which one applies is determined entirely by what the instruction
// catalog says about the resulting dialect mnemonic's operand
// arity — the parser itself doesn't special-case either grammar
// production, since the catalog is the single source of truth for
// operand count, matching how the driver re-derives it in assembly.
func (p *Parser) parseInstruction(lineNumber int, locationCounter uint16, line fstring, stmt *ast.Statement) error {
	if len(line.str) < 3 {
		return &ParseError{Line: lineNumber, Msg: "expected mnemonic"}
	}
	base := line.trunc(3)
	rest := line.consume(3)
	suffix, rest := splitSuffix(rest)
	dialect := toLower(base.str) + suffix

	infos, err := p.instrs.Get(dialect)
	if err != nil {
		return &ParseError{Line: lineNumber, Msg: err.Error()}
	}

	expectOperand := false
	switch len(infos) {
	case 1:
		expectOperand = instset.OperandSizeBytes(infos[0].Mode) > 0
	case 2:
		expectOperand = true
	}

	stmt.Mnemonic = dialect

	if !expectOperand {
		rest = rest.consumeWhitespace()
		if !rest.isEmpty() {
			return &ParseError{Line: lineNumber, Msg: fmt.Sprintf("unexpected text after %q", dialect)}
		}
		return nil
	}

	if !rest.startsWith(whitespace) {
		return &ParseError{Line: lineNumber, Msg: fmt.Sprintf("expected whitespace after %q", dialect)}
	}
	rest = rest.consumeWhitespace()

	ep := newExprParser(locationCounter)
	operand, out, err := ep.parseExpression(rest)
	if err != nil {
		return &ParseError{Line: lineNumber, Msg: err.Error()}
	}
	out = out.consumeWhitespace()
	if !out.isEmpty() {
		return &ParseError{Line: lineNumber, Msg: fmt.Sprintf("unexpected text %q after operand", out.str)}
	}
	stmt.Operands = []*ast.Expr{operand}
	return nil
}

// parsePseudoOp recognizes one of the directive productions: pop0
// (.end/.list/.nolist/.page, no operands), .loc (exactly one
// expression), popN (.byte/.hbyte/.word, an optional expression list),
// popAscii (.ascii, one string), popDef (.def, "symbol = expression")
// or popLink (.link, a symbol).
func (p *Parser) parsePseudoOp(lineNumber int, locationCounter uint16, line fstring, stmt *ast.Statement) error {
	name, rest := line.consumeWhile(func(c byte) bool { return alpha(c) || c == '.' })
	mnemonic := toLower(name.str)
	info, ok := pseudoop.Lookup(mnemonic)
	if !ok {
		return &ParseError{Line: lineNumber, Msg: fmt.Sprintf("unrecognized pseudo-op %q", mnemonic)}
	}
	stmt.Mnemonic = mnemonic
	rest = rest.consumeWhitespace()

	switch info.Op {
	case pseudoop.End, pseudoop.List, pseudoop.Nolist, pseudoop.Page:
		if !rest.isEmpty() {
			return &ParseError{Line: lineNumber, Msg: fmt.Sprintf("%q takes no operands", mnemonic)}
		}
		return nil

	case pseudoop.Loc:
		if rest.isEmpty() {
			return &ParseError{Line: lineNumber, Msg: ".loc requires an expression"}
		}
		ep := newExprParser(locationCounter)
		expr, out, err := ep.parseExpression(rest)
		if err != nil {
			return &ParseError{Line: lineNumber, Msg: err.Error()}
		}
		if !out.consumeWhitespace().isEmpty() {
			return &ParseError{Line: lineNumber, Msg: "unexpected text after .loc expression"}
		}
		stmt.Operands = []*ast.Expr{expr}
		return nil

	case pseudoop.Byte, pseudoop.Hbyte, pseudoop.Word:
		if rest.isEmpty() {
			return nil
		}
		operands, out, err := p.parseExpressionList(locationCounter, rest)
		if err != nil {
			return &ParseError{Line: lineNumber, Msg: err.Error()}
		}
		if !out.consumeWhitespace().isEmpty() {
			return &ParseError{Line: lineNumber, Msg: "unexpected text after operand list"}
		}
		stmt.Operands = operands
		return nil

	case pseudoop.Ascii:
		str, out, err := parseQuotedString(rest)
		if err != nil {
			return &ParseError{Line: lineNumber, Msg: err.Error()}
		}
		if !out.consumeWhitespace().isEmpty() {
			return &ParseError{Line: lineNumber, Msg: "unexpected text after string"}
		}
		stmt.Operands = []*ast.Expr{ast.NewString(str)}
		return nil

	case pseudoop.Def:
		if !rest.startsWith(symbolStartChar) {
			return &ParseError{Line: lineNumber, Msg: ".def requires a symbol"}
		}
		name, out := rest.consumeWhile(symbolChar)
		sym, err := normalizeSymbol(name)
		if err != nil {
			return &ParseError{Line: lineNumber, Msg: err.Error()}
		}
		out = out.consumeWhitespace()
		if !out.startsWithChar('=') {
			return &ParseError{Line: lineNumber, Msg: ".def requires '='"}
		}
		out = out.consume(1).consumeWhitespace()
		ep := newExprParser(locationCounter)
		expr, out2, err := ep.parseExpression(out)
		if err != nil {
			return &ParseError{Line: lineNumber, Msg: err.Error()}
		}
		if !out2.consumeWhitespace().isEmpty() {
			return &ParseError{Line: lineNumber, Msg: "unexpected text after .def expression"}
		}
		stmt.Operands = []*ast.Expr{ast.NewSymbol(sym), expr}
		return nil

	case pseudoop.Link:
		if !rest.startsWith(symbolStartChar) {
			return &ParseError{Line: lineNumber, Msg: ".link requires a symbol"}
		}
		name, out := rest.consumeWhile(symbolChar)
		sym, err := normalizeSymbol(name)
		if err != nil {
			return &ParseError{Line: lineNumber, Msg: err.Error()}
		}
		if !out.consumeWhitespace().isEmpty() {
			return &ParseError{Line: lineNumber, Msg: "unexpected text after .link symbol"}
		}
		stmt.Operands = []*ast.Expr{ast.NewSymbol(sym)}
		return nil
	}
	return &ParseError{Line: lineNumber, Msg: fmt.Sprintf("unhandled pseudo-op %q", mnemonic)}
}

// parseExpressionList recognizes a comma-separated, non-empty list of
// expressions.
func (p *Parser) parseExpressionList(locationCounter uint16, line fstring) ([]*ast.Expr, fstring, error) {
	var operands []*ast.Expr
	for {
		ep := newExprParser(locationCounter)
		e, out, err := ep.parseExpression(line)
		if err != nil {
			return nil, line, err
		}
		operands = append(operands, e)
		line = out.consumeWhitespace()
		if !line.startsWithChar(',') {
			return operands, line, nil
		}
		line = line.consume(1).consumeWhitespace()
	}
}

// parseQuotedString recognizes `<q> ... <q>` where <q> is one of
// `'`, `"` or `?`, with no embedded occurrence of that same quote.
func parseQuotedString(line fstring) (string, fstring, error) {
	if !line.startsWith(stringQuote) {
		return "", line, fmt.Errorf("expected a quoted string")
	}
	quote := line.str[0]
	rest := line.consume(1)
	body, out := rest.consumeWhile(func(c byte) bool { return c != quote })
	if !out.startsWithChar(quote) {
		return "", line, fmt.Errorf("unterminated string")
	}
	return body.str, out.consume(1), nil
}
