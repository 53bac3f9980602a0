package asm

import (
	"fmt"
	"strconv"

	"github.com/brouhaha/impala/ast"
	"github.com/brouhaha/impala/value"
)

// binOp is a shunting-yard operator token for one of the dialect's
// four binary arithmetic operators. Unlike the teacher package this
// is ported from, the dialect has no unary minus/plus and no bitwise
// operators, and its only unary forms (low-byte/high-byte) apply
// exclusively to a bare symbol, so they're handled directly in
// parseFactor rather than through the operator stack.
type binOp byte

const (
	opMul binOp = iota
	opDiv
	opAdd
	opSub
)

var binOps = [...]struct {
	precedence byte
	symbol     string
	astOp      ast.BinaryOperator
}{
	opMul: {2, "*", ast.Mul},
	opDiv: {2, "/", ast.Div},
	opAdd: {1, "+", ast.Add},
	opSub: {1, "-", ast.Sub},
}

// exprParser parses one dialect expression using Dijkstra's
// shunting-yard algorithm: operand stack of *ast.Expr, operator stack
// of binOp, with left-associative collapse on equal precedence.
type exprParser struct {
	operands []*ast.Expr
	operators []binOp
	locationCounter uint16
}

func newExprParser(locationCounter uint16) *exprParser {
	return &exprParser{locationCounter: locationCounter}
}

// parseExpression consumes one `expression := term (('+'|'-') term)*`
// production and returns the built tree plus the unconsumed line.
func (p *exprParser) parseExpression(line fstring) (*ast.Expr, fstring, error) {
	p.operands, p.operators = nil, nil

	e, out, err := p.parseFactor(line)
	if err != nil {
		return nil, line, err
	}
	p.pushOperand(e)
	line = out

	for {
		op, ok, out2 := p.peekOperator(line)
		if !ok {
			break
		}
		p.collapseWhile(func(top binOp) bool {
			return binOps[top].precedence >= binOps[op].precedence
		})
		p.operators = append(p.operators, op)
		line = out2

		e, out, err = p.parseFactor(line)
		if err != nil {
			return nil, line, err
		}
		p.pushOperand(e)
		line = out
	}

	p.collapseWhile(func(binOp) bool { return true })
	return p.popOperand(), line, nil
}

// peekOperator recognizes a binary operator token. It distinguishes
// '*'/'/' (term-level) from '+'/'-' (expression-level) purely by
// symbol; both tiers are driven through the same stack so a single
// expression production can parse the whole `term (+/- term)*`
// grammar in one pass.
func (p *exprParser) peekOperator(line fstring) (binOp, bool, fstring) {
	line = line.consumeWhitespace()
	for op, data := range binOps {
		if line.startsWithString(data.symbol) {
			return binOp(op), true, line.consume(1).consumeWhitespace()
		}
	}
	return 0, false, line
}

func (p *exprParser) pushOperand(e *ast.Expr) {
	p.operands = append(p.operands, e)
}

func (p *exprParser) popOperand() *ast.Expr {
	n := len(p.operands)
	e := p.operands[n-1]
	p.operands = p.operands[:n-1]
	return e
}

func (p *exprParser) collapseWhile(cond func(top binOp) bool) {
	for len(p.operators) > 0 && cond(p.operators[len(p.operators)-1]) {
		op := p.operators[len(p.operators)-1]
		p.operators = p.operators[:len(p.operators)-1]
		right := p.popOperand()
		left := p.popOperand()
		p.pushOperand(ast.NewBinary(left, binOps[op].astOp, right))
	}
}

// parseFactor consumes one `factor := constant | symbol | unary-op
// symbol | '(' expression ')'` production.
func (p *exprParser) parseFactor(line fstring) (*ast.Expr, fstring, error) {
	line = line.consumeWhitespace()
	switch {
	case line.isEmpty():
		return nil, line, fmt.Errorf("expected expression, found end of line")

	case line.startsWithChar('('):
		sub, out, err := newExprParser(p.locationCounter).parseExpression(line.consume(1).consumeWhitespace())
		if err != nil {
			return nil, line, err
		}
		out = out.consumeWhitespace()
		if !out.startsWithChar(')') {
			return nil, line, fmt.Errorf("mismatched parentheses")
		}
		return sub, out.consume(1), nil

	case line.startsWithChar('<') || line.startsWithChar('>'):
		var op ast.UnaryOperator
		if line.startsWithChar('<') {
			op = ast.LowByte
		} else {
			op = ast.HighByte
		}
		line = line.consume(1)
		if !line.startsWith(symbolStartChar) {
			return nil, line, fmt.Errorf("'<' and '>' apply only to a symbol")
		}
		name, out := line.consumeWhile(symbolChar)
		sym, err := normalizeSymbol(name)
		if err != nil {
			return nil, line, err
		}
		return ast.NewUnary(op, ast.NewSymbol(sym)), out, nil

	case line.startsWithChar('%'):
		return p.parseOctal(line)

	case line.startsWithChar('$'):
		return p.parseHex(line)

	case line.startsWithChar('\''):
		return p.parseCharacter(line)

	case line.startsWithChar('.'):
		// symbols must start with a letter, so '.' is unambiguously the
		// location-counter token.
		return ast.NewLocationCounter(p.locationCounter), line.consume(1), nil

	case line.startsWith(decimal):
		return p.parseDecimal(line)

	case line.startsWith(symbolStartChar):
		name, out := line.consumeWhile(symbolChar)
		sym, err := normalizeSymbol(name)
		if err != nil {
			return nil, line, err
		}
		return ast.NewSymbol(sym), out, nil
	}
	return nil, line, fmt.Errorf("expected expression")
}

const maxSymbolLength = 10

func normalizeSymbol(f fstring) (string, error) {
	if len(f.str) > maxSymbolLength {
		return "", fmt.Errorf("symbol %q exceeds maximum length of %d characters", f.str, maxSymbolLength)
	}
	return toLower(f.str), nil
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

func (p *exprParser) parseOctal(line fstring) (*ast.Expr, fstring, error) {
	digits, out := line.consume(1).consumeWhile(octal)
	if digits.isEmpty() {
		return nil, line, fmt.Errorf("expected octal digits after '%%'")
	}
	n, err := strconv.ParseUint(digits.str, 8, 16)
	if err != nil {
		return nil, line, fmt.Errorf("invalid octal constant %q: %w", digits.str, err)
	}
	return ast.NewConstant(value.Known(uint16(n))), out, nil
}

func (p *exprParser) parseHex(line fstring) (*ast.Expr, fstring, error) {
	digits, out := line.consume(1).consumeWhile(hexadecimal)
	if digits.isEmpty() {
		return nil, line, fmt.Errorf("expected hex digits after '$'")
	}
	n, err := strconv.ParseUint(digits.str, 16, 16)
	if err != nil {
		return nil, line, fmt.Errorf("invalid hex constant %q: %w", digits.str, err)
	}
	return ast.NewConstant(value.Known(uint16(n))), out, nil
}

func (p *exprParser) parseDecimal(line fstring) (*ast.Expr, fstring, error) {
	digits, out := line.consumeWhile(decimal)
	n, err := strconv.ParseUint(digits.str, 10, 16)
	if err != nil {
		return nil, line, fmt.Errorf("invalid decimal constant %q: %w", digits.str, err)
	}
	return ast.NewConstant(value.Known(uint16(n))), out, nil
}

// parseCharacter reads a character constant: an opening quote
// followed by one printable character. No closing quote is required
// or consumed, matching the dialect's grammar.
func (p *exprParser) parseCharacter(line fstring) (*ast.Expr, fstring, error) {
	rest := line.consume(1)
	if rest.isEmpty() {
		return nil, line, fmt.Errorf("expected a character after \"'\"")
	}
	c := rest.str[0]
	return ast.NewConstant(value.Known(uint16(c))), rest.consume(1), nil
}
