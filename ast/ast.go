// Package ast is the tree the parser builds for a single source line:
// a uniform Expr tagged-variant node for every expression form, plus
// the Statement aggregate (label, mnemonic, operand list).
//
// This recasts the original implementation's deep virtual-dispatch
// class hierarchy (one class per node kind, evaluate() overridden in
// each leaf) as a single struct with a Kind tag and one-point
// dispatch, matching how the rest of this codebase's expression trees
// are shaped.
package ast

import (
	"fmt"

	"github.com/brouhaha/impala/symtab"
	"github.com/brouhaha/impala/value"
)

// Kind tags the variant a *Expr node holds.
type Kind byte

const (
	Constant Kind = iota
	StringConstant
	Symbol
	UnaryOp
	BinaryOp
	LocationCounter
)

// UnaryOperator is one of the dialect's two byte-extraction operators.
type UnaryOperator byte

const (
	LowByte UnaryOperator = iota
	HighByte
)

// BinaryOperator is one of the dialect's four arithmetic operators.
type BinaryOperator byte

const (
	Add BinaryOperator = iota
	Sub
	Mul
	Div
)

// Expr is one node of an expression tree. Only the fields relevant to
// Kind are meaningful; the others are zero.
type Expr struct {
	Kind Kind

	// Constant, LocationCounter
	Value value.Value

	// StringConstant
	Str string

	// Symbol
	Name string

	// UnaryOp
	UnaryOperator UnaryOperator
	Sub           *Expr

	// BinaryOp
	BinaryOperator BinaryOperator
	Left, Right    *Expr
}

// EvalContext carries what Eval needs to resolve a Symbol node: the
// symbol table, and the source line number to record as a reference
// site.
type EvalContext struct {
	Symbols *symtab.Table
	Line    int
}

// Eval resolves e to a Value, recursing into subexpressions. Symbol
// lookups go through the symbol table's pass-dependent behavior (see
// symtab.Table.Lookup); every other case is a pure function of its
// children.
func (e *Expr) Eval(ctx EvalContext) (value.Value, error) {
	switch e.Kind {
	case Constant, LocationCounter:
		return e.Value, nil

	case Symbol:
		return ctx.Symbols.Lookup(ctx.Line, e.Name)

	case UnaryOp:
		v, err := e.Sub.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		switch e.UnaryOperator {
		case LowByte:
			return value.LowByte(v), nil
		case HighByte:
			return value.HighByte(v), nil
		}
		panic("ast: unrecognized unary operator")

	case BinaryOp:
		left, err := e.Left.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		right, err := e.Right.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		switch e.BinaryOperator {
		case Add:
			return value.Add(left, right)
		case Sub:
			return value.Sub(left, right)
		case Mul:
			return value.Mul(left, right)
		case Div:
			return value.Div(left, right)
		}
		panic("ast: unrecognized binary operator")

	case StringConstant:
		return value.Value{}, fmt.Errorf("string constant has no numeric value")
	}
	panic("ast: unrecognized expression kind")
}

// NewConstant, NewString, NewSymbol, NewUnary, NewBinary and
// NewLocationCounter are the parser's node constructors.

func NewConstant(v value.Value) *Expr {
	return &Expr{Kind: Constant, Value: v}
}

func NewString(s string) *Expr {
	return &Expr{Kind: StringConstant, Str: s}
}

func NewSymbol(name string) *Expr {
	return &Expr{Kind: Symbol, Name: name}
}

func NewUnary(op UnaryOperator, sub *Expr) *Expr {
	return &Expr{Kind: UnaryOp, UnaryOperator: op, Sub: sub}
}

func NewBinary(left *Expr, op BinaryOperator, right *Expr) *Expr {
	return &Expr{Kind: BinaryOp, BinaryOperator: op, Left: left, Right: right}
}

// NewLocationCounter wraps the location counter's value, captured at
// parse time, as a constant: '.' is not a deferred reference, it sees
// the counter as it stood at the start of the current source line.
func NewLocationCounter(v uint16) *Expr {
	return &Expr{Kind: LocationCounter, Value: value.Known(v)}
}

// Statement is a parsed source line: an optional label (empty if
// absent), a mnemonic (empty if the line is label-only or blank), and
// its operand expressions.
type Statement struct {
	Label    string
	Mnemonic string
	Operands []*Expr
}
