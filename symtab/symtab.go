// Package symtab implements the assembler's symbol table: a mapping
// from case-folded symbol name to its value, definition site, and
// reference sites, with pass-dependent lookup behavior.
package symtab

import (
	"fmt"
	"strings"

	"github.com/brouhaha/impala/value"
)

// MultiplyDefinedError reports a symbol defined on two different
// lines.
type MultiplyDefinedError struct {
	Symbol      string
	Line1, Line2 int
}

func (e *MultiplyDefinedError) Error() string {
	return fmt.Sprintf("symbol %s multiply defined, lines %d and %d", e.Symbol, e.Line1, e.Line2)
}

// ValueRedefinedError reports a same-line redefinition whose resolved
// value doesn't match the value already stored for that line.
type ValueRedefinedError struct {
	Symbol         string
	Value1, Value2 uint16
}

func (e *ValueRedefinedError) Error() string {
	return fmt.Sprintf("symbol %s redefined with different value, %#04x vs %#04x", e.Symbol, e.Value1, e.Value2)
}

// UndefinedError reports a lookup of a symbol that has no entry and
// lookup-undefined-ok is false.
type UndefinedError struct {
	Symbol string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("undefined symbol %s", e.Symbol)
}

type entry struct {
	value          value.Value
	definitionLine int
	references     map[int]bool
}

// Table is the symbol table. The zero Table is not usable; use New.
type Table struct {
	lookupUndefinedOK bool
	symbols           map[string]*entry
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{symbols: make(map[string]*entry)}
}

// Normalize case-folds a symbol or mnemonic the way the parser does
// before it is ever stored or looked up.
func Normalize(name string) string {
	return strings.ToLower(name)
}

// SetLookupUndefinedOK toggles the pass-dependent lookup mode: true
// during pass 1 (undefined lookups synthesize an unknown value), false
// during pass 2 (undefined lookups fail).
func (t *Table) SetLookupUndefinedOK(ok bool) {
	t.lookupUndefinedOK = ok
}

// Define binds name to v at the given source line. A fresh name is
// simply inserted. A name already bound from a different line is a
// fatal *MultiplyDefinedError. A name already bound from the same
// line must resolve to the same 16-bit value (this is what lets pass
// 2 redefine what pass 1 discovered, as a no-op); when both the stored
// and the new value are known, a mismatch is a fatal
// *ValueRedefinedError. If either is unknown, the new value replaces
// the stored one without a check.
func (t *Table) Define(line int, name string, v value.Value) error {
	name = Normalize(name)
	e, ok := t.symbols[name]
	if !ok {
		t.symbols[name] = &entry{
			value:          v,
			definitionLine: line,
			references:     make(map[int]bool),
		}
		return nil
	}
	if e.definitionLine != line {
		return &MultiplyDefinedError{Symbol: name, Line1: e.definitionLine, Line2: line}
	}
	oldVal, oldErr := e.value.Get()
	newVal, newErr := v.Get()
	if oldErr == nil && newErr == nil && oldVal != newVal {
		return &ValueRedefinedError{Symbol: name, Value1: oldVal, Value2: newVal}
	}
	e.value = v
	return nil
}

// Lookup resolves name, recording line as a reference site when the
// symbol is bound. If name is unbound and lookup-undefined-ok is true
// (pass 1), a fresh unknown Value carrying name is returned without
// mutating the table — the reference is deliberately not recorded in
// this case, matching how pass 1 forward references are invisible to
// the eventual cross-reference listing. If name is unbound and the
// mode bit is false (pass 2), Lookup fails.
func (t *Table) Lookup(line int, name string) (value.Value, error) {
	name = Normalize(name)
	e, ok := t.symbols[name]
	if !ok {
		if t.lookupUndefinedOK {
			return value.UnknownSymbol(name), nil
		}
		return value.Value{}, &UndefinedError{Symbol: name}
	}
	e.references[line] = true
	return e.value, nil
}

// Contains reports whether name is bound.
func (t *Table) Contains(name string) bool {
	_, ok := t.symbols[Normalize(name)]
	return ok
}

// DefinitionLine returns the line on which name was defined. It fails
// if name is unbound.
func (t *Table) DefinitionLine(name string) (int, error) {
	e, ok := t.symbols[Normalize(name)]
	if !ok {
		return 0, &UndefinedError{Symbol: Normalize(name)}
	}
	return e.definitionLine, nil
}

// ReferenceLines returns the set of source lines that looked name up.
// It fails if name is unbound.
func (t *Table) ReferenceLines(name string) (map[int]bool, error) {
	e, ok := t.symbols[Normalize(name)]
	if !ok {
		return nil, &UndefinedError{Symbol: Normalize(name)}
	}
	return e.references, nil
}

// Names returns every bound symbol name, for listing output.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.symbols))
	for n := range t.symbols {
		names = append(names, n)
	}
	return names
}
