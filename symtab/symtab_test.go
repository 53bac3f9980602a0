package symtab

import (
	"testing"

	"github.com/brouhaha/impala/value"
)

func TestDefineAndLookup(t *testing.T) {
	tab := New()
	if err := tab.Define(1, "FOO", value.Known(0x1000)); err != nil {
		t.Fatal(err)
	}
	v, err := tab.Lookup(2, "foo")
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := v.Get(); n != 0x1000 {
		t.Errorf("got %#x, want 0x1000", n)
	}
	refs, err := tab.ReferenceLines("foo")
	if err != nil {
		t.Fatal(err)
	}
	if !refs[2] {
		t.Errorf("expected line 2 recorded as a reference, got %v", refs)
	}
}

func TestMultiplyDefined(t *testing.T) {
	tab := New()
	tab.Define(1, "foo", value.Known(1))
	err := tab.Define(2, "foo", value.Known(1))
	if _, ok := err.(*MultiplyDefinedError); !ok {
		t.Fatalf("expected MultiplyDefinedError, got %v", err)
	}
}

func TestSameLineRedefineIdempotent(t *testing.T) {
	tab := New()
	tab.Define(5, "foo", value.Known(0x42))
	if err := tab.Define(5, "foo", value.Known(0x42)); err != nil {
		t.Fatalf("same-line same-value redefine should be idempotent, got %v", err)
	}
}

func TestSameLineValueMismatch(t *testing.T) {
	tab := New()
	tab.Define(5, "foo", value.Known(0x42))
	err := tab.Define(5, "foo", value.Known(0x43))
	if _, ok := err.(*ValueRedefinedError); !ok {
		t.Fatalf("expected ValueRedefinedError, got %v", err)
	}
}

func TestLookupUndefinedPass1(t *testing.T) {
	tab := New()
	tab.SetLookupUndefinedOK(true)
	v, err := tab.Lookup(1, "notyet")
	if err != nil {
		t.Fatalf("pass-1 lookup of undefined symbol should not fail, got %v", err)
	}
	if v.IsKnown() {
		t.Errorf("expected unknown value")
	}

	// The pass-1-unknown lookup must not create or mutate a table
	// entry: a subsequent Define at a different line must succeed,
	// not report a multiply-defined conflict with line 1.
	if tab.Contains("notyet") {
		t.Errorf("pass-1 unknown lookup should not bind the symbol")
	}
	if err := tab.Define(9, "notyet", value.Known(0x55)); err != nil {
		t.Fatalf("define after unknown lookup should not conflict, got %v", err)
	}
}

func TestLookupUndefinedPass2Fails(t *testing.T) {
	tab := New()
	tab.SetLookupUndefinedOK(false)
	_, err := tab.Lookup(1, "nope")
	if _, ok := err.(*UndefinedError); !ok {
		t.Fatalf("expected UndefinedError, got %v", err)
	}
}

func TestCaseFolding(t *testing.T) {
	tab := New()
	tab.Define(1, "Loop", value.Known(0x10))
	if !tab.Contains("LOOP") {
		t.Errorf("expected case-insensitive match")
	}
}
