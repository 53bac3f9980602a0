package value

import "testing"

func TestKnownArithmetic(t *testing.T) {
	a := Known(10)
	b := Known(3)

	if sum, _ := Add(a, b); mustGet(t, sum) != 13 {
		t.Errorf("Add: got %d, want 13", mustGet(t, sum))
	}
	if diff, _ := Sub(a, b); mustGet(t, diff) != 7 {
		t.Errorf("Sub: got %d, want 7", mustGet(t, diff))
	}
	if prod, _ := Mul(a, b); mustGet(t, prod) != 30 {
		t.Errorf("Mul: got %d, want 30", mustGet(t, prod))
	}
	if quot, _ := Div(a, b); mustGet(t, quot) != 3 {
		t.Errorf("Div: got %d, want 3", mustGet(t, quot))
	}
}

func mustGet(t *testing.T, v Value) uint16 {
	t.Helper()
	n, err := v.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return n
}

func TestWraparound(t *testing.T) {
	v, _ := Add(Known(0xffff), Known(1))
	if n, _ := v.Get(); n != 0 {
		t.Errorf("wraparound add: got %#x, want 0", n)
	}
}

func TestUnknownPropagation(t *testing.T) {
	unk := UnknownSymbol("foo")
	known := Known(5)

	sum, err := Add(unk, known)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum.IsKnown() {
		t.Fatalf("expected unknown result")
	}
	if !sum.UnknownSymbols()["foo"] {
		t.Errorf("expected unknown set to contain foo, got %v", sum.UnknownSymbols())
	}
}

func TestUnknownUnion(t *testing.T) {
	a := UnknownSymbol("foo")
	b := UnknownSymbol("bar")
	sum, _ := Add(a, b)
	u := sum.UnknownSymbols()
	if !u["foo"] || !u["bar"] || len(u) != 2 {
		t.Errorf("expected union {foo,bar}, got %v", u)
	}
}

func TestDivideByZero(t *testing.T) {
	_, err := Div(Known(10), Known(0))
	if err == nil {
		t.Fatal("expected divide-by-zero error")
	}
	if _, ok := err.(*DivideByZeroError); !ok {
		t.Errorf("expected *DivideByZeroError, got %T", err)
	}
}

func TestDivideByUnknownNeverFails(t *testing.T) {
	_, err := Div(Known(10), UnknownSymbol("x"))
	if err != nil {
		t.Errorf("division involving unknown must not fail eagerly, got %v", err)
	}
}

func TestByteExtraction(t *testing.T) {
	v := Known(0x1234)
	if n, _ := LowByte(v).Get(); n != 0x34 {
		t.Errorf("LowByte: got %#x, want 0x34", n)
	}
	if n, _ := HighByte(v).Get(); n != 0x12 {
		t.Errorf("HighByte: got %#x, want 0x12", n)
	}
}

func TestByteExtractionUnknownPassthrough(t *testing.T) {
	unk := UnknownSymbol("foo")
	if LowByte(unk).IsKnown() || HighByte(unk).IsKnown() {
		t.Errorf("byte extraction of unknown must remain unknown")
	}
}

func TestByteExtractionLaw(t *testing.T) {
	x := Known(0xbeef)
	hi := HighByte(x)
	lo := LowByte(x)
	hn, _ := hi.Get()
	ln, _ := lo.Get()
	reassembled := Known(hn<<8 | ln)
	if n, _ := LowByte(reassembled).Get(); n != ln {
		t.Errorf("low(high(x)<<8|low(x)) != low(x): got %#x, want %#x", n, ln)
	}
}
