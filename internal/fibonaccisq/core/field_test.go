package core

import (
	"math/big"
	"testing"
)

func testField(t *testing.T) *Field {
	t.Helper()
	f, err := NewFieldFromUint64(3221225473)
	if err != nil {
		t.Fatalf("NewFieldFromUint64: %v", err)
	}
	return f
}

// TestFieldArithmetic checks (7+5)=12, (7*5)=35, 7^-1 * 7 = 1.
func TestFieldArithmetic(t *testing.T) {
	f := testField(t)
	seven := f.NewElementFromInt64(7)
	five := f.NewElementFromInt64(5)

	if sum := seven.Add(five); sum.Big().Int64() != 12 {
		t.Errorf("7+5 = %s, want 12", sum)
	}
	if prod := seven.Mul(five); prod.Big().Int64() != 35 {
		t.Errorf("7*5 = %s, want 35", prod)
	}

	inv, err := seven.Inv()
	if err != nil {
		t.Fatalf("Inv: %v", err)
	}
	if got := inv.Mul(seven); !got.IsOne() {
		t.Errorf("7^-1 * 7 = %s, want 1", got)
	}
}

func TestFieldInverseOfZero(t *testing.T) {
	f := testField(t)
	if _, err := f.Zero().Inv(); err == nil {
		t.Error("expected error inverting zero")
	}
}

func TestFieldNormalization(t *testing.T) {
	f := testField(t)
	over := f.NewElement(big.NewInt(3221225473 + 5))
	if got := over.Big().Int64(); got != 5 {
		t.Errorf("NewElement(p+5) = %d, want 5", got)
	}
	neg := f.NewElementFromInt64(-1)
	if neg.Big().Sign() < 0 || neg.Big().Cmp(f.Modulus()) >= 0 {
		t.Errorf("negative element not normalized into [0,p): %s", neg)
	}
}

func TestFieldExp(t *testing.T) {
	f := testField(t)
	two := f.NewElementFromInt64(2)
	got := two.Exp(big.NewInt(10))
	if got.Big().Int64() != 1024 {
		t.Errorf("2^10 = %s, want 1024", got)
	}
}

func TestFieldDiv(t *testing.T) {
	f := testField(t)
	a := f.NewElementFromInt64(35)
	b := f.NewElementFromInt64(5)
	q, err := a.Div(b)
	if err != nil {
		t.Fatalf("Div: %v", err)
	}
	if q.Big().Int64() != 7 {
		t.Errorf("35/5 = %s, want 7", q)
	}
}

func TestFieldBytesRoundTrip(t *testing.T) {
	f := testField(t)
	for _, v := range []int64{0, 1, 5, 3221225472} {
		elem := f.NewElementFromInt64(v)
		data := elem.Bytes(4)
		back := FieldElementFromLittleEndian(f, data)
		if !back.Equal(elem) {
			t.Errorf("round trip for %d: got %s", v, back)
		}
	}
}

// TestGeneratorOrder checks that 5 generates the full multiplicative group:
// its order must divide p-1 = 3*2^30 and must not be a proper divisor's
// worth short, i.e. 5^((p-1)/2) != 1 and 5^((p-1)/3) != 1.
func TestGeneratorOrder(t *testing.T) {
	f := testField(t)
	gen := f.NewElementFromInt64(5)
	pMinusOne := new(big.Int).Sub(f.Modulus(), big.NewInt(1))

	half := new(big.Int).Div(pMinusOne, big.NewInt(2))
	if gen.Exp(half).IsOne() {
		t.Error("5^((p-1)/2) == 1, generator has order dividing (p-1)/2")
	}
	third := new(big.Int).Div(pMinusOne, big.NewInt(3))
	if gen.Exp(third).IsOne() {
		t.Error("5^((p-1)/3) == 1, generator has order dividing (p-1)/3")
	}
	if full := gen.Exp(pMinusOne); !full.IsOne() {
		t.Errorf("5^(p-1) = %s, want 1 (Fermat's little theorem)", full)
	}
}

func TestSubgroupOfOrder1024(t *testing.T) {
	f := testField(t)
	pMinusOne := new(big.Int).Sub(f.Modulus(), big.NewInt(1))
	exp := new(big.Int).Div(pMinusOne, big.NewInt(1024))
	g := f.NewElementFromInt64(5).Exp(exp)

	if got := g.Exp(big.NewInt(1024)); !got.IsOne() {
		t.Errorf("g^1024 = %s, want 1", got)
	}
	if got := g.Exp(big.NewInt(512)); got.IsOne() {
		t.Error("g^512 == 1, g does not have order 1024")
	}
}
