package core

import (
	"testing"
)

func polyEqual(t *testing.T, got, want *Polynomial) bool {
	t.Helper()
	if got.Degree() != want.Degree() {
		return false
	}
	n := want.Degree() + 1
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		if !got.Coefficient(i).Equal(want.Coefficient(i)) {
			return false
		}
	}
	return true
}

// TestPolynomialDivMod checks that (x^9 - 5x + 4) / (x^2 + 1) has quotient
// [0,-1,0,1,0,-1,0,1] and remainder [4,-4] (ascending-degree coefficients).
func TestPolynomialDivMod(t *testing.T) {
	f := testField(t)

	dividend := NewPolynomialFromInt64(f, []int64{4, -5, 0, 0, 0, 0, 0, 0, 0, 1})
	divisor := NewPolynomialFromInt64(f, []int64{1, 0, 1})

	q, r, err := dividend.Div(divisor)
	if err != nil {
		t.Fatalf("Div: %v", err)
	}

	wantQ := NewPolynomialFromInt64(f, []int64{0, -1, 0, 1, 0, -1, 0, 1})
	wantR := NewPolynomialFromInt64(f, []int64{4, -4})

	if !polyEqual(t, q, wantQ) {
		t.Errorf("quotient = %s, want %s", q, wantQ)
	}
	if !polyEqual(t, r, wantR) {
		t.Errorf("remainder = %s, want %s", r, wantR)
	}

	// Invariant: q*divisor + r == dividend.
	recombined := q.Mul(divisor).Add(r)
	if !polyEqual(t, recombined, dividend) {
		t.Errorf("q*divisor+r = %s, want dividend %s", recombined, dividend)
	}
	if r.Degree() >= divisor.Degree() {
		t.Errorf("deg(remainder)=%d not < deg(divisor)=%d", r.Degree(), divisor.Degree())
	}
}

// TestPolynomialDivModExact checks the zero-remainder case used throughout
// the AIR constraint quotients.
func TestPolynomialDivModExact(t *testing.T) {
	f := testField(t)
	// (x-1)(x+1) = x^2 - 1, dividing by (x-1) must leave zero remainder.
	dividend := NewPolynomialFromInt64(f, []int64{-1, 0, 1})
	divisor := NewPolynomialFromInt64(f, []int64{-1, 1})

	q, r, err := dividend.Div(divisor)
	if err != nil {
		t.Fatalf("Div: %v", err)
	}
	if !r.IsZero() {
		t.Errorf("remainder = %s, want zero", r)
	}
	want := NewPolynomialFromInt64(f, []int64{1, 1})
	if !polyEqual(t, q, want) {
		t.Errorf("quotient = %s, want %s", q, want)
	}
}

func TestPolynomialEvalHorner(t *testing.T) {
	f := testField(t)
	// p(x) = 1 + 2x + 3x^2, p(2) = 1+4+12 = 17.
	p := NewPolynomialFromInt64(f, []int64{1, 2, 3})
	got := p.Eval(f.NewElementFromInt64(2))
	if got.Big().Int64() != 17 {
		t.Errorf("p(2) = %s, want 17", got)
	}
}

func TestPolynomialCompose(t *testing.T) {
	f := testField(t)
	// p(x) = x^2, g(x) = x+1. p(g(x)) = (x+1)^2 = x^2+2x+1.
	p := NewPolynomialFromInt64(f, []int64{0, 0, 1})
	g := NewPolynomialFromInt64(f, []int64{1, 1})
	got := p.Compose(g)
	want := NewPolynomialFromInt64(f, []int64{1, 2, 1})
	if !polyEqual(t, got, want) {
		t.Errorf("p(g(x)) = %s, want %s", got, want)
	}
}

func TestPolynomialPow(t *testing.T) {
	f := testField(t)
	// (x+1)^3 = x^3 + 3x^2 + 3x + 1.
	base := NewPolynomialFromInt64(f, []int64{1, 1})
	got := base.Pow(3)
	want := NewPolynomialFromInt64(f, []int64{1, 3, 3, 1})
	if !polyEqual(t, got, want) {
		t.Errorf("(x+1)^3 = %s, want %s", got, want)
	}
}

func TestPolynomialDegreeOfZero(t *testing.T) {
	f := testField(t)
	zero := NewPolynomialFromInt64(f, []int64{0, 0, 0})
	if got := zero.Degree(); got != -1 {
		t.Errorf("deg(0) = %d, want -1", got)
	}
	if !zero.IsZero() {
		t.Error("IsZero() = false for the zero polynomial")
	}
}

func TestPolynomialTrimsTrailingZeros(t *testing.T) {
	f := testField(t)
	p := NewPolynomialFromInt64(f, []int64{1, 2, 0, 0})
	if got := p.Degree(); got != 1 {
		t.Errorf("degree = %d, want 1 after trimming trailing zeros", got)
	}
}

// TestLagrangeInterpolation checks that interpolating then
// evaluating at each x-point reproduces the y-point.
func TestLagrangeInterpolation(t *testing.T) {
	f := testField(t)
	xs := []int64{1, 2, 3, 4, 5}
	ys := []int64{1, 4, 9, 16, 25} // y = x^2

	points := make([]Point, len(xs))
	for i := range xs {
		points[i] = NewPoint(f.NewElementFromInt64(xs[i]), f.NewElementFromInt64(ys[i]))
	}

	poly, err := LagrangeInterpolation(f, points)
	if err != nil {
		t.Fatalf("LagrangeInterpolation: %v", err)
	}

	for i, x := range xs {
		got := poly.Eval(f.NewElementFromInt64(x))
		if got.Big().Int64() != ys[i] {
			t.Errorf("P(%d) = %s, want %d", x, got, ys[i])
		}
	}
	if poly.Degree() > len(points)-1 {
		t.Errorf("interpolated degree %d exceeds n-1=%d", poly.Degree(), len(points)-1)
	}
}

// TestLagrangeInterpolationLarger exercises interpolation at a point count
// past the toy range: 101 nodes, values from a fixed cubic-ish map, then
// evaluation back at every node.
func TestLagrangeInterpolationLarger(t *testing.T) {
	f := testField(t)
	const n = 101
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		x := int64(i + 1)
		y := x*x*x + 2*x + 7
		points[i] = NewPoint(f.NewElementFromInt64(x), f.NewElementFromInt64(y))
	}

	poly, err := LagrangeInterpolation(f, points)
	if err != nil {
		t.Fatalf("LagrangeInterpolation: %v", err)
	}
	if poly.Degree() > n-1 {
		t.Fatalf("interpolated degree %d exceeds n-1=%d", poly.Degree(), n-1)
	}
	for i, pt := range points {
		if got := poly.Eval(pt.X); !got.Equal(pt.Y) {
			t.Errorf("P(x_%d) = %s, want %s", i, got, pt.Y)
		}
	}
}

func TestRandomPolynomialDegreeBound(t *testing.T) {
	f := testField(t)
	p, err := RandomPolynomial(f, 5)
	if err != nil {
		t.Fatalf("RandomPolynomial: %v", err)
	}
	if p.Degree() > 5 {
		t.Errorf("degree = %d, want <= 5", p.Degree())
	}
	if _, err := RandomPolynomial(f, -1); err == nil {
		t.Error("expected error for negative degree")
	}
}

func TestLagrangeInterpolationRejectsDuplicateX(t *testing.T) {
	f := testField(t)
	points := []Point{
		NewPoint(f.NewElementFromInt64(1), f.NewElementFromInt64(1)),
		NewPoint(f.NewElementFromInt64(1), f.NewElementFromInt64(2)),
	}
	if _, err := LagrangeInterpolation(f, points); err == nil {
		t.Error("expected error for duplicate x-coordinate")
	}
}
