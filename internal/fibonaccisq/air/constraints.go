package air

import (
	"fmt"

	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/core"
)

// Composition holds the three boundary/transition constraint quotients for
// the FibonacciSq AIR and their random-linear-combination composition
// polynomial.
type Composition struct {
	field *core.Field

	// P0 enforces f(g^0) = 1, the trace's starting value.
	P0 *core.Polynomial
	// P1 enforces f(g^1022) = 2338775057, the trace's final value.
	P1 *core.Polynomial
	// P2 enforces the FibonacciSq transition relation across the trace.
	P2 *core.Polynomial

	// CP is alpha0*P0 + alpha1*P1 + alpha2*P2, the composition polynomial.
	CP *core.Polynomial

	// Eval is CP evaluated over the trace's evaluation domain.
	Eval []*core.FieldElement

	// Merkle commits to Eval.
	Merkle *core.MerkleTree
}

// BuildComposition derives the three AIR constraint quotient polynomials
// from the trace polynomial and combines them with the given random
// coefficients into a single composition polynomial.
func BuildComposition(trace *Trace, traceLength, groupOrder int, alpha0, alpha1, alpha2 *core.FieldElement) (*Composition, error) {
	field := trace.field
	f := trace.Poly
	g := trace.G

	finalValue := field.NewElementFromUint64(2338775057)

	// p0 = (f(x) - 1) / (x - g^0)
	numerator0 := f.Sub(core.NewPolynomial(field, []*core.FieldElement{field.One()}))
	denom0 := core.NewPolynomial(field, []*core.FieldElement{g[0].Neg(), field.One()})
	p0, remainder0, err := numerator0.Div(denom0)
	if err != nil {
		return nil, fmt.Errorf("failed to build boundary-start constraint: %w", err)
	}
	if !remainder0.IsZero() {
		return nil, fmt.Errorf("boundary-start constraint does not divide evenly: f(g^0) != 1")
	}

	// p1 = (f(x) - finalValue) / (x - g^(traceLength-1))
	lastIndex := traceLength - 1
	numerator1 := f.Sub(core.NewPolynomial(field, []*core.FieldElement{finalValue}))
	denom1 := core.NewPolynomial(field, []*core.FieldElement{g[lastIndex].Neg(), field.One()})
	p1, remainder1, err := numerator1.Div(denom1)
	if err != nil {
		return nil, fmt.Errorf("failed to build boundary-end constraint: %w", err)
	}
	if !remainder1.IsZero() {
		return nil, fmt.Errorf("boundary-end constraint does not divide evenly: f(g^%d) != %s", lastIndex, finalValue.String())
	}

	// p2 = (f(g^2*x) - f(g*x)^2 - f(x)^2) / prod_{i=0}^{traceLength-3} (x - g^i)
	gx := core.NewPolynomial(field, []*core.FieldElement{field.Zero(), g[1]})
	g2x := core.NewPolynomial(field, []*core.FieldElement{field.Zero(), g[2]})
	fOfGx := f.Compose(gx)
	fOfG2x := f.Compose(g2x)
	transitionNumerator := fOfG2x.Sub(fOfGx.Mul(fOfGx)).Sub(f.Mul(f))

	denom2 := core.NewPolynomial(field, []*core.FieldElement{field.One()})
	for i := 0; i <= traceLength-3; i++ {
		term := core.NewPolynomial(field, []*core.FieldElement{g[i].Neg(), field.One()})
		denom2 = denom2.Mul(term)
	}

	// Sanity check the transition numerator vanishes exactly on the
	// domain it should, and is non-zero just past it, before dividing.
	checkZero := transitionNumerator.Eval(g[traceLength-3])
	if !checkZero.IsZero() {
		return nil, fmt.Errorf("transition constraint numerator unexpectedly non-zero at g^%d", traceLength-3)
	}
	checkNonZero := transitionNumerator.Eval(g[traceLength-2])
	if checkNonZero.IsZero() {
		return nil, fmt.Errorf("transition constraint numerator unexpectedly zero at g^%d", traceLength-2)
	}

	p2, remainder2, err := transitionNumerator.Div(denom2)
	if err != nil {
		return nil, fmt.Errorf("failed to build transition constraint: %w", err)
	}
	if !remainder2.IsZero() {
		return nil, fmt.Errorf("transition constraint does not divide evenly")
	}

	cp := p0.MulScalar(alpha0).Add(p1.MulScalar(alpha1)).Add(p2.MulScalar(alpha2))

	if cp.Degree() != traceLength {
		return nil, fmt.Errorf("composition polynomial has unexpected degree %d, want %d", cp.Degree(), traceLength)
	}

	evalValues := evalOverDomain(cp, trace.EvalDomain)

	tree, err := core.NewMerkleTree(evalValues)
	if err != nil {
		return nil, fmt.Errorf("failed to commit composition evaluation: %w", err)
	}

	return &Composition{
		field:  field,
		P0:     p0,
		P1:     p1,
		P2:     p2,
		CP:     cp,
		Eval:   evalValues,
		Merkle: tree,
	}, nil
}
