package core

import (
	"fmt"
	"math/big"
	"strings"
)

// Polynomial represents a dense univariate polynomial over a Field, stored
// as coefficients in ascending degree order (coefficients[i] is the
// coefficient of x^i).
type Polynomial struct {
	coefficients []*FieldElement
	field        *Field
}

// NewPolynomial creates a polynomial from coefficients, trimming trailing
// zero (highest-degree) coefficients.
func NewPolynomial(field *Field, coefficients []*FieldElement) *Polynomial {
	trimmed := trimTrailingZeros(coefficients)
	return &Polynomial{coefficients: trimmed, field: field}
}

// NewPolynomialFromInt64 builds a polynomial from plain int64 coefficients.
func NewPolynomialFromInt64(field *Field, coefficients []int64) *Polynomial {
	elements := make([]*FieldElement, len(coefficients))
	for i, c := range coefficients {
		elements[i] = field.NewElementFromInt64(c)
	}
	return NewPolynomial(field, elements)
}

// NewPolynomialFromBigInt builds a polynomial from big.Int coefficients.
func NewPolynomialFromBigInt(field *Field, coefficients []*big.Int) *Polynomial {
	elements := make([]*FieldElement, len(coefficients))
	for i, c := range coefficients {
		elements[i] = field.NewElement(c)
	}
	return NewPolynomial(field, elements)
}

func trimTrailingZeros(coefficients []*FieldElement) []*FieldElement {
	last := len(coefficients) - 1
	for last > 0 && coefficients[last].IsZero() {
		last--
	}
	if last < 0 {
		return []*FieldElement{}
	}
	return coefficients[:last+1]
}

// Degree returns the degree of the polynomial. The zero polynomial has
// degree -1.
func (p *Polynomial) Degree() int {
	if len(p.coefficients) == 0 || (len(p.coefficients) == 1 && p.coefficients[0].IsZero()) {
		return -1
	}
	return len(p.coefficients) - 1
}

// Field returns the field the polynomial is defined over.
func (p *Polynomial) Field() *Field {
	return p.field
}

// Coefficient returns the coefficient of x^i, or zero if i is out of range.
func (p *Polynomial) Coefficient(i int) *FieldElement {
	if i < 0 || i >= len(p.coefficients) {
		return p.field.Zero()
	}
	return p.coefficients[i]
}

// LeadingCoefficient returns the coefficient of the highest-degree term.
func (p *Polynomial) LeadingCoefficient() *FieldElement {
	if len(p.coefficients) == 0 {
		return p.field.Zero()
	}
	return p.coefficients[len(p.coefficients)-1]
}

// Coefficients returns a copy of the coefficient slice, ascending degree.
func (p *Polynomial) Coefficients() []*FieldElement {
	out := make([]*FieldElement, len(p.coefficients))
	copy(out, p.coefficients)
	return out
}

// IsZero reports whether the polynomial is identically zero.
func (p *Polynomial) IsZero() bool {
	return p.Degree() == -1
}

// Point is an (x, y) evaluation pair used for interpolation.
type Point struct {
	X *FieldElement
	Y *FieldElement
}

// NewPoint constructs a Point.
func NewPoint(x, y *FieldElement) Point {
	return Point{X: x, Y: y}
}

// Eval evaluates the polynomial at x using Horner's method.
func (p *Polynomial) Eval(x *FieldElement) *FieldElement {
	result := p.field.Zero()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(p.coefficients[i])
	}
	return result
}

// Add returns p + other.
func (p *Polynomial) Add(other *Polynomial) *Polynomial {
	n := len(p.coefficients)
	if len(other.coefficients) > n {
		n = len(other.coefficients)
	}
	result := make([]*FieldElement, n)
	for i := 0; i < n; i++ {
		result[i] = p.Coefficient(i).Add(other.Coefficient(i))
	}
	return NewPolynomial(p.field, result)
}

// Sub returns p - other.
func (p *Polynomial) Sub(other *Polynomial) *Polynomial {
	n := len(p.coefficients)
	if len(other.coefficients) > n {
		n = len(other.coefficients)
	}
	result := make([]*FieldElement, n)
	for i := 0; i < n; i++ {
		result[i] = p.Coefficient(i).Sub(other.Coefficient(i))
	}
	return NewPolynomial(p.field, result)
}

// Mul returns p * other.
func (p *Polynomial) Mul(other *Polynomial) *Polynomial {
	if p.IsZero() || other.IsZero() {
		return NewPolynomial(p.field, []*FieldElement{p.field.Zero()})
	}
	result := make([]*FieldElement, len(p.coefficients)+len(other.coefficients)-1)
	for i := range result {
		result[i] = p.field.Zero()
	}
	for i, a := range p.coefficients {
		if a.IsZero() {
			continue
		}
		for j, b := range other.coefficients {
			result[i+j] = result[i+j].Add(a.Mul(b))
		}
	}
	return NewPolynomial(p.field, result)
}

// MulScalar returns p scaled by a field element.
func (p *Polynomial) MulScalar(scalar *FieldElement) *Polynomial {
	result := make([]*FieldElement, len(p.coefficients))
	for i, c := range p.coefficients {
		result[i] = c.Mul(scalar)
	}
	return NewPolynomial(p.field, result)
}

// Pow raises the polynomial to a non-negative integer power via
// square-and-multiply.
func (p *Polynomial) Pow(exponent int) *Polynomial {
	result := NewPolynomial(p.field, []*FieldElement{p.field.One()})
	base := p
	e := exponent
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		e >>= 1
	}
	return result
}

// Compose returns p(inner(x)), evaluated via Horner's method over
// polynomial coefficients.
func (p *Polynomial) Compose(inner *Polynomial) *Polynomial {
	result := NewPolynomial(p.field, []*FieldElement{p.field.Zero()})
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		result = result.Mul(inner)
		constTerm := NewPolynomial(p.field, []*FieldElement{p.coefficients[i]})
		result = result.Add(constTerm)
	}
	return result
}

// Div performs polynomial long division, returning quotient and remainder
// such that p = quotient*other + remainder.
func (p *Polynomial) Div(other *Polynomial) (quotient, remainder *Polynomial, err error) {
	if other.IsZero() {
		return nil, nil, fmt.Errorf("division by zero polynomial")
	}

	remCoeffs := p.Coefficients()
	degOther := other.Degree()
	leadInv, err := other.LeadingCoefficient().Inv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to invert leading coefficient: %w", err)
	}

	quotDeg := p.Degree() - degOther
	if quotDeg < 0 {
		return NewPolynomial(p.field, []*FieldElement{p.field.Zero()}), NewPolynomial(p.field, remCoeffs), nil
	}

	quotCoeffs := make([]*FieldElement, quotDeg+1)
	for i := range quotCoeffs {
		quotCoeffs[i] = p.field.Zero()
	}

	for degRem := len(remCoeffs) - 1; degRem >= degOther; degRem-- {
		if remCoeffs[degRem].IsZero() {
			continue
		}
		coeff := remCoeffs[degRem].Mul(leadInv)
		shift := degRem - degOther
		quotCoeffs[shift] = coeff
		for j := 0; j <= degOther; j++ {
			remCoeffs[shift+j] = remCoeffs[shift+j].Sub(coeff.Mul(other.Coefficient(j)))
		}
	}

	return NewPolynomial(p.field, quotCoeffs), NewPolynomial(p.field, remCoeffs), nil
}

// String renders the polynomial in ascending-degree form for debugging.
func (p *Polynomial) String() string {
	if p.IsZero() {
		return "0"
	}
	var sb strings.Builder
	first := true
	for i, c := range p.coefficients {
		if c.IsZero() {
			continue
		}
		if !first {
			sb.WriteString(" + ")
		}
		first = false
		fmt.Fprintf(&sb, "%s*x^%d", c.String(), i)
	}
	return sb.String()
}

// Clone returns a deep copy of the polynomial.
func (p *Polynomial) Clone() *Polynomial {
	return NewPolynomial(p.field, p.Coefficients())
}

// RandomPolynomial samples a polynomial of degree at most deg, each
// coefficient drawn uniformly from the field.
func RandomPolynomial(field *Field, deg int) (*Polynomial, error) {
	if deg < 0 {
		return nil, fmt.Errorf("degree must be non-negative")
	}
	coefficients := make([]*FieldElement, deg+1)
	for i := range coefficients {
		c, err := field.RandomElement()
		if err != nil {
			return nil, fmt.Errorf("failed to sample coefficient %d: %w", i, err)
		}
		coefficients[i] = c
	}
	return NewPolynomial(field, coefficients), nil
}

// LagrangeInterpolation builds the unique minimal-degree polynomial passing
// through the given points, using the factored-product/basis-polynomial
// method.
func LagrangeInterpolation(field *Field, points []Point) (*Polynomial, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("cannot interpolate with zero points")
	}

	numerator := NewPolynomial(field, []*FieldElement{field.One()})
	for _, pt := range points {
		term := NewPolynomial(field, []*FieldElement{pt.X.Neg(), field.One()})
		numerator = numerator.Mul(term)
	}

	result := NewPolynomial(field, []*FieldElement{field.Zero()})
	for i, pi := range points {
		denom := field.One()
		for j, pj := range points {
			if i == j {
				continue
			}
			diff := pi.X.Sub(pj.X)
			if diff.IsZero() {
				return nil, fmt.Errorf("duplicate x coordinate in interpolation points: %s", pi.X.String())
			}
			denom = denom.Mul(diff)
		}

		linear := NewPolynomial(field, []*FieldElement{pi.X.Neg(), field.One()})
		basisNumerator, remainder, err := numerator.Div(linear)
		if err != nil {
			return nil, fmt.Errorf("failed to divide out basis term: %w", err)
		}
		if !remainder.IsZero() {
			return nil, fmt.Errorf("unexpected non-zero remainder while building basis polynomial")
		}

		denomInv, err := denom.Inv()
		if err != nil {
			return nil, fmt.Errorf("failed to invert basis denominator: %w", err)
		}

		coeff := pi.Y.Mul(denomInv)
		result = result.Add(basisNumerator.MulScalar(coeff))
	}

	return result, nil
}
