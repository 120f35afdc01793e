// Package core implements the prime-field and polynomial algebra the
// FibonacciSq STARK is built on.
package core

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Field represents a finite field with modular arithmetic operations.
type Field struct {
	modulus *big.Int
}

// FieldElement represents an element in the finite field.
type FieldElement struct {
	field *Field
	value *big.Int
}

// NewField creates a new finite field with the given modulus.
func NewField(modulus *big.Int) (*Field, error) {
	if modulus.Cmp(big.NewInt(2)) <= 0 {
		return nil, fmt.Errorf("modulus must be greater than 2")
	}
	return &Field{modulus: new(big.Int).Set(modulus)}, nil
}

// NewFieldFromUint64 creates a new finite field with the given modulus.
func NewFieldFromUint64(modulus uint64) (*Field, error) {
	return NewField(new(big.Int).SetUint64(modulus))
}

// Modulus returns the field modulus.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// NewElement creates a new field element from a big.Int, reducing modulo p.
func (f *Field) NewElement(value *big.Int) *FieldElement {
	normalized := new(big.Int).Mod(value, f.modulus)
	return &FieldElement{field: f, value: normalized}
}

// NewElementFromInt64 creates a new field element from an int64.
func (f *Field) NewElementFromInt64(value int64) *FieldElement {
	return f.NewElement(big.NewInt(value))
}

// NewElementFromUint64 creates a new field element from a uint64.
func (f *Field) NewElementFromUint64(value uint64) *FieldElement {
	return f.NewElement(new(big.Int).SetUint64(value))
}

// RandomElement generates a uniformly random field element.
func (f *Field) RandomElement() (*FieldElement, error) {
	value, err := rand.Int(rand.Reader, f.modulus)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random element: %w", err)
	}
	return f.NewElement(value), nil
}

// Zero returns the additive identity.
func (f *Field) Zero() *FieldElement {
	return f.NewElement(big.NewInt(0))
}

// One returns the multiplicative identity.
func (f *Field) One() *FieldElement {
	return f.NewElement(big.NewInt(1))
}

// Equals reports whether two fields share the same modulus.
func (f *Field) Equals(other *Field) bool {
	return f.modulus.Cmp(other.modulus) == 0
}

// Big returns the value as a big.Int.
func (fe *FieldElement) Big() *big.Int {
	return new(big.Int).Set(fe.value)
}

// Field returns the field this element belongs to.
func (fe *FieldElement) Field() *Field {
	return fe.field
}

// Add performs field addition.
func (fe *FieldElement) Add(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot add elements from different fields")
	}
	return fe.field.NewElement(new(big.Int).Add(fe.value, other.value))
}

// Sub performs field subtraction.
func (fe *FieldElement) Sub(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot subtract elements from different fields")
	}
	return fe.field.NewElement(new(big.Int).Sub(fe.value, other.value))
}

// Neg returns the additive inverse of the field element.
func (fe *FieldElement) Neg() *FieldElement {
	return fe.field.NewElement(new(big.Int).Neg(fe.value))
}

// Mul performs field multiplication.
func (fe *FieldElement) Mul(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot multiply elements from different fields")
	}
	return fe.field.NewElement(new(big.Int).Mul(fe.value, other.value))
}

// Div performs field division (multiplication by the inverse).
func (fe *FieldElement) Div(other *FieldElement) (*FieldElement, error) {
	if !fe.field.Equals(other.field) {
		return nil, fmt.Errorf("cannot divide elements from different fields")
	}
	inv, err := other.Inv()
	if err != nil {
		return nil, fmt.Errorf("division failed: %w", err)
	}
	return fe.Mul(inv), nil
}

// Inv computes the multiplicative inverse via the extended Euclidean algorithm.
func (fe *FieldElement) Inv() (*FieldElement, error) {
	if fe.IsZero() {
		return nil, fmt.Errorf("cannot compute inverse of zero")
	}

	gcd := new(big.Int)
	x := new(big.Int)
	y := new(big.Int)
	gcd.GCD(x, y, fe.value, fe.field.modulus)

	if gcd.Cmp(big.NewInt(1)) != 0 {
		return nil, fmt.Errorf("inverse does not exist")
	}

	if x.Sign() < 0 {
		x.Add(x, fe.field.modulus)
	}

	return fe.field.NewElement(x), nil
}

// Exp performs field exponentiation by a non-negative big.Int exponent.
func (fe *FieldElement) Exp(exponent *big.Int) *FieldElement {
	result := new(big.Int).Exp(fe.value, exponent, fe.field.modulus)
	return fe.field.NewElement(result)
}

// Square computes the square of the field element.
func (fe *FieldElement) Square() *FieldElement {
	return fe.Mul(fe)
}

// LessThan reports whether this element's canonical value is less than other's.
func (fe *FieldElement) LessThan(other *FieldElement) bool {
	return fe.value.Cmp(other.value) < 0
}

// Equal reports whether two field elements are equal.
func (fe *FieldElement) Equal(other *FieldElement) bool {
	if !fe.field.Equals(other.field) {
		return false
	}
	return fe.value.Cmp(other.value) == 0
}

// IsZero reports whether the element is zero.
func (fe *FieldElement) IsZero() bool {
	return fe.value.Sign() == 0
}

// IsOne reports whether the element is one.
func (fe *FieldElement) IsOne() bool {
	return fe.value.Cmp(big.NewInt(1)) == 0
}

// String returns the canonical decimal representation of the field element.
func (fe *FieldElement) String() string {
	return fe.value.String()
}

// Bytes returns the canonical little-endian byte representation of the
// field element, fixed to byteLen bytes (left-padded with zeros, truncated
// of leading zeros above byteLen — the modulus here never needs more).
func (fe *FieldElement) Bytes(byteLen int) []byte {
	out := make([]byte, byteLen)
	b := fe.value.Bytes() // big-endian, minimal length
	for i := 0; i < len(b) && i < byteLen; i++ {
		out[i] = b[len(b)-1-i]
	}
	return out
}

// FieldElementFromLittleEndian reconstructs a field element from its
// fixed-width little-endian byte representation.
func FieldElementFromLittleEndian(f *Field, data []byte) *FieldElement {
	be := make([]byte, len(data))
	for i, b := range data {
		be[len(data)-1-i] = b
	}
	return f.NewElement(new(big.Int).SetBytes(be))
}

// Default prime field for the FibonacciSq statement: p = 3*2^30 + 1.
var (
	// DefaultPrimeField is the fixed field this statement is defined over.
	DefaultPrimeField, _ = NewFieldFromUint64(3221225473)
	// DefaultGenerator is a generator of DefaultPrimeField's multiplicative group.
	DefaultGenerator = DefaultPrimeField.NewElementFromInt64(5)
)
