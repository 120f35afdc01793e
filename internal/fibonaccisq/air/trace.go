// Package air builds the FibonacciSq execution trace, its evaluation
// domains, and the algebraic intermediate representation (AIR) constraints
// that the trace must satisfy.
package air

import (
	"fmt"
	"math/big"
	"runtime"
	"sync"

	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/core"
)

// Trace holds the FibonacciSq execution trace together with the
// subgroup/coset domains it is interpolated and low-degree-extended over.
type Trace struct {
	field *core.Field

	// Values is the 1023-element trace: a0=1, a1=3141592,
	// a_i = a_{i-2}^2 + a_{i-1}^2.
	Values []*core.FieldElement

	// G is the order-1024 subgroup the trace is indexed by (only the
	// first 1023 points carry trace values; G[1023] = g^1023 carries none,
	// and g^1024 = 1 closes the cycle).
	G []*core.FieldElement
	// GGenerator generates G.
	GGenerator *core.FieldElement

	// EvalDomain is the order-8192 coset CosetOffset*H, where H is the
	// order-8192 subgroup; the low-degree extension is evaluated here.
	EvalDomain []*core.FieldElement
	// HGenerator generates the order-8192 subgroup H.
	HGenerator *core.FieldElement

	// Poly is the unique degree<1023 polynomial interpolating the trace
	// over G[0:1023].
	Poly *core.Polynomial

	// Eval is Poly evaluated over EvalDomain (the trace LDE).
	Eval []*core.FieldElement

	// Merkle commits to Eval.
	Merkle *core.MerkleTree
}

// BuildTrace computes the FibonacciSq trace, its domains, its low-degree
// extension, and a Merkle commitment to that extension.
func BuildTrace(field *core.Field, traceLength, groupOrder, domainOrder int, cosetOffset *core.FieldElement) (*Trace, error) {
	values := make([]*core.FieldElement, traceLength)
	values[0] = field.NewElementFromInt64(1)
	values[1] = field.NewElementFromInt64(3141592)
	for i := 2; i < traceLength; i++ {
		values[i] = values[i-2].Square().Add(values[i-1].Square())
	}

	finalValue := field.NewElementFromUint64(2338775057)
	if !values[traceLength-1].Equal(finalValue) {
		return nil, fmt.Errorf("trace final value %s does not equal the claimed %s", values[traceLength-1], finalValue)
	}

	gGen, err := subgroupGenerator(field, groupOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to find order-%d subgroup generator: %w", groupOrder, err)
	}
	g := make([]*core.FieldElement, groupOrder)
	acc := field.One()
	for i := 0; i < groupOrder; i++ {
		g[i] = acc
		acc = acc.Mul(gGen)
	}

	hGen, err := subgroupGenerator(field, domainOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to find order-%d subgroup generator: %w", domainOrder, err)
	}
	evalDomain := make([]*core.FieldElement, domainOrder)
	acc = field.One()
	for i := 0; i < domainOrder; i++ {
		evalDomain[i] = cosetOffset.Mul(acc)
		acc = acc.Mul(hGen)
	}

	points := make([]core.Point, traceLength)
	for i := 0; i < traceLength; i++ {
		points[i] = core.NewPoint(g[i], values[i])
	}
	poly, err := core.LagrangeInterpolation(field, points)
	if err != nil {
		return nil, fmt.Errorf("failed to interpolate trace polynomial: %w", err)
	}

	evalValues := evalOverDomain(poly, evalDomain)

	tree, err := core.NewMerkleTree(evalValues)
	if err != nil {
		return nil, fmt.Errorf("failed to commit trace evaluation: %w", err)
	}

	return &Trace{
		field:      field,
		Values:     values,
		G:          g,
		GGenerator: gGen,
		EvalDomain: evalDomain,
		HGenerator: hGen,
		Poly:       poly,
		Eval:       evalValues,
		Merkle:     tree,
	}, nil
}

// evalOverDomain evaluates poly at every point of domain, fanning the work
// out across NumCPU workers in index chunks. Each worker writes its
// results by index, so the output is identical to a sequential evaluation.
func evalOverDomain(poly *core.Polynomial, domain []*core.FieldElement) []*core.FieldElement {
	n := len(domain)
	results := make([]*core.FieldElement, n)

	numWorkers := runtime.NumCPU()
	if numWorkers > n {
		numWorkers = n
	}
	chunkSize := (n + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			start := workerID * chunkSize
			if start >= n {
				return
			}
			end := start + chunkSize
			if end > n {
				end = n
			}

			for i := start; i < end; i++ {
				results[i] = poly.Eval(domain[i])
			}
		}(w)
	}
	wg.Wait()

	return results
}

// DomainGenerator returns a generator of the unique subgroup of order n,
// exported so the verifier can independently rebuild the same evaluation
// domain the prover used.
func DomainGenerator(field *core.Field, n int) (*core.FieldElement, error) {
	return subgroupGenerator(field, n)
}

// subgroupGenerator returns a generator of the unique subgroup of order n
// in the multiplicative group of field, computed as 5^((p-1)/n) with
// core.DefaultGenerator, assuming (p-1) % n == 0.
func subgroupGenerator(field *core.Field, n int) (*core.FieldElement, error) {
	modMinusOne := new(big.Int).Sub(field.Modulus(), big.NewInt(1))
	nBig := big.NewInt(int64(n))
	quotient, remainder := new(big.Int).QuoRem(modMinusOne, nBig, new(big.Int))
	if remainder.Sign() != 0 {
		return nil, fmt.Errorf("order %d does not divide the multiplicative group order", n)
	}
	return core.DefaultGenerator.Exp(quotient), nil
}
