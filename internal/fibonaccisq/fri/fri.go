// Package fri implements the FRI (Fast Reed-Solomon Interactive Oracle
// Proof of Proximity) folding commitment used to prove the composition
// polynomial is close to low-degree.
package fri

import (
	"fmt"

	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/channel"
	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/core"
)

// Layer is one step of the FRI commitment: a domain, the polynomial's
// evaluation over that domain, and a Merkle commitment to that evaluation.
type Layer struct {
	Domain []*core.FieldElement
	Eval   []*core.FieldElement
	Merkle *core.MerkleTree
}

// Proof is the full FRI commitment: the initial (already committed) layer
// plus one committed Layer per folding round, the polynomial behind each
// layer, and the final layer's constant value, which is also sent directly.
type Proof struct {
	Layers      []Layer
	Polynomials []*core.Polynomial
	FinalValue  *core.FieldElement
}

// FoldDomain halves a domain by squaring its first half: the standard FRI
// domain-folding step, since x and -x map to the same x^2.
func FoldDomain(domain []*core.FieldElement) []*core.FieldElement {
	half := len(domain) / 2
	next := make([]*core.FieldElement, half)
	for i := 0; i < half; i++ {
		next[i] = domain[i].Square()
	}
	return next
}

// FoldPolynomial folds a polynomial P(x) = E(x^2) + x*O(x^2) into
// Q(x) = E(x) + beta*O(x), halving its degree.
func FoldPolynomial(p *core.Polynomial, beta *core.FieldElement) *core.Polynomial {
	field := p.Field()
	coeffs := p.Coefficients()

	evenCount := (len(coeffs) + 1) / 2
	oddCount := len(coeffs) / 2
	evenCoeffs := make([]*core.FieldElement, evenCount)
	oddCoeffs := make([]*core.FieldElement, oddCount)
	for i := 0; i < len(coeffs); i++ {
		if i%2 == 0 {
			evenCoeffs[i/2] = coeffs[i]
		} else {
			oddCoeffs[i/2] = coeffs[i]
		}
	}

	even := core.NewPolynomial(field, evenCoeffs)
	odd := core.NewPolynomial(field, oddCoeffs)
	return even.Add(odd.MulScalar(beta))
}

// FoldEval folds an evaluation vector over the given (pre-fold) domain,
// matching FoldPolynomial without needing the polynomial's coefficients:
// for each i in [0, len(domain)/2), combine the values at i and i+half.
func FoldEval(evalValues []*core.FieldElement, domain []*core.FieldElement, beta *core.FieldElement) []*core.FieldElement {
	field := domain[0].Field()
	half := len(evalValues) / 2
	two := field.NewElementFromInt64(2)
	next := make([]*core.FieldElement, half)
	for i := 0; i < half; i++ {
		v, vSib := evalValues[i], evalValues[i+half]
		sum, _ := v.Add(vSib).Div(two)
		twoX := two.Mul(domain[i])
		diff, _ := v.Sub(vSib).Div(twoX)
		next[i] = sum.Add(beta.Mul(diff))
	}
	return next
}

// Commit runs the FRI folding commitment loop: starting from the already
// committed first layer (the composition polynomial, its evaluation
// domain, evaluation vector, and Merkle tree, whose root the caller has
// sent), repeatedly receive a fresh beta, fold, and commit the folded
// layer's Merkle root, until the polynomial is constant. The final layer's
// constant value is then sent directly.
func Commit(ch *channel.Channel, poly *core.Polynomial, domain, eval []*core.FieldElement, tree *core.MerkleTree, finalLayerSize int) (*Proof, error) {
	proof := &Proof{
		Layers:      []Layer{{Domain: domain, Eval: eval, Merkle: tree}},
		Polynomials: []*core.Polynomial{poly},
	}
	curPoly := poly
	curDomain := domain
	curEval := eval

	for curPoly.Degree() > 0 {
		beta := ch.ReceiveField(curPoly.Field())

		nextEval := FoldEval(curEval, curDomain, beta)
		curPoly = FoldPolynomial(curPoly, beta)
		curDomain = FoldDomain(curDomain)
		curEval = nextEval

		layerTree, err := core.NewMerkleTree(curEval)
		if err != nil {
			return nil, fmt.Errorf("fri: failed to commit layer %d: %w", len(proof.Layers), err)
		}
		ch.SendRoot(layerTree.Root())

		proof.Layers = append(proof.Layers, Layer{Domain: curDomain, Eval: curEval, Merkle: layerTree})
		proof.Polynomials = append(proof.Polynomials, curPoly)
	}

	if len(curEval) != finalLayerSize {
		return nil, fmt.Errorf("fri: final layer has length %d, want %d", len(curEval), finalLayerSize)
	}
	if !allEqual(curEval) {
		return nil, fmt.Errorf("fri: final layer is not constant")
	}

	proof.FinalValue = curEval[0]
	ch.SendFieldElement(proof.FinalValue, 8)

	return proof, nil
}

func allEqual(values []*core.FieldElement) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values[1:] {
		if !v.Equal(values[0]) {
			return false
		}
	}
	return true
}

// Query is the decommitment of one FRI query index: for each layer, the
// value at that index, its sibling value, and both of their authentication
// paths.
type Query struct {
	// LayerValues[i], LayerSiblings[i] are the evaluations at index and
	// index's sibling (index XOR half) in layer i.
	LayerValues   []*core.FieldElement
	LayerSiblings []*core.FieldElement
	ValueProofs   [][][]byte
	SiblingProofs [][][]byte
}

// Decommit builds the query decommitment for index idx (an index into the
// first FRI layer's domain).
func Decommit(proof *Proof, idx int) (*Query, error) {
	q := &Query{}
	id := idx
	for i, layer := range proof.Layers[:len(proof.Layers)-1] {
		length := len(layer.Eval)
		sibID := (id + length/2) % length

		q.LayerValues = append(q.LayerValues, layer.Eval[id])
		q.LayerSiblings = append(q.LayerSiblings, layer.Eval[sibID])

		valueProof, err := layer.Merkle.Proof(id)
		if err != nil {
			return nil, fmt.Errorf("fri: failed to build proof for layer %d index %d: %w", i, id, err)
		}
		siblingProof, err := layer.Merkle.Proof(sibID)
		if err != nil {
			return nil, fmt.Errorf("fri: failed to build proof for layer %d sibling %d: %w", i, sibID, err)
		}
		q.ValueProofs = append(q.ValueProofs, valueProof)
		q.SiblingProofs = append(q.SiblingProofs, siblingProof)

		id = id % (length / 2)
	}
	return q, nil
}
