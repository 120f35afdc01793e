// Package stark orchestrates the FibonacciSq prover and verifier: trace
// construction, constraint composition, FRI commitment, and the
// query-phase decommitment that ties them together.
package stark

import (
	"fmt"

	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/air"
	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/channel"
	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/config"
	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/core"
	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/fri"
)

// ProverOrchestrator runs the four-phase FibonacciSq STARK proving
// pipeline and produces a channel whose tape is the full, replayable proof.
type ProverOrchestrator struct {
	cfg config.Config
}

// NewProverOrchestrator creates a ProverOrchestrator for the given config.
func NewProverOrchestrator(cfg config.Config) *ProverOrchestrator {
	return &ProverOrchestrator{cfg: cfg}
}

// Proof bundles the channel tape, which is all the verifier reads, with the
// trace and FRI structures the prover built along the way. The verifier
// does not use those structures; it rebuilds the evaluation domain itself.
type Proof struct {
	Channel      *channel.Channel
	Trace        *air.Trace
	Composition  *air.Composition
	FRI          *fri.Proof
	QueryIndices []int
	Queries      []*fri.Query
}

// Prove runs the full proving pipeline: trace commitment, constraint
// composition, FRI commitment, and query-phase decommitment. The returned
// channel's tape length is asserted at each phase boundary (1, 5, 26, then
// 26 plus a fixed number of members per query), matching the transcript
// shape this statement fixes.
func (p *ProverOrchestrator) Prove() (*Proof, error) {
	field, err := core.NewFieldFromUint64(p.cfg.FieldModulus)
	if err != nil {
		return nil, fmt.Errorf("prover: failed to construct field: %w", err)
	}

	ch := channel.NewChannelWithHash(channel.HashFunc(p.cfg.HashFunction))

	trace, err := p.commitTrace(ch, field)
	if err != nil {
		return nil, fmt.Errorf("prover: phase 1 (trace commitment) failed: %w", err)
	}
	if err := ch.AssertLen(1); err != nil {
		return nil, fmt.Errorf("prover: phase 1 tape length check failed: %w", err)
	}

	composition, err := p.commitComposition(ch, trace)
	if err != nil {
		return nil, fmt.Errorf("prover: phase 2 (constraint composition) failed: %w", err)
	}
	if err := ch.AssertLen(5); err != nil {
		return nil, fmt.Errorf("prover: phase 2 tape length check failed: %w", err)
	}

	friProof, err := p.commitFRI(ch, trace, composition)
	if err != nil {
		return nil, fmt.Errorf("prover: phase 3 (FRI commitment) failed: %w", err)
	}
	if err := ch.AssertLen(26); err != nil {
		return nil, fmt.Errorf("prover: phase 3 tape length check failed: %w", err)
	}

	indices, queries, err := p.decommitQueries(ch, trace, friProof)
	if err != nil {
		return nil, fmt.Errorf("prover: phase 4 (query decommitment) failed: %w", err)
	}
	membersPerQuery := 1 + 3*2 + (len(friProof.Layers)-1)*4 + 1
	finalLen := 26 + membersPerQuery*p.cfg.NumQueries
	if err := ch.AssertLen(finalLen); err != nil {
		return nil, fmt.Errorf("prover: phase 4 tape length check failed: %w", err)
	}

	return &Proof{
		Channel:      ch,
		Trace:        trace,
		Composition:  composition,
		FRI:          friProof,
		QueryIndices: indices,
		Queries:      queries,
	}, nil
}

// commitTrace is phase 1: build the FibonacciSq trace, its LDE, and send
// the trace's Merkle root.
func (p *ProverOrchestrator) commitTrace(ch *channel.Channel, field *core.Field) (*air.Trace, error) {
	cosetOffset := field.NewElementFromUint64(p.cfg.CosetOffset)
	trace, err := air.BuildTrace(field, p.cfg.TraceLength, p.cfg.TraceLength+1, p.cfg.EvaluationDomainSize, cosetOffset)
	if err != nil {
		return nil, fmt.Errorf("failed to build trace: %w", err)
	}
	ch.SendRoot(trace.Merkle.Root())
	return trace, nil
}

// commitComposition is phase 2: sample the three linear-combination
// coefficients, build the composition polynomial, and send its Merkle
// root.
func (p *ProverOrchestrator) commitComposition(ch *channel.Channel, trace *air.Trace) (*air.Composition, error) {
	field := trace.Poly.Field()
	alpha0 := ch.ReceiveField(field)
	alpha1 := ch.ReceiveField(field)
	alpha2 := ch.ReceiveField(field)

	composition, err := air.BuildComposition(trace, p.cfg.TraceLength, p.cfg.TraceLength+1, alpha0, alpha1, alpha2)
	if err != nil {
		return nil, fmt.Errorf("failed to build composition polynomial: %w", err)
	}
	ch.SendRoot(composition.Merkle.Root())
	return composition, nil
}

// commitFRI is phase 3: run the FRI folding commitment on the composition
// polynomial down to the final constant layer.
func (p *ProverOrchestrator) commitFRI(ch *channel.Channel, trace *air.Trace, composition *air.Composition) (*fri.Proof, error) {
	proof, err := fri.Commit(ch, composition.CP, trace.EvalDomain, composition.Eval, composition.Merkle, p.cfg.FinalFRILayerSize)
	if err != nil {
		return nil, fmt.Errorf("failed to commit FRI layers: %w", err)
	}
	return proof, nil
}

// decommitQueries is phase 4: for NumQueries randomly sampled indices,
// reveal the trace triple {id, id+8, id+16} and the per-layer FRI
// decommitment.
func (p *ProverOrchestrator) decommitQueries(ch *channel.Channel, trace *air.Trace, friProof *fri.Proof) ([]int, []*fri.Query, error) {
	domainSize := p.cfg.EvaluationDomainSize
	indices := make([]int, p.cfg.NumQueries)
	queries := make([]*fri.Query, p.cfg.NumQueries)

	// id+16 must stay in range, so the largest admissible id is
	// domainSize-1-16.
	maxID := int64(domainSize - 1 - 16)

	for q := 0; q < p.cfg.NumQueries; q++ {
		id := int(ch.ReceiveInt(0, maxID))
		indices[q] = id

		for _, offset := range []int{0, 8, 16} {
			idx := id + offset
			value := trace.Eval[idx]
			ch.SendFieldElement(value, 8)
			proofPath, err := trace.Merkle.Proof(idx)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to build trace decommitment at %d: %w", idx, err)
			}
			sendAuthPath(ch, proofPath)
		}

		fquery, err := fri.Decommit(friProof, id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build FRI decommitment for query %d: %w", q, err)
		}
		for i := range fquery.LayerValues {
			ch.SendFieldElement(fquery.LayerValues[i], 8)
			sendAuthPath(ch, fquery.ValueProofs[i])
			ch.SendFieldElement(fquery.LayerSiblings[i], 8)
			sendAuthPath(ch, fquery.SiblingProofs[i])
		}
		// Re-send the committed final FRI constant so the verifier can
		// check it against this query's folded chain without trusting
		// the earlier commitment in isolation.
		ch.SendFieldElement(friProof.FinalValue, 8)
		queries[q] = fquery
	}

	return indices, queries, nil
}

// sendAuthPath serializes a Merkle authentication path onto the channel as
// a single Send: the 32-byte sibling hashes concatenated bottom-up, with
// no length prefix. The verifier recomputes the number of levels from the
// leaf index and the committed tree size.
func sendAuthPath(ch *channel.Channel, path [][]byte) {
	data := make([]byte, 0, 32*len(path))
	for _, sibling := range path {
		data = append(data, sibling...)
	}
	ch.Send(data)
}
