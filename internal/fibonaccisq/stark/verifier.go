package stark

import (
	"encoding/binary"
	"fmt"

	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/air"
	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/channel"
	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/config"
	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/core"
	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/fri"
)

// VerifierOrchestrator replays the prover's channel tape deterministically
// and checks every Merkle path and FRI folding step it implies.
type VerifierOrchestrator struct {
	cfg config.Config
}

// NewVerifierOrchestrator creates a VerifierOrchestrator for the given
// config.
func NewVerifierOrchestrator(cfg config.Config) *VerifierOrchestrator {
	return &VerifierOrchestrator{cfg: cfg}
}

// replayChannel walks a prover's tape in order, feeding Send members
// straight back into a fresh channel and checking that each Receive member
// matches what that fresh channel would itself derive at that point. This
// is what lets the verifier recompute every challenge without ever seeing
// the prover's internal state.
type replayChannel struct {
	ch   *channel.Channel
	tape []channel.TranscriptMember
	pos  int
}

func newReplayChannel(cfg config.Config, tape []channel.TranscriptMember) *replayChannel {
	return &replayChannel{
		ch:   channel.NewChannelWithHash(channel.HashFunc(cfg.HashFunction)),
		tape: tape,
	}
}

func (r *replayChannel) next() (channel.TranscriptMember, error) {
	if r.pos >= len(r.tape) {
		return channel.TranscriptMember{}, fmt.Errorf("verifier: tape exhausted at position %d", r.pos)
	}
	m := r.tape[r.pos]
	r.pos++
	return m, nil
}

// expectSend reads the next tape member, checks it is a Send, mirrors it
// into the replay channel, and returns its bytes.
func (r *replayChannel) expectSend() ([]byte, error) {
	m, err := r.next()
	if err != nil {
		return nil, err
	}
	if m.Kind != channel.Send {
		return nil, fmt.Errorf("verifier: expected Send at position %d, got %s", r.pos-1, m.Kind)
	}
	r.ch.Send(m.Data)
	return m.Data, nil
}

// expectReceiveField derives the field element the replay channel itself
// would produce next and checks it against the tape's recorded member.
func (r *replayChannel) expectReceiveField(field *core.Field) (*core.FieldElement, error) {
	m, err := r.next()
	if err != nil {
		return nil, err
	}
	if m.Kind != channel.Receive {
		return nil, fmt.Errorf("verifier: expected Receive at position %d, got %s", r.pos-1, m.Kind)
	}
	fe := r.ch.ReceiveField(field)
	expected := core.FieldElementFromLittleEndian(field, m.Data)
	if !fe.Equal(expected) {
		return nil, fmt.Errorf("verifier: replayed field element does not match tape at position %d", r.pos-1)
	}
	return fe, nil
}

// expectReceiveInt mirrors expectReceiveField for ReceiveInt.
func (r *replayChannel) expectReceiveInt(min, max int64) (int64, error) {
	m, err := r.next()
	if err != nil {
		return 0, err
	}
	if m.Kind != channel.Receive {
		return 0, fmt.Errorf("verifier: expected Receive at position %d, got %s", r.pos-1, m.Kind)
	}
	got := r.ch.ReceiveInt(min, max)
	if len(m.Data) != 8 || binary.LittleEndian.Uint64(m.Data) != uint64(got) {
		return 0, fmt.Errorf("verifier: replayed integer does not match tape at position %d", r.pos-1)
	}
	return got, nil
}

// Verify replays the proof's tape and checks every Merkle path and FRI
// recurrence it asserts. It returns nil only if the proof is fully
// consistent with the fixed FibonacciSq statement.
func (v *VerifierOrchestrator) Verify(proof *Proof) error {
	field, err := core.NewFieldFromUint64(v.cfg.FieldModulus)
	if err != nil {
		return fmt.Errorf("verifier: failed to construct field: %w", err)
	}

	tape := proof.Channel.Tape()
	r := newReplayChannel(v.cfg, tape)

	traceRoot, err := r.expectSend()
	if err != nil {
		return fmt.Errorf("verifier: phase 1 (trace commitment) failed: %w", err)
	}

	if _, err := r.expectReceiveField(field); err != nil {
		return fmt.Errorf("verifier: phase 2 alpha0 failed: %w", err)
	}
	if _, err := r.expectReceiveField(field); err != nil {
		return fmt.Errorf("verifier: phase 2 alpha1 failed: %w", err)
	}
	if _, err := r.expectReceiveField(field); err != nil {
		return fmt.Errorf("verifier: phase 2 alpha2 failed: %w", err)
	}
	cpRoot, err := r.expectSend()
	if err != nil {
		return fmt.Errorf("verifier: phase 2 (composition commitment) failed: %w", err)
	}

	// The FRI commitment interleaves a beta challenge with each folded
	// layer's root. The composition commitment itself is layer 0, so the
	// roots read here are those of layers 1..10; queries open layers 0..9,
	// and layer 10's root is bound through the Fiat-Shamir state alone.
	layerRoots := [][]byte{cpRoot}
	var betas []*core.FieldElement
	domainSize := v.cfg.EvaluationDomainSize
	for domainSize > v.cfg.FinalFRILayerSize {
		beta, err := r.expectReceiveField(field)
		if err != nil {
			return fmt.Errorf("verifier: FRI beta failed: %w", err)
		}
		betas = append(betas, beta)

		root, err := r.expectSend()
		if err != nil {
			return fmt.Errorf("verifier: FRI layer root failed: %w", err)
		}
		layerRoots = append(layerRoots, root)
		domainSize /= 2
	}

	finalValueBytes, err := r.expectSend()
	if err != nil {
		return fmt.Errorf("verifier: FRI final value failed: %w", err)
	}
	finalValue := core.FieldElementFromLittleEndian(field, finalValueBytes)

	traceEvalDomain, err := rebuildEvalDomain(field, v.cfg)
	if err != nil {
		return fmt.Errorf("verifier: failed to rebuild evaluation domain: %w", err)
	}
	layerDomains := make([][]*core.FieldElement, len(betas))
	layerDomains[0] = traceEvalDomain
	for i := 1; i < len(betas); i++ {
		layerDomains[i] = fri.FoldDomain(layerDomains[i-1])
	}

	maxID := int64(v.cfg.EvaluationDomainSize - 1 - 16)
	for q := 0; q < v.cfg.NumQueries; q++ {
		id, err := r.expectReceiveInt(0, maxID)
		if err != nil {
			return fmt.Errorf("verifier: query %d index failed: %w", q, err)
		}

		for _, offset := range []int{0, 8, 16} {
			valueBytes, err := r.expectSend()
			if err != nil {
				return fmt.Errorf("verifier: query %d trace value %d failed: %w", q, offset, err)
			}
			value := core.FieldElementFromLittleEndian(field, valueBytes)

			pathBytes, err := r.expectSend()
			if err != nil {
				return fmt.Errorf("verifier: query %d trace auth path %d failed: %w", q, offset, err)
			}
			path, err := decodeAuthPath(pathBytes)
			if err != nil {
				return fmt.Errorf("verifier: query %d trace auth path %d malformed: %w", q, offset, err)
			}

			if !core.VerifyProof(traceRoot, value, path, int(id)+offset, v.cfg.EvaluationDomainSize) {
				return fmt.Errorf("verifier: query %d trace merkle path does not verify at offset %d", q, offset)
			}
		}

		curID := int(id)
		layerSize := v.cfg.EvaluationDomainSize
		var pendingFold *core.FieldElement

		for i := range betas {
			domain := layerDomains[i]
			sibID := (curID + layerSize/2) % layerSize

			valueBytes, err := r.expectSend()
			if err != nil {
				return fmt.Errorf("verifier: query %d FRI layer %d value failed: %w", q, i, err)
			}
			value := core.FieldElementFromLittleEndian(field, valueBytes)

			if pendingFold != nil && !value.Equal(pendingFold) {
				return fmt.Errorf("verifier: query %d FRI layer %d value does not match the previous layer's fold", q, i)
			}

			valuePathBytes, err := r.expectSend()
			if err != nil {
				return fmt.Errorf("verifier: query %d FRI layer %d value path failed: %w", q, i, err)
			}
			valuePath, err := decodeAuthPath(valuePathBytes)
			if err != nil {
				return fmt.Errorf("verifier: query %d FRI layer %d value path malformed: %w", q, i, err)
			}
			if !core.VerifyProof(layerRoots[i], value, valuePath, curID, layerSize) {
				return fmt.Errorf("verifier: query %d FRI layer %d value merkle path does not verify", q, i)
			}

			sibBytes, err := r.expectSend()
			if err != nil {
				return fmt.Errorf("verifier: query %d FRI layer %d sibling failed: %w", q, i, err)
			}
			sibling := core.FieldElementFromLittleEndian(field, sibBytes)

			sibPathBytes, err := r.expectSend()
			if err != nil {
				return fmt.Errorf("verifier: query %d FRI layer %d sibling path failed: %w", q, i, err)
			}
			sibPath, err := decodeAuthPath(sibPathBytes)
			if err != nil {
				return fmt.Errorf("verifier: query %d FRI layer %d sibling path malformed: %w", q, i, err)
			}
			if !core.VerifyProof(layerRoots[i], sibling, sibPath, sibID, layerSize) {
				return fmt.Errorf("verifier: query %d FRI layer %d sibling merkle path does not verify", q, i)
			}

			nextValue, err := foldRecurrence(value, sibling, domain[curID], betas[i], field)
			if err != nil {
				return fmt.Errorf("verifier: query %d FRI layer %d fold computation failed: %w", q, i, err)
			}

			if i == len(betas)-1 {
				if !nextValue.Equal(finalValue) {
					return fmt.Errorf("verifier: query %d final FRI value does not match committed constant", q)
				}
			} else {
				pendingFold = nextValue
			}

			curID = curID % (layerSize / 2)
			layerSize /= 2
		}

		queryFinalBytes, err := r.expectSend()
		if err != nil {
			return fmt.Errorf("verifier: query %d final constant failed: %w", q, err)
		}
		queryFinal := core.FieldElementFromLittleEndian(field, queryFinalBytes)
		if !queryFinal.Equal(finalValue) {
			return fmt.Errorf("verifier: query %d final constant does not match the committed constant", q)
		}
	}

	if r.pos != len(r.tape) {
		return fmt.Errorf("verifier: tape has %d trailing members beyond the expected schema", len(r.tape)-r.pos)
	}

	return nil
}

// foldRecurrence is the FRI folding recurrence: given a value and its
// sibling in one layer, their average recombines with beta times their
// half-difference-over-x to give the next layer's value at the folded
// index.
func foldRecurrence(value, sibling, x, beta *core.FieldElement, field *core.Field) (*core.FieldElement, error) {
	two := field.NewElementFromInt64(2)
	sum, err := value.Add(sibling).Div(two)
	if err != nil {
		return nil, fmt.Errorf("failed to compute fold sum: %w", err)
	}
	twoX := two.Mul(x)
	diff, err := value.Sub(sibling).Div(twoX)
	if err != nil {
		return nil, fmt.Errorf("failed to compute fold difference: %w", err)
	}
	return sum.Add(beta.Mul(diff)), nil
}

// decodeAuthPath splits an authentication-path Send member back into its
// 32-byte sibling hashes. The wire format carries no length prefix, so any
// payload that is not a whole number of hashes is malformed.
func decodeAuthPath(data []byte) ([][]byte, error) {
	if len(data)%32 != 0 {
		return nil, fmt.Errorf("auth path length %d is not a multiple of 32", len(data))
	}
	path := make([][]byte, 0, len(data)/32)
	for offset := 0; offset < len(data); offset += 32 {
		path = append(path, data[offset:offset+32])
	}
	return path, nil
}

func rebuildEvalDomain(field *core.Field, cfg config.Config) ([]*core.FieldElement, error) {
	cosetOffset := field.NewElementFromUint64(cfg.CosetOffset)
	hGen, err := air.DomainGenerator(field, cfg.EvaluationDomainSize)
	if err != nil {
		return nil, fmt.Errorf("failed to find order-%d subgroup generator: %w", cfg.EvaluationDomainSize, err)
	}
	domain := make([]*core.FieldElement, cfg.EvaluationDomainSize)
	acc := field.One()
	for i := 0; i < cfg.EvaluationDomainSize; i++ {
		domain[i] = cosetOffset.Mul(acc)
		acc = acc.Mul(hGen)
	}
	return domain, nil
}
