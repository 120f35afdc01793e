package fibonaccisq

import (
	"strings"

	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/stark"
)

// Proof is the in-memory output of Prove: a replayable Fiat-Shamir tape
// together with the prover-side structures that produced it.
type Proof struct {
	inner *stark.Proof
}

// Tape returns the proof's transcript members, in send/receive order.
func (p *Proof) Tape() []TranscriptMember {
	return p.inner.Channel.Tape()
}

// Prove runs the full FibonacciSq STARK proving pipeline (trace
// commitment, constraint composition, FRI commitment, and query-phase
// decommitment) under the given configuration, returning a Proof whose
// tape is ready for Verify.
func Prove(cfg Config) (*Proof, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Code: ErrInvalidConfig, Message: "invalid configuration", Cause: err}
	}

	prover := stark.NewProverOrchestrator(cfg)
	inner, err := prover.Prove()
	if err != nil {
		return nil, &Error{Code: ErrProofGeneration, Message: "proof generation failed", Cause: err}
	}

	return &Proof{inner: inner}, nil
}

// Verify replays a proof's tape and checks every Merkle path and FRI
// recurrence it implies. It returns nil only if the proof is fully
// consistent with the fixed FibonacciSq statement under cfg.
func Verify(cfg Config, proof *Proof) error {
	if err := cfg.Validate(); err != nil {
		return &Error{Code: ErrInvalidConfig, Message: "invalid configuration", Cause: err}
	}
	if proof == nil || proof.inner == nil {
		return &Error{Code: ErrStructuralInvalid, Message: "proof is empty"}
	}

	verifier := stark.NewVerifierOrchestrator(cfg)
	if err := verifier.Verify(proof.inner); err != nil {
		return classifyVerificationError(err)
	}
	return nil
}

// classifyVerificationError maps the internal verifier's wrapped error
// strings to a public ErrorCode. The verifier's error messages are stable
// enough across this fixed statement to key off of directly, avoiding a
// parallel internal error-code type that would only ever mirror this one.
func classifyVerificationError(err error) error {
	msg := err.Error()
	switch {
	case containsAny(msg, "merkle path does not verify"):
		return &Error{Code: ErrMerkleVerification, Message: "merkle path verification failed", Cause: err}
	case containsAny(msg, "fold consistency", "fold computation", "does not match the previous layer"):
		return &Error{Code: ErrFRIConsistency, Message: "FRI folding consistency check failed", Cause: err}
	case containsAny(msg, "final FRI value does not match", "final constant does not match"):
		return &Error{Code: ErrFinalConstantMismatch, Message: "final FRI value mismatch", Cause: err}
	default:
		return &Error{Code: ErrStructuralInvalid, Message: "proof replay failed", Cause: err}
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
