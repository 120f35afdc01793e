// Package channel implements the Fiat-Shamir transcript the prover and
// verifier both replay to derive their shared randomness non-interactively.
package channel

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/core"
)

// MemberKind distinguishes the two kinds of transcript entries.
type MemberKind int

const (
	// Send records data the prover committed to the transcript.
	Send MemberKind = iota
	// Receive records randomness the verifier is expected to derive.
	Receive
)

// String implements fmt.Stringer for MemberKind.
func (k MemberKind) String() string {
	switch k {
	case Send:
		return "send"
	case Receive:
		return "receive"
	default:
		return "unknown"
	}
}

// TranscriptMember is one entry on the channel's tape.
type TranscriptMember struct {
	Kind MemberKind
	Data []byte
}

// HashFunc identifies which hash backend a Channel uses to mix state.
type HashFunc string

const (
	// HashSHA256 is the default backend, matching this statement's wire
	// format exactly.
	HashSHA256 HashFunc = "sha256"
	// HashSHA3 is an alternate backend retained for testing the channel
	// against a second hash primitive.
	HashSHA3 HashFunc = "sha3"
)

// Channel implements a Fiat-Shamir transcript: a 32-byte running state
// updated by hashing in sent data, and pseudorandom values derived by
// hashing the current state.
type Channel struct {
	state    []byte
	tape     []TranscriptMember
	hashFunc HashFunc
}

// NewChannel creates a Channel with the default SHA-256 backend.
func NewChannel() *Channel {
	return &Channel{
		state:    make([]byte, 32),
		hashFunc: HashSHA256,
	}
}

// NewChannelWithHash creates a Channel using the given hash backend.
func NewChannelWithHash(hashFunc HashFunc) *Channel {
	return &Channel{
		state:    make([]byte, 32),
		hashFunc: hashFunc,
	}
}

// NewChannelFromTape wraps an already-produced tape (e.g. one deserialized
// off the wire) in a Channel, so callers that only need Tape() - such as a
// verifier replaying a received proof - don't need to reconstruct the
// Fiat-Shamir state that produced it.
func NewChannelFromTape(tape []TranscriptMember) *Channel {
	out := make([]TranscriptMember, len(tape))
	copy(out, tape)
	return &Channel{tape: out}
}

func (c *Channel) hash(data []byte) []byte {
	switch c.hashFunc {
	case HashSHA3:
		sum := sha3.Sum256(data)
		return sum[:]
	case HashSHA256:
		fallthrough
	default:
		sum := sha256.Sum256(data)
		return sum[:]
	}
}

// Send appends data to the transcript and mixes it into the running state:
// state = Hash(state || data).
func (c *Channel) Send(data []byte) {
	c.tape = append(c.tape, TranscriptMember{Kind: Send, Data: append([]byte(nil), data...)})
	buf := make([]byte, 0, len(c.state)+len(data))
	buf = append(buf, c.state...)
	buf = append(buf, data...)
	c.state = c.hash(buf)
}

// SendRoot sends a Merkle root commitment, the most common Send payload.
func (c *Channel) SendRoot(root []byte) {
	c.Send(root)
}

// SendFieldElement sends a field element's canonical little-endian bytes.
func (c *Channel) SendFieldElement(fe *core.FieldElement, byteLen int) {
	c.Send(fe.Bytes(byteLen))
}

// receiveAndAdvance derives `data` from the current state, records a
// Receive member, and then advances the state to Hash(state) so the next
// Send/Receive is independent of this one.
func (c *Channel) receiveAndAdvance(data []byte) {
	c.tape = append(c.tape, TranscriptMember{Kind: Receive, Data: append([]byte(nil), data...)})
	c.state = c.hash(c.state)
}

// ReceiveField derives a pseudorandom field element from the current
// state: state interpreted as a big-endian integer, reduced modulo the
// field's modulus.
func (c *Channel) ReceiveField(field *core.Field) *core.FieldElement {
	value := new(big.Int).SetBytes(c.state)
	fe := field.NewElement(value)
	c.receiveAndAdvance(fe.Bytes(leBytesFor(field)))
	return fe
}

// ReceiveInt derives a pseudorandom integer in [min, max], inclusive on
// both ends: the state interpreted as a big-endian integer, reduced modulo
// max-min+1 and shifted by min.
func (c *Channel) ReceiveInt(min, max int64) int64 {
	span := max - min + 1
	if span <= 0 {
		panic("channel: ReceiveInt requires max >= min")
	}
	value := new(big.Int).SetBytes(c.state)
	value.Mod(value, big.NewInt(span))
	result := value.Int64() + min

	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, uint64(result))
	c.receiveAndAdvance(data)
	return result
}

// leBytesFor is the fixed width this statement's wire format uses for a
// field element, regardless of how many bytes the modulus itself needs:
// 8 bytes, little-endian.
func leBytesFor(field *core.Field) int {
	return 8
}

// State returns a copy of the current transcript state.
func (c *Channel) State() []byte {
	out := make([]byte, len(c.state))
	copy(out, c.state)
	return out
}

// Tape returns the full ordered list of transcript members.
func (c *Channel) Tape() []TranscriptMember {
	out := make([]TranscriptMember, len(c.tape))
	copy(out, c.tape)
	return out
}

// Len returns the number of members recorded on the tape so far.
func (c *Channel) Len() int {
	return len(c.tape)
}

// AssertLen returns an error if the tape does not hold exactly n members.
// Used at protocol phase boundaries to catch a miscounted Send/Receive.
func (c *Channel) AssertLen(n int) error {
	if len(c.tape) != n {
		return fmt.Errorf("channel: expected %d tape members, got %d", n, len(c.tape))
	}
	return nil
}

// String renders the channel's tape length and current state for debugging.
func (c *Channel) String() string {
	return fmt.Sprintf("Channel{members=%d, state=%x}", len(c.tape), c.state)
}
