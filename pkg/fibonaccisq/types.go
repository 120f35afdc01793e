package fibonaccisq

import (
	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/channel"
	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/config"
	"github.com/vybium/fibonaccisq-stark/internal/fibonaccisq/core"
)

// FieldElement represents an element of the fixed prime field this
// statement is defined over.
type FieldElement = core.FieldElement

// Field represents the fixed prime field this statement is defined over.
type Field = core.Field

// Config collects the fixed FibonacciSq STARK protocol parameters.
type Config = config.Config

// DefaultConfig returns the configuration for proving a_1022 = 2338775057
// of the FibonacciSq sequence a0=1, a1=3141592, a_i=a_{i-2}^2+a_{i-1}^2
// over F_3221225473.
func DefaultConfig() Config {
	return config.DefaultConfig()
}

// TranscriptMember is one entry on a proof's Fiat-Shamir tape.
type TranscriptMember = channel.TranscriptMember
