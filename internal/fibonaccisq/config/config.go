// Package config holds the fixed parameters of the FibonacciSq statement
// this module proves and verifies.
package config

import "fmt"

// Config collects the protocol parameters for the FibonacciSq STARK. Every
// field here is fixed by the statement being proven; Config exists so the
// prover and verifier share one source of truth instead of scattering
// magic numbers, and so tests can exercise alternate hash backends.
type Config struct {
	// FieldModulus is the prime field modulus: 3*2^30 + 1.
	FieldModulus uint64

	// TraceLength is the number of FibonacciSq trace values; the trace
	// subgroup has order TraceLength+1.
	TraceLength int

	// EvaluationDomainSize is the size of the coset evaluation domain
	// used for the low-degree extension (8x blowup of the trace subgroup
	// order TraceLength+1).
	EvaluationDomainSize int

	// CosetOffset is the non-residue offset generator for the evaluation
	// domain coset.
	CosetOffset uint64

	// NumQueries is the number of FRI query-phase spot checks.
	NumQueries int

	// FinalFRILayerSize is the expected length of the last FRI layer. That
	// layer is committed like the others, and its constant value is then
	// also sent directly.
	FinalFRILayerSize int

	// HashFunction selects the channel's Fiat-Shamir hash backend.
	HashFunction string
}

// DefaultConfig returns the configuration for the fixed FibonacciSq
// statement: a0=1, a1=3141592, a_i = a_{i-2}^2 + a_{i-1}^2, proving
// a_1022 = 2338775057 over F_3221225473.
func DefaultConfig() Config {
	return Config{
		FieldModulus:         3221225473,
		TraceLength:          1023,
		EvaluationDomainSize: 8192,
		CosetOffset:          5,
		NumQueries:           3,
		FinalFRILayerSize:    8,
		HashFunction:         "sha256",
	}
}

// Validate checks that the configuration describes a coherent protocol
// instance.
func (c Config) Validate() error {
	if c.FieldModulus == 0 {
		return fmt.Errorf("config: field modulus must be non-zero")
	}
	if c.TraceLength <= 0 {
		return fmt.Errorf("config: trace length must be positive")
	}
	if c.EvaluationDomainSize <= c.TraceLength {
		return fmt.Errorf("config: evaluation domain must exceed trace length")
	}
	if c.NumQueries <= 0 {
		return fmt.Errorf("config: num queries must be positive")
	}
	if c.FinalFRILayerSize <= 0 {
		return fmt.Errorf("config: final FRI layer size must be positive")
	}
	switch c.HashFunction {
	case "sha256", "sha3":
	default:
		return fmt.Errorf("config: unsupported hash function %q", c.HashFunction)
	}
	return nil
}

// WithHashFunction returns a copy of c using the given hash backend.
func (c Config) WithHashFunction(name string) Config {
	c.HashFunction = name
	return c
}

// WithNumQueries returns a copy of c using the given number of FRI queries.
func (c Config) WithNumQueries(n int) Config {
	c.NumQueries = n
	return c
}

// Clone returns a copy of the configuration.
func (c Config) Clone() Config {
	return c
}
