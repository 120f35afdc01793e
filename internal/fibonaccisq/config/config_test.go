package config

import "testing"

func TestDefaultConfigMatchesFixedStatement(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.FieldModulus != 3221225473 {
		t.Errorf("FieldModulus = %d, want 3221225473", cfg.FieldModulus)
	}
	if cfg.TraceLength != 1023 {
		t.Errorf("TraceLength = %d, want 1023", cfg.TraceLength)
	}
	if cfg.EvaluationDomainSize != 8192 {
		t.Errorf("EvaluationDomainSize = %d, want 8192", cfg.EvaluationDomainSize)
	}
	if cfg.CosetOffset != 5 {
		t.Errorf("CosetOffset = %d, want 5", cfg.CosetOffset)
	}
	if cfg.NumQueries != 3 {
		t.Errorf("NumQueries = %d, want 3", cfg.NumQueries)
	}
	if cfg.FinalFRILayerSize != 8 {
		t.Errorf("FinalFRILayerSize = %d, want 8", cfg.FinalFRILayerSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() does not validate: %v", err)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c Config) Config
	}{
		{"zero modulus", func(c Config) Config { c.FieldModulus = 0; return c }},
		{"zero trace length", func(c Config) Config { c.TraceLength = 0; return c }},
		{"domain not exceeding trace", func(c Config) Config { c.EvaluationDomainSize = c.TraceLength; return c }},
		{"zero queries", func(c Config) Config { c.NumQueries = 0; return c }},
		{"zero final layer size", func(c Config) Config { c.FinalFRILayerSize = 0; return c }},
		{"unsupported hash function", func(c Config) Config { c.HashFunction = "md5"; return c }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.modify(DefaultConfig())
			if err := cfg.Validate(); err == nil {
				t.Error("expected Validate to reject the modified config")
			}
		})
	}
}

func TestWithHashFunctionAndNumQueries(t *testing.T) {
	cfg := DefaultConfig().WithHashFunction("sha3").WithNumQueries(5)
	if cfg.HashFunction != "sha3" {
		t.Errorf("HashFunction = %q, want sha3", cfg.HashFunction)
	}
	if cfg.NumQueries != 5 {
		t.Errorf("NumQueries = %d, want 5", cfg.NumQueries)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("modified config does not validate: %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.NumQueries = 99
	if cfg.NumQueries == 99 {
		t.Error("Clone shared state with the original config")
	}
}
