package pawma

import "testing"

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "negative audit buffer invalid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = -1
			},
			wantValid: false,
		},
		{
			name: "negative audit buffer ignored when disabled",
			mutate: func(c *Config) {
				c.Audit.Enabled = false
				c.Audit.BufferSize = -1
			},
			wantValid: true,
		},
		{
			name: "latency without metrics invalid",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.EnableLatencyHistograms = true
			},
			wantValid: false,
		},
		{
			name: "fingerprint memory too low",
			mutate: func(c *Config) {
				c.Fingerprint.Memory = 1024
			},
			wantValid: false,
		},
		{
			name: "fingerprint bytes too high",
			mutate: func(c *Config) {
				c.Fingerprint.Bytes = 9
			},
			wantValid: false,
		},
		{
			name: "bad fingerprint ignored when disabled",
			mutate: func(c *Config) {
				c.Fingerprint.Enabled = false
				c.Fingerprint.Bytes = 0
			},
			wantValid: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected invalid config")
			}
		})
	}
}

func TestDefaultConfigDoesNotLogIdentifiers(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Log.LogIdentifiers {
		t.Fatal("identifiers must be opt-in for logs")
	}
	if cfg.Audit.IncludeIdentifier {
		t.Fatal("identifiers must be opt-in for audit events")
	}
}
