package pawma

import (
	"errors"

	"github.com/dev-manthan-sharma/paw-ma/password"
)

// Config controls the ambient behaviour of an [Engine].
//
// None of these settings influence derived passwords: the derivation constants
// are fixed by the output format and are not configurable.
type Config struct {
	Metrics     MetricsConfig
	Audit       AuditConfig
	Fingerprint FingerprintConfig
	Log         LogConfig
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles the in-process counters and the latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// IncludeIdentifier records the service identifier on audit events.
	IncludeIdentifier bool
}

/*
====================================
FINGERPRINT CONFIG
====================================
*/

// FingerprintConfig sets the Argon2id cost of master-secret check codes.
type FingerprintConfig struct {
	Enabled     bool
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	Bytes       uint32
}

/*
====================================
LOG CONFIG
====================================
*/

// LogConfig controls what the engine writes to its logger.
type LogConfig struct {
	// LogIdentifiers adds the service identifier to log records. Secrets,
	// differentiators and passwords are never logged.
	LogIdentifiers bool
}

// DefaultConfig returns the configuration used by the CLI and server.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	fp := password.DefaultFingerprintConfig()
	return Config{
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
		Audit: AuditConfig{
			Enabled:           false,
			BufferSize:        256,
			DropIfFull:        true,
			IncludeIdentifier: false,
		},
		Fingerprint: FingerprintConfig{
			Enabled:     true,
			Memory:      fp.Memory,
			Time:        fp.Time,
			Parallelism: fp.Parallelism,
			Bytes:       fp.Bytes,
		},
		Log: LogConfig{
			LogIdentifiers: false,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration and the built-in password policy.
func (c *Config) Validate() error {
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit BufferSize must be >= 0")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	if c.Fingerprint.Enabled {
		if _, err := password.NewFingerprinter(c.Fingerprint.toPassword()); err != nil {
			return err
		}
	}

	return password.DefaultPolicy().Validate()
}

func (c FingerprintConfig) toPassword() password.FingerprintConfig {
	return password.FingerprintConfig{
		Memory:      c.Memory,
		Time:        c.Time,
		Parallelism: c.Parallelism,
		Bytes:       c.Bytes,
	}
}
