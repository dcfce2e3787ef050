package password

import (
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/argon2"

	"github.com/dev-manthan-sharma/paw-ma/seed"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minCodeBytes   uint32 = 2
	maxCodeBytes   uint32 = 8

	// fingerprintSalt is public and versioned; changing it changes every code.
	fingerprintSalt = "paw-ma/fingerprint/v1"
)

// FingerprintConfig sets the Argon2id cost of the master-secret check code.
//
// The same config must be used wherever a user compares codes.
type FingerprintConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	Bytes       uint32
}

// DefaultFingerprintConfig returns the cost parameters used by the CLI and
// server.
func DefaultFingerprintConfig() FingerprintConfig {
	return FingerprintConfig{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		Bytes:       3,
	}
}

// Fingerprinter computes short, display-only check codes for master secrets.
type Fingerprinter struct {
	config FingerprintConfig
}

// NewFingerprinter validates cfg and returns a Fingerprinter.
func NewFingerprinter(cfg FingerprintConfig) (*Fingerprinter, error) {
	if err := validateFingerprintConfig(cfg); err != nil {
		return nil, err
	}

	return &Fingerprinter{config: cfg}, nil
}

// Fingerprint returns the lowercase hex check code for secret.
//
// The code is deliberately short: it identifies typos, not the secret. It must
// be shown to the user only, never stored next to derived passwords.
func (f *Fingerprinter) Fingerprint(secret string) (string, error) {
	if secret == "" {
		return "", seed.ErrMissingSecret
	}

	key := []byte(secret)
	defer clear(key)

	code := argon2.IDKey(
		key,
		[]byte(fingerprintSalt),
		f.config.Time,
		f.config.Memory,
		f.config.Parallelism,
		f.config.Bytes,
	)

	return hex.EncodeToString(code), nil
}

func validateFingerprintConfig(cfg FingerprintConfig) error {
	if cfg.Memory < minMemoryKB {
		return errors.New("fingerprint memory must be >= 8192 KB")
	}
	if cfg.Time < minTimeCost {
		return errors.New("fingerprint time must be >= 1")
	}
	if cfg.Parallelism < minParallelism {
		return errors.New("fingerprint parallelism must be >= 1")
	}
	if cfg.Bytes < minCodeBytes || cfg.Bytes > maxCodeBytes {
		return errors.New("fingerprint bytes must be between 2 and 8")
	}

	return nil
}
