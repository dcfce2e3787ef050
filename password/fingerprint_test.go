package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-manthan-sharma/paw-ma/seed"
)

func cheapFingerprinter(t *testing.T) *Fingerprinter {
	t.Helper()
	f, err := NewFingerprinter(FingerprintConfig{Memory: 8 * 1024, Time: 1, Parallelism: 1, Bytes: 3})
	require.NoError(t, err)
	return f
}

func TestFingerprintDeterministic(t *testing.T) {
	f := cheapFingerprinter(t)

	a, err := f.Fingerprint("Tr0ub4dor&3")
	require.NoError(t, err)
	b, err := f.Fingerprint("Tr0ub4dor&3")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 6)
}

func TestFingerprintDistinguishesTypos(t *testing.T) {
	f := cheapFingerprinter(t)

	a, err := f.Fingerprint("Tr0ub4dor&3")
	require.NoError(t, err)
	b, err := f.Fingerprint("Tr0ub4dor&4")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestFingerprintMissingSecret(t *testing.T) {
	_, err := cheapFingerprinter(t).Fingerprint("")
	assert.ErrorIs(t, err, seed.ErrMissingSecret)
}

func TestFingerprintConfigValidation(t *testing.T) {
	base := FingerprintConfig{Memory: 8 * 1024, Time: 1, Parallelism: 1, Bytes: 3}

	lowMem := base
	lowMem.Memory = 1024
	zeroTime := base
	zeroTime.Time = 0
	zeroPar := base
	zeroPar.Parallelism = 0
	tooShort := base
	tooShort.Bytes = 1
	tooLong := base
	tooLong.Bytes = 9

	for _, cfg := range []FingerprintConfig{lowMem, zeroTime, zeroPar, tooShort, tooLong} {
		_, err := NewFingerprinter(cfg)
		assert.Error(t, err)
	}

	_, err := NewFingerprinter(DefaultFingerprintConfig())
	assert.NoError(t, err)
}
