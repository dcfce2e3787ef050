package seed

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

const (
	// Salt is appended to identifier and secret before stretching.
	Salt = "cb6bea251f8876f3163a1bff96a6184f3c3a0a733d3f23f5f650018603fe0205"
	// Rounds is the number of HMAC-SHA256 stretching iterations.
	Rounds = 1021
	// Size is the length of a seed in hexadecimal characters.
	Size = sha256.Size * 2
)

// ErrMissingSecret is returned when the master secret is empty.
var ErrMissingSecret = errors.New("master secret required")

// Derive returns the stretched seed for the given inputs.
//
// Derive fails with [ErrMissingSecret] before any hashing when masterSecret is
// empty. The result is a pure function of its arguments and is safe to call
// from multiple goroutines.
func Derive(identifier, masterSecret, differentiator string) (string, error) {
	if masterSecret == "" {
		return "", ErrMissingSecret
	}

	key := []byte(masterSecret)
	mac := hmac.New(sha256.New, key)
	clear(key)

	initial := make([]byte, 0, len(identifier)+len(masterSecret)+len(Salt))
	initial = append(initial, identifier...)
	initial = append(initial, masterSecret...)
	initial = append(initial, Salt...)
	defer clear(initial)

	diff := []byte(differentiator)
	current := make([]byte, Size)
	var sum [sha256.Size]byte

	msg := initial
	for i := 0; i < Rounds; i++ {
		mac.Reset()
		mac.Write(msg)
		mac.Write(diff)
		hex.Encode(current, mac.Sum(sum[:0]))
		// from round 1 on, the message is the previous round's hex digest
		msg = current
	}

	return string(current), nil
}

// Valid reports whether s has the shape of a seed: exactly [Size] lowercase
// hexadecimal characters.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
