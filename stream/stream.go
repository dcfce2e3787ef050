// Package stream turns a seed into a reproducible sequence of pseudorandom
// bytes.
//
// Byte n of the sequence is the first byte of HMAC-SHA256(key = seed text,
// msg = decimal(n)). Two streams built from the same seed and read the same
// number of times return identical bytes. A Stream is consumed in order and
// cannot be rewound; build a new one to start over.
//
// A Stream is not safe for concurrent use. Each derivation owns exactly one.
package stream

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"hash"
	"strconv"

	"github.com/dev-manthan-sharma/paw-ma/seed"
)

// ErrInvalidSeed is returned by [New] when the seed is not 64 lowercase hex
// characters.
var ErrInvalidSeed = errors.New("stream: invalid seed")

// ByteSource yields pseudorandom bytes one at a time.
type ByteSource interface {
	NextByte() byte
}

// Stream is the counter-driven HMAC byte generator.
type Stream struct {
	mac     hash.Hash
	counter uint64
	msg     []byte
	sum     [sha256.Size]byte
}

// New returns a stream positioned at counter zero.
func New(seedHex string) (*Stream, error) {
	if !seed.Valid(seedHex) {
		return nil, ErrInvalidSeed
	}
	return &Stream{
		// the key is the seed's hex text, not the decoded digest
		mac: hmac.New(sha256.New, []byte(seedHex)),
		msg: make([]byte, 0, 20),
	}, nil
}

// NextByte returns the next byte of the sequence and advances the counter.
func (s *Stream) NextByte() byte {
	s.mac.Reset()
	s.msg = strconv.AppendUint(s.msg[:0], s.counter, 10)
	s.mac.Write(s.msg)
	s.counter++
	// first byte of the digest == first two hex characters parsed base 16
	return s.mac.Sum(s.sum[:0])[0]
}

// Consumed reports how many bytes have been read.
func (s *Stream) Consumed() uint64 {
	return s.counter
}
