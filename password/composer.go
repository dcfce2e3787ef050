package password

import (
	"github.com/dev-manthan-sharma/paw-ma/stream"
)

// Composer builds passwords for one validated [Policy].
//
// A Composer holds no per-call state and may be shared between goroutines; the
// byte source passed to Compose may not.
type Composer struct {
	policy   Policy
	alphabet string
}

var defaultComposer = mustComposer(DefaultPolicy())

// NewComposer validates p and returns a Composer for it.
func NewComposer(p Policy) (*Composer, error) {
	if err := validatePolicy(p); err != nil {
		return nil, err
	}
	p = p.clone()
	return &Composer{policy: p, alphabet: p.Alphabet()}, nil
}

func mustComposer(p Policy) *Composer {
	c, err := NewComposer(p)
	if err != nil {
		// the built-in policy is a compile-time constant; failing here means the
		// binary itself is corrupted
		panic(err)
	}
	return c
}

// Compose builds a password with the default policy. src must be positioned at
// its first byte.
func Compose(src stream.ByteSource) string {
	return defaultComposer.Compose(src)
}

// Policy returns a copy of the composer's policy.
func (c *Composer) Policy() Policy {
	return c.policy.clone()
}

// Compose consumes src and returns the password.
func (c *Composer) Compose(src stream.ByteSource) string {
	buf := make([]byte, 0, c.policy.Length)

	for _, class := range c.policy.Classes {
		for i := 0; i < class.Min; i++ {
			buf = append(buf, pick(class.Alphabet, src))
		}
	}
	for len(buf) < c.policy.Length {
		buf = append(buf, pick(c.alphabet, src))
	}

	for i := len(buf) - 1; i > 0; i-- {
		j := int(src.NextByte()) % (i + 1)
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf)
}

func pick(alphabet string, src stream.ByteSource) byte {
	return alphabet[int(src.NextByte())%len(alphabet)]
}
