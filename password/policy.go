package password

import (
	"errors"
	"fmt"
	"strings"
)

// Character alphabets, in draw order.
const (
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Digits    = "0123456789"
	Specials  = "!@#$%^&*()_+[]{}|;:,.<>?/~`-="
)

const (
	// DefaultLength is the length of every derived password.
	DefaultLength = 16
	// DefaultMinPerClass is the minimum number of characters drawn from each class.
	DefaultMinPerClass = 2
)

// ErrConfigurationInvariant is returned when a policy cannot produce a
// conforming password, for example when the target length is smaller than the
// sum of the per-class minimums.
var ErrConfigurationInvariant = errors.New("password policy violates configuration invariant")

// Class is a named alphabet with a minimum draw count.
type Class struct {
	Name     string
	Alphabet string
	Min      int
}

// Policy fixes the classes, their order and the target length.
//
// The order of Classes is significant: it is the order in which the minimums
// consume the byte source.
type Policy struct {
	Length  int
	Classes []Class
}

// DefaultPolicy returns the policy every derived password is built with.
func DefaultPolicy() Policy {
	return Policy{
		Length: DefaultLength,
		Classes: []Class{
			{Name: "uppercase", Alphabet: Uppercase, Min: DefaultMinPerClass},
			{Name: "lowercase", Alphabet: Lowercase, Min: DefaultMinPerClass},
			{Name: "digits", Alphabet: Digits, Min: DefaultMinPerClass},
			{Name: "specials", Alphabet: Specials, Min: DefaultMinPerClass},
		},
	}
}

// Alphabet returns the concatenation of every class alphabet in order.
func (p Policy) Alphabet() string {
	var b strings.Builder
	for _, c := range p.Classes {
		b.WriteString(c.Alphabet)
	}
	return b.String()
}

// Validate checks the policy invariants.
func (p Policy) Validate() error {
	return validatePolicy(p)
}

func (p Policy) clone() Policy {
	out := Policy{Length: p.Length, Classes: make([]Class, len(p.Classes))}
	copy(out.Classes, p.Classes)
	return out
}

func validatePolicy(p Policy) error {
	if p.Length <= 0 {
		return fmt.Errorf("%w: length must be > 0", ErrConfigurationInvariant)
	}
	if len(p.Classes) == 0 {
		return fmt.Errorf("%w: at least one character class is required", ErrConfigurationInvariant)
	}

	required := 0
	for _, c := range p.Classes {
		if c.Alphabet == "" {
			return fmt.Errorf("%w: class %q has an empty alphabet", ErrConfigurationInvariant, c.Name)
		}
		// composition indexes alphabets by byte
		for i := 0; i < len(c.Alphabet); i++ {
			if c.Alphabet[i] >= 0x80 {
				return fmt.Errorf("%w: class %q alphabet must be ASCII", ErrConfigurationInvariant, c.Name)
			}
		}
		if c.Min < 0 {
			return fmt.Errorf("%w: class %q minimum must be >= 0", ErrConfigurationInvariant, c.Name)
		}
		required += c.Min
	}
	if p.Length < required {
		return fmt.Errorf("%w: length %d is smaller than the %d required characters", ErrConfigurationInvariant, p.Length, required)
	}

	return nil
}
