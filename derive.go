package pawma

import (
	"github.com/dev-manthan-sharma/paw-ma/domain"
	"github.com/dev-manthan-sharma/paw-ma/password"
	"github.com/dev-manthan-sharma/paw-ma/seed"
	"github.com/dev-manthan-sharma/paw-ma/stream"
)

// Derive computes the password for identifier, masterSecret and
// differentiator.
//
// Derive is a pure function: no clock, no randomness, no I/O, no logging. Equal
// inputs yield equal results on every platform. It is safe to call from any
// number of goroutines.
func Derive(identifier, masterSecret, differentiator string) DerivationResult {
	pw, err := derivePassword(identifier, masterSecret, differentiator)
	if err != nil {
		return fail(err)
	}

	return succeed(Success{
		Identifier:     identifier,
		Differentiator: differentiator,
		Domain:         identifier,
		Password:       pw,
	})
}

// DeriveURL reduces rawURL to its domain and derives the password for it.
//
// URL errors take precedence over a missing secret, so a blank form reports
// the URL first.
func DeriveURL(rawURL, masterSecret, differentiator string) DerivationResult {
	host, err := domain.Extract(rawURL)
	if err != nil {
		return fail(err)
	}

	res := Derive(host, masterSecret, differentiator)
	if res.Success != nil {
		res.Success.URL = rawURL
	}
	return res
}

// derivePassword runs the pipeline: stretch, stream, compose. The seed and
// stream never leave this frame.
func derivePassword(identifier, masterSecret, differentiator string) (string, error) {
	sd, err := seed.Derive(identifier, masterSecret, differentiator)
	if err != nil {
		return "", err
	}

	src, err := stream.New(sd)
	if err != nil {
		return "", err
	}

	return password.Compose(src), nil
}
