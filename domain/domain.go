// Package domain reduces a URL typed or captured by a client to the bare host
// name used as the derivation identifier.
//
// Extraction follows what a browser address bar does with the same text:
// surrounding whitespace is trimmed, a missing scheme is assumed to be http for
// parsing purposes only, the host is lowercased and IDNA-mapped, the port is
// dropped, and one leading "www." label is removed.
//
// # What this package must NOT do
//
//   - Resolve, fetch or otherwise contact the host.
//   - Apply public-suffix rules: "a.b.example.co.uk" stays as is.
package domain

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// ErrInvalidURL is returned when the input cannot be parsed into a URL with a
// host.
var ErrInvalidURL = errors.New("invalid URL")

var schemePattern = regexp.MustCompile(`^[a-zA-Z]+://`)

// hostProfile mirrors the URL standard's domain-to-ASCII step: non-transitional
// UTS #46 processing without STD3 or hyphen checks.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.BidiRule(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
	idna.CheckHyphens(false),
	idna.CheckJoiners(true),
)

// Extract returns the bare domain for raw.
func Extract(raw string) (string, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return "", ErrInvalidURL
	}
	if !schemePattern.MatchString(input) {
		input = "http://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", ErrInvalidURL
	}

	host, err := normalizeHost(u.Hostname())
	if err != nil {
		return "", err
	}

	return strings.TrimPrefix(host, "www."), nil
}

func normalizeHost(host string) (string, error) {
	if host == "" {
		return "", ErrInvalidURL
	}
	if strings.Contains(host, ":") {
		// IPv6 literal; url.Hostname strips the brackets
		return "[" + strings.ToLower(host) + "]", nil
	}

	ascii, err := hostProfile.ToASCII(host)
	if err != nil || ascii == "" {
		return "", ErrInvalidURL
	}
	return ascii, nil
}
