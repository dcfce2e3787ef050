package pawma

import (
	"errors"

	"github.com/dev-manthan-sharma/paw-ma/domain"
	"github.com/dev-manthan-sharma/paw-ma/password"
	"github.com/dev-manthan-sharma/paw-ma/seed"
)

var (
	// ErrMissingSecret is returned when the master secret is empty.
	ErrMissingSecret = seed.ErrMissingSecret
	// ErrInvalidURL is returned when a URL cannot be reduced to a domain.
	ErrInvalidURL = domain.ErrInvalidURL
	// ErrConfigurationInvariant signals a password policy that cannot be satisfied.
	ErrConfigurationInvariant = password.ErrConfigurationInvariant
	// ErrCanceled is returned when the caller's context ended before derivation started.
	ErrCanceled = errors.New("derivation canceled")
	// ErrInternal wraps failures that should be impossible with valid inputs.
	ErrInternal = errors.New("internal derivation failure")
	// ErrFingerprintDisabled is returned when fingerprints are turned off in Config.
	ErrFingerprintDisabled = errors.New("fingerprint disabled")
	// ErrUnauthorized is reported by the API layer for a missing or invalid token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited is reported by the API layer when a client exceeds its budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrEngineNotReady is returned by methods called on a nil Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrEngineClosed is returned by methods called after Close.
	ErrEngineClosed = errors.New("engine closed")
)
