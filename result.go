package pawma

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a derivation produced no password.
type FailureKind string

const (
	// FailureMissingSecret means the master secret was empty.
	FailureMissingSecret FailureKind = "missing_secret"
	// FailureInvalidURL means the URL could not be reduced to a domain.
	FailureInvalidURL FailureKind = "invalid_url"
	// FailureConfigurationInvariant means the password policy is corrupted.
	FailureConfigurationInvariant FailureKind = "configuration_invariant"
	// FailureCanceled means the caller's context ended before work started.
	FailureCanceled FailureKind = "canceled"
	// FailureInternal covers everything else.
	FailureInternal FailureKind = "internal"
)

// Success is the populated variant of a [DerivationResult].
//
// The master secret is intentionally absent.
type Success struct {
	URL            string `json:"url,omitempty" yaml:"url,omitempty"`
	Identifier     string `json:"identifier" yaml:"identifier"`
	Differentiator string `json:"differentiator,omitempty" yaml:"differentiator,omitempty"`
	Domain         string `json:"domain" yaml:"domain"`
	Password       string `json:"password" yaml:"password"`
}

// Failure is the error variant of a [DerivationResult].
type Failure struct {
	Kind   FailureKind `json:"kind" yaml:"kind"`
	Reason string      `json:"error" yaml:"error"`

	err error
}

// Error implements error.
func (f *Failure) Error() string {
	return f.Reason
}

// Unwrap exposes the sentinel error for errors.Is.
func (f *Failure) Unwrap() error {
	return f.err
}

// DerivationResult holds exactly one of Success or Failure.
type DerivationResult struct {
	Success *Success
	Failure *Failure
}

// OK reports whether the result carries a password.
func (r DerivationResult) OK() bool {
	return r.Success != nil
}

// Err returns the failure as an error, or nil on success.
func (r DerivationResult) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

func succeed(s Success) DerivationResult {
	return DerivationResult{Success: &s}
}

// fail maps err onto a Failure. The reason is derived from the error text of
// the sentinel only, so no caller input can leak into it.
func fail(err error) DerivationResult {
	kind := failureKind(err)
	reason := string(kind)
	switch kind {
	case FailureMissingSecret:
		reason = ErrMissingSecret.Error()
	case FailureInvalidURL:
		reason = ErrInvalidURL.Error()
	case FailureConfigurationInvariant:
		reason = ErrConfigurationInvariant.Error()
	case FailureCanceled:
		reason = ErrCanceled.Error()
	default:
		err = fmt.Errorf("%w: %w", ErrInternal, err)
		reason = ErrInternal.Error()
	}
	return DerivationResult{Failure: &Failure{Kind: kind, Reason: reason, err: err}}
}

func failureKind(err error) FailureKind {
	switch {
	case errors.Is(err, ErrMissingSecret):
		return FailureMissingSecret
	case errors.Is(err, ErrInvalidURL):
		return FailureInvalidURL
	case errors.Is(err, ErrConfigurationInvariant):
		return FailureConfigurationInvariant
	case errors.Is(err, ErrCanceled):
		return FailureCanceled
	default:
		return FailureInternal
	}
}
