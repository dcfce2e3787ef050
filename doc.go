// Package pawma derives site passwords from a master secret without storing
// anything.
//
// A password is a pure function of a service identifier, the master secret and
// an optional differentiator (typically an account name). The same inputs give
// the same 16-character password on every machine, so there is no vault to
// sync or lose.
//
// The pipeline has three stages, each in its own package:
//
//   - seed stretches the inputs into a 64-character hex seed with 1021 rounds
//     of HMAC-SHA256.
//   - stream turns the seed into an unbounded deterministic byte sequence.
//   - password consumes 31 bytes of that sequence to build a password with two
//     characters from each class, then shuffles it.
//
// [Derive] and [DeriveURL] run the pipeline with no side effects. [Engine]
// wraps them with metrics, audit events and structured logging for the CLI
// and the HTTP API.
//
// # Architecture boundaries
//
// pawma is the public surface. Audit dispatch lives under internal/ and is
// reachable only through the aliases in this package. The derivation packages
// (seed, stream, password, domain) import nothing from here.
//
// # What this package must NOT do
//
//   - Log, persist or echo the master secret, the seed or the password.
//   - Let configuration change derived passwords. Every derivation constant
//     is fixed.
//   - Perform I/O inside [Derive] or [DeriveURL].
package pawma
