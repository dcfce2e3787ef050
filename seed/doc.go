// Package seed stretches an (identifier, master secret, differentiator) triple
// into the 64-character hexadecimal seed that drives password composition.
//
// # Format contract
//
// The salt, the round count and the exact concatenation order are part of the
// output format. Every password ever derived depends on them:
//
//	s0     = identifier || masterSecret || Salt
//	s(i+1) = hex(HMAC-SHA256(key = masterSecret, msg = s(i) || differentiator))
//
// Changing any of these values is a breaking format change and must ship as a
// new, separately named derivation version.
//
// # What this package must NOT do
//
//   - Retain the master secret after Derive returns.
//   - Normalise any input (case, whitespace, Unicode form).
//   - Import any other paw-ma package.
package seed
