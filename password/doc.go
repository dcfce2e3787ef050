// Package password composes the final password from a pseudorandom byte source
// and derives the master-secret fingerprint shown next to it.
//
// # Composition
//
// [Compose] draws, in order: the per-class minimums for uppercase, lowercase,
// digits and specials; filler characters from the concatenated alphabet until
// the target length is reached; then one byte per position for a Fisher–Yates
// shuffle running from the last index down to 1. Every selection is
// byte % len(alphabet). The modulo bias this introduces is part of the output
// format and is kept on purpose: correcting it would change every existing
// password.
//
// # Fingerprint
//
// [Fingerprinter] maps a master secret to a short Argon2id check code so a user
// can notice a mistyped secret before using the derived password. The code is
// for display only.
//
// # What this package must NOT do
//
//   - Store, log or return the master secret.
//   - Read randomness from anywhere but the supplied [stream.ByteSource].
//   - Import the root paw-ma package.
package password
