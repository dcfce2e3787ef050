// Package internal holds the engine's private plumbing.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher and Sink implementations)
//   - rate: Redis-backed fixed-window request limiting for the HTTP API
//
// # What this package must NOT do
//
//   - Export types that appear in the public pawma API, except through
//     aliases declared in the root package.
//   - See a master secret, seed or derived password.
package internal
