// Package rate throttles HTTP API clients with Redis fixed-window counters.
//
// # Window semantics
//
// INCR plus EXPIRE on the first hit of a window. One key per client:
//   - pr:<client> for API requests
//
// Keys hold a request count and a TTL, nothing else.
//
// # What this package must NOT do
//
//   - Decide how a client is identified. Callers pass the key.
//   - Be imported outside this module.
package rate
