// Package server exposes the derivation engine over a small local HTTP API.
//
// Endpoints:
//
//	POST /v1/derive  {"url"|"identifier", "secret", "differentiator"}
//	POST /v1/domain  {"url"}
//	GET  /healthz
//	GET  /metrics    Prometheus text exposition
//
// /v1 routes are rate limited per client IP when a Redis client is supplied
// and require a bearer token when a verifier is supplied. Every response
// carries Cache-Control: no-store.
//
// # What this package must NOT do
//
//   - Log request bodies, secrets or passwords.
//   - Listen on a public interface by default.
package server
