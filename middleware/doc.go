// Package middleware holds the HTTP adapters in front of the derivation API.
//
// # Middleware
//
//   - [RequestContext] attaches the client IP and a request id to the context.
//   - [RateLimit] rejects clients that exhausted their budget with 429.
//   - [RequireToken] verifies a bearer API token and its scope.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into calls on narrow interfaces. It
// does NOT derive passwords, parse token internals or talk to Redis itself.
//
// # What this package must NOT do
//
//   - Read or log request bodies. They carry master secrets.
//   - Trust forwarding headers unless told to.
package middleware
