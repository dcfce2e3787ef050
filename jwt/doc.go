// Package jwt issues and verifies the bearer tokens that guard the HTTP API.
//
// Tokens carry a subject, a random jti and a list of scopes. They never carry
// a master secret or a derived password.
package jwt
