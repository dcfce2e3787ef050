package rate

import "errors"

var (
	// ErrRateLimited is returned when a client has exhausted its window.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis transport failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
