package middleware

import (
	"context"
	"errors"
	"net/http"

	pawma "github.com/dev-manthan-sharma/paw-ma"
	"github.com/dev-manthan-sharma/paw-ma/internal/rate"
)

// Limiter counts one request for a client key.
type Limiter interface {
	Allow(ctx context.Context, client string) error
}

// RateLimitReporter is told about every throttled request.
type RateLimitReporter interface {
	ReportRateLimited(ctx context.Context, scope string)
}

// RateLimit throttles by the client IP set by RequestContext. A limiter
// backend failure answers 503; the request is not served unthrottled.
func RateLimit(limiter Limiter, scope string, reporter RateLimitReporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			client := ClientIPFromRequest(r)
			err := limiter.Allow(r.Context(), client)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, rate.ErrRateLimited):
				if reporter != nil {
					reporter.ReportRateLimited(r.Context(), scope)
				}
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate_limited")
			default:
				writeError(w, http.StatusServiceUnavailable, "unavailable")
			}
		})
	}
}

// ClientIPFromRequest returns the IP RequestContext resolved, falling back to
// the remote address.
func ClientIPFromRequest(r *http.Request) string {
	if ip := pawma.ClientIPFromContext(r.Context()); ip != "" {
		return ip
	}
	return remoteIP(r.RemoteAddr)
}
