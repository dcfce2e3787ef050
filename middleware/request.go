package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	pawma "github.com/dev-manthan-sharma/paw-ma"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// RequestContext attaches the client IP and a request id to every request
// and echoes the id back. With trustProxy the first X-Forwarded-For entry
// wins over the socket address.
func RequestContext(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteIP(r.RemoteAddr)
			if trustProxy {
				if fwd := forwardedIP(r.Header.Get("X-Forwarded-For")); fwd != "" {
					ip = fwd
				}
			}

			id := r.Header.Get(RequestIDHeader)
			if len(id) > maxRequestIDLen || strings.ContainsAny(id, "\r\n") {
				id = ""
			}

			ctx := pawma.WithRequestID(pawma.WithClientIP(r.Context(), ip), id)
			w.Header().Set(RequestIDHeader, pawma.RequestIDFromContext(ctx))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func forwardedIP(header string) string {
	first, _, _ := strings.Cut(header, ",")
	first = strings.TrimSpace(first)
	if net.ParseIP(first) == nil {
		return ""
	}
	return first
}

type errorBody struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Kind: kind, Error: kind})
}
