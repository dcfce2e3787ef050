package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pawma "github.com/dev-manthan-sharma/paw-ma"
	"github.com/dev-manthan-sharma/paw-ma/internal/rate"
	"github.com/dev-manthan-sharma/paw-ma/jwt"
)

type countingReporter struct {
	unauthorized atomic.Int64
	limited      atomic.Int64
}

func (r *countingReporter) ReportUnauthorized(context.Context) { r.unauthorized.Add(1) }
func (r *countingReporter) ReportRateLimited(context.Context, string) {
	r.limited.Add(1)
}

func newManager(t *testing.T) *jwt.Manager {
	t.Helper()
	m, err := jwt.NewManager(jwt.Config{
		TTL:           time.Minute,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
	})
	require.NoError(t, err)
	return m
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRequireTokenRejectsMissingAndMalformed(t *testing.T) {
	rep := &countingReporter{}
	h := RequireDerive(newManager(t), rep)(okHandler)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer not.a.jwt"} {
		req := httptest.NewRequest(http.MethodPost, "/v1/derive", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Contains(t, rec.Body.String(), `"unauthorized"`)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	}
	assert.EqualValues(t, 4, rep.unauthorized.Load())
}

func TestRequireTokenAcceptsValidTokenAndStoresClaims(t *testing.T) {
	m := newManager(t)
	tok, err := m.Issue("cli", nil, 0)
	require.NoError(t, err)

	var subject string
	h := RequireDerive(m, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if ok {
			subject = claims.Subject
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/derive", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "cli", subject)
}

func TestRequireTokenEnforcesScope(t *testing.T) {
	m := newManager(t)
	tok, err := m.Issue("cli", []string{jwt.ScopeDomain}, 0)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/derive", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	rec := httptest.NewRecorder()
	RequireDerive(m, nil)(okHandler).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	RequireDomain(m, nil)(okHandler).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireTokenNilVerifierRejects(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireToken(nil, "", nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestContextSetsIPAndRequestID(t *testing.T) {
	var ip, id string
	h := RequestContext(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = pawma.ClientIPFromContext(r.Context())
		id = pawma.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "192.0.2.10", ip)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}

func TestRequestContextTrustProxy(t *testing.T) {
	var ip, id string
	h := RequestContext(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = pawma.ClientIPFromContext(r.Context())
		id = pawma.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.9", ip)
	assert.Equal(t, "abc-123", id)
}

func TestRequestContextReplacesOversizedRequestID(t *testing.T) {
	var id string
	h := RequestContext(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = pawma.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Len(t, id, 36)
}

func TestRateLimitRejectsOverBudget(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	rep := &countingReporter{}
	limiter := rate.New(rdb, rate.Config{MaxRequests: 2, Window: time.Minute})
	h := RequestContext(false)(RateLimit(limiter, "api", rep)(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/derive", nil)
		req.RemoteAddr = "198.51.100.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.EqualValues(t, 1, rep.limited.Load())
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) error { return rate.ErrRedisUnavailable }

func TestRateLimitBackendFailureIsUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	RateLimit(failingLimiter{}, "api", nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimitNilLimiterPassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	RateLimit(nil, "api", nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
