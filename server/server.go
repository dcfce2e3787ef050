package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	pawma "github.com/dev-manthan-sharma/paw-ma"
	"github.com/dev-manthan-sharma/paw-ma/internal/rate"
	"github.com/dev-manthan-sharma/paw-ma/jwt"
	"github.com/dev-manthan-sharma/paw-ma/metrics/export/prometheus"
	"github.com/dev-manthan-sharma/paw-ma/middleware"
)

const (
	// DefaultAddr keeps the API on loopback.
	DefaultAddr = "127.0.0.1:8417"

	defaultMaxBodyBytes    = 8 << 10
	defaultShutdownTimeout = 5 * time.Second
)

// Options configures a Server. The zero value serves without auth and
// without throttling.
type Options struct {
	Addr string

	// Tokens guards /v1 routes when set.
	Tokens middleware.TokenVerifier

	// Redis enables per-client throttling of /v1 routes.
	Redis           redis.UniversalClient
	RateLimit       int
	RateLimitWindow time.Duration
	TrustProxy      bool

	MaxBodyBytes int64
	Logger       *slog.Logger
}

// Server is the HTTP front end of an engine.
type Server struct {
	engine  *pawma.Engine
	opts    Options
	logger  *slog.Logger
	handler http.Handler
}

// New wires the routes. It does not listen.
func New(engine *pawma.Engine, opts Options) (*Server, error) {
	if engine == nil {
		return nil, pawma.ErrEngineNotReady
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	var limiter *rate.Limiter
	if opts.Redis != nil {
		cfg := rate.Config{MaxRequests: opts.RateLimit, Window: opts.RateLimitWindow}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		limiter = rate.New(opts.Redis, cfg)
	}

	s := &Server{
		engine: engine,
		opts:   opts,
		logger: opts.Logger,
	}
	s.handler = s.routes(limiter)

	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.opts.Addr
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("api listening", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("api stopped")
	return nil
}

func (s *Server) routes(limiter *rate.Limiter) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", prometheus.NewPrometheusExporter(s.engine).Handler())

	v1 := func(scope string, h http.HandlerFunc) http.Handler {
		var next http.Handler = h
		if s.opts.Tokens != nil {
			next = middleware.RequireToken(s.opts.Tokens, scope, s.engine)(next)
		}
		if limiter != nil {
			next = middleware.RateLimit(limiter, "api", s.engine)(next)
		}
		return next
	}
	mux.Handle("POST /v1/derive", v1(jwt.ScopeDerive, s.handleDerive))
	mux.Handle("POST /v1/domain", v1(jwt.ScopeDomain, s.handleDomain))

	return middleware.RequestContext(s.opts.TrustProxy)(s.accessLog(noStore(mux)))
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// accessLog records method, path, status and latency. Bodies are never read
// here.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.LogAttrs(r.Context(), slog.LevelDebug, "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", pawma.RequestIDFromContext(r.Context())),
		)
	})
}
