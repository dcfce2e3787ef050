package main

import (
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	pawma "github.com/dev-manthan-sharma/paw-ma"
	"github.com/dev-manthan-sharma/paw-ma/jwt"
	"github.com/dev-manthan-sharma/paw-ma/server"
)

type serveFlags struct {
	addr       string
	redisAddr  string
	rateLimit  int
	trustProxy bool
	audit      bool
}

func newServeCmd(a *app) *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the derivation HTTP API",
		Long: `serve exposes POST /v1/derive and POST /v1/domain on a loopback address.

When token_key is configured every /v1 request needs a bearer token from
"pawma token". When rate_limit is positive, requests are throttled per
client in Redis; without redis_addr an in-process store is used.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.applyServeFlags(cmd, f)
			return a.runServe(cmd)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.addr, "addr", "", "listen address (default from config)")
	fs.StringVar(&f.redisAddr, "redis-addr", "", "Redis address for rate limiting")
	fs.IntVar(&f.rateLimit, "rate-limit", 0, "requests per client per window, 0 disables")
	fs.BoolVar(&f.trustProxy, "trust-proxy", false, "take the client IP from X-Forwarded-For")
	fs.BoolVar(&f.audit, "audit", false, "write audit events as JSON lines to stderr")

	return cmd
}

func (a *app) applyServeFlags(cmd *cobra.Command, f serveFlags) {
	fs := cmd.Flags()
	if flagChanged(fs, "addr") {
		a.settings.Addr = f.addr
	}
	if flagChanged(fs, "redis-addr") {
		a.settings.RedisAddr = f.redisAddr
	}
	if flagChanged(fs, "rate-limit") {
		a.settings.RateLimit = f.rateLimit
	}
	if flagChanged(fs, "trust-proxy") {
		a.settings.TrustProxy = f.trustProxy
	}
	if flagChanged(fs, "audit") {
		a.settings.Audit = f.audit
	}
}

func (a *app) runServe(cmd *cobra.Command) error {
	s := a.settings
	if err := s.Validate(); err != nil {
		return usageError("%v", err)
	}

	var sink pawma.AuditSink
	if s.Audit {
		sink = pawma.NewJSONWriterSink(cmd.ErrOrStderr())
	}
	engine, err := a.engine(sink)
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := server.Options{
		Addr:            s.Addr,
		RateLimit:       s.RateLimit,
		RateLimitWindow: s.RateWindow,
		TrustProxy:      s.TrustProxy,
		Logger:          a.logger,
	}

	if s.RateLimit > 0 {
		client, closeFn, err := a.redisClient(s.RedisAddr)
		if err != nil {
			return err
		}
		defer closeFn()
		opts.Redis = client
	}

	if s.TokenKey != "" {
		tokens, err := a.tokenManager()
		if err != nil {
			return err
		}
		opts.Tokens = tokens
	} else {
		a.logger.Warn("serving without token auth; set token_key to require bearer tokens")
	}

	srv, err := server.New(engine, opts)
	if err != nil {
		return failure("server init", err)
	}

	a.logger.Info("starting api", "addr", srv.Addr(), "rate_limit", s.RateLimit, "auth", s.TokenKey != "")
	if err := srv.ListenAndServe(cmd.Context()); err != nil {
		return failure("serve", err)
	}
	return nil
}

// redisClient connects to addr, or starts an in-process store when addr is
// empty.
func (a *app) redisClient(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, failure("in-process redis", err)
		}
		a.logger.Info("rate limiting with in-process store; counts are lost on restart")
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	return client, func() { _ = client.Close() }, nil
}

func (a *app) tokenManager() (*jwt.Manager, error) {
	m, err := jwt.NewManager(jwt.Config{
		TTL:           a.settings.TokenTTL,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte(a.settings.TokenKey),
		Issuer:        a.settings.TokenIssuer,
		RequireIAT:    true,
	})
	if err != nil {
		return nil, failure("token manager", err)
	}
	return m, nil
}
