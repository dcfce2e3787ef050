package pawma

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	internalaudit "github.com/dev-manthan-sharma/paw-ma/internal/audit"
	"github.com/dev-manthan-sharma/paw-ma/password"
)

const (
	opDerive    = "derive"
	opDeriveURL = "derive_url"
)

// Engine wraps the pure derivation functions with metrics, audit events and
// structured logging.
//
// Engine holds no per-derivation state and is safe for concurrent use. Build
// one with [New] and release it with Close.
type Engine struct {
	config      Config
	metrics     *Metrics
	audit       *internalaudit.Dispatcher
	fingerprint *password.Fingerprinter
	logger      *slog.Logger

	closed atomic.Bool
}

// Close stops the audit worker after draining queued events. Later calls on
// the engine fail with [ErrEngineClosed].
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events lost to a full buffer or a
// canceled context.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the engine's counters and latency histogram.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return e.config
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

// Derive computes the password for identifier.
//
// It returns the same password as the package-level [Derive]. A canceled ctx
// is only honoured before work starts; a derivation in flight always runs to
// completion. Failures are returned as *[Failure] so errors.Is works against
// the package sentinels.
func (e *Engine) Derive(ctx context.Context, identifier, masterSecret, differentiator string) (*Success, error) {
	return unwrap(e.DeriveResult(ctx, identifier, masterSecret, differentiator))
}

// DeriveResult is Derive returning the tagged result instead of an error.
func (e *Engine) DeriveResult(ctx context.Context, identifier, masterSecret, differentiator string) DerivationResult {
	return e.run(ctx, opDerive, identifier, func() DerivationResult {
		return Derive(identifier, masterSecret, differentiator)
	})
}

// DeriveURL reduces rawURL to its domain and derives the password for it.
func (e *Engine) DeriveURL(ctx context.Context, rawURL, masterSecret, differentiator string) (*Success, error) {
	return unwrap(e.DeriveURLResult(ctx, rawURL, masterSecret, differentiator))
}

// DeriveURLResult is DeriveURL returning the tagged result.
func (e *Engine) DeriveURLResult(ctx context.Context, rawURL, masterSecret, differentiator string) DerivationResult {
	return e.run(ctx, opDeriveURL, "", func() DerivationResult {
		return DeriveURL(rawURL, masterSecret, differentiator)
	})
}

// Fingerprint returns the short check code for masterSecret. Equal secrets
// give equal codes, so a user can spot a typo without the secret being
// stored anywhere.
func (e *Engine) Fingerprint(ctx context.Context, masterSecret string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if e.closed.Load() {
		return "", ErrEngineClosed
	}
	if e.fingerprint == nil {
		return "", ErrFingerprintDisabled
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCanceled, err)
	}

	code, err := e.fingerprint.Fingerprint(masterSecret)
	if err != nil {
		e.emitAudit(ctx, auditEventFingerprint, false, "", err, nil)
		return "", err
	}

	e.metricInc(MetricFingerprint)
	e.emitAudit(ctx, auditEventFingerprint, true, "", nil, nil)
	return code, nil
}

func (e *Engine) run(ctx context.Context, op, identifier string, fn func() DerivationResult) DerivationResult {
	if e == nil {
		return fail(ErrEngineNotReady)
	}
	if e.closed.Load() {
		return fail(ErrEngineClosed)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		res := fail(fmt.Errorf("%w: %w", ErrCanceled, err))
		e.record(ctx, op, identifier, res, 0)
		return res
	}

	start := time.Now()
	res := fn()
	e.record(ctx, op, identifier, res, time.Since(start))

	return res
}

func (e *Engine) record(ctx context.Context, op, identifier string, res DerivationResult, elapsed time.Duration) {
	if res.Success != nil {
		identifier = res.Success.Identifier

		e.metricInc(MetricDeriveSuccess)
		e.metricObserve(MetricDeriveLatency, elapsed)
		e.logger.LogAttrs(ctx, slog.LevelDebug, "password derived", e.logAttrs(ctx, op, identifier, elapsed)...)
		e.emitAudit(ctx, auditEventDeriveSuccess, true, identifier, nil, func() map[string]string {
			return map[string]string{"op": op}
		})
		return
	}

	e.metricInc(MetricDeriveFailure)
	switch res.Failure.Kind {
	case FailureMissingSecret:
		e.metricInc(MetricMissingSecret)
	case FailureInvalidURL:
		e.metricInc(MetricInvalidURL)
	}

	level := slog.LevelInfo
	if res.Failure.Kind == FailureInternal || res.Failure.Kind == FailureConfigurationInvariant {
		level = slog.LevelError
	}
	attrs := append(e.logAttrs(ctx, op, identifier, elapsed), slog.String("kind", string(res.Failure.Kind)))
	e.logger.LogAttrs(ctx, level, "derivation failed", attrs...)
	e.emitAudit(ctx, auditEventDeriveFailure, false, identifier, res.Failure, func() map[string]string {
		return map[string]string{"op": op}
	})
}

// logAttrs never includes the secret, the differentiator or the password.
func (e *Engine) logAttrs(ctx context.Context, op, identifier string, elapsed time.Duration) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("op", op),
		slog.Duration("elapsed", elapsed),
	}
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if e.config.Log.LogIdentifiers && identifier != "" {
		attrs = append(attrs, slog.String("identifier", identifier))
	}
	return attrs
}

func unwrap(res DerivationResult) (*Success, error) {
	if res.Failure != nil {
		return nil, res.Failure
	}
	return res.Success, nil
}
