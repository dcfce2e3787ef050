package pawma

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	auditEventDeriveSuccess      = "derive_success"
	auditEventDeriveFailure      = "derive_failure"
	auditEventFingerprint        = "fingerprint"
	auditEventAPIUnauthorized    = "api_unauthorized"
	auditEventRateLimitTriggered = "rate_limit_triggered"
)

// AuditErrorCode is the value of [AuditEvent].Error.
type AuditErrorCode string

const (
	auditErrMissingSecret AuditErrorCode = "missing_secret"
	auditErrInvalidURL    AuditErrorCode = "invalid_url"
	auditErrConfiguration AuditErrorCode = "configuration_invariant"
	auditErrCanceled      AuditErrorCode = "canceled"
	auditErrUnauthorized  AuditErrorCode = "unauthorized"
	auditErrRateLimited   AuditErrorCode = "rate_limited"
	auditErrInternal      AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	identifier string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		RequestID: RequestIDFromContext(ctx),
		IP:        ClientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if e.config.Audit.IncludeIdentifier {
		event.Identifier = identifier
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

// ReportRateLimited records a request rejected by the API rate limiter.
func (e *Engine) ReportRateLimited(ctx context.Context, scope string) {
	if e == nil {
		return
	}
	e.metricInc(MetricRateLimitHit)
	e.logger.LogAttrs(ctx, slog.LevelWarn, "rate limit triggered", slog.String("scope", scope))
	e.emitAudit(ctx, auditEventRateLimitTriggered, false, "", ErrRateLimited, func() map[string]string {
		return map[string]string{"scope": scope}
	})
}

// ReportUnauthorized records a request rejected for a missing or invalid API
// token.
func (e *Engine) ReportUnauthorized(ctx context.Context) {
	if e == nil {
		return
	}
	e.metricInc(MetricAPIUnauthorized)
	e.logger.LogAttrs(ctx, slog.LevelWarn, "unauthorized api request")
	e.emitAudit(ctx, auditEventAPIUnauthorized, false, "", ErrUnauthorized, nil)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrMissingSecret):
		return auditErrMissingSecret
	case errors.Is(err, ErrInvalidURL):
		return auditErrInvalidURL
	case errors.Is(err, ErrConfigurationInvariant):
		return auditErrConfiguration
	case errors.Is(err, ErrCanceled):
		return auditErrCanceled
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	default:
		return auditErrInternal
	}
}
