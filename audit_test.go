package pawma

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

func collectEvents(t *testing.T, sink *ChannelSink, n int) []AuditEvent {
	t.Helper()

	events := make([]AuditEvent, 0, n)
	timeout := time.After(2 * time.Second)
	for len(events) < n {
		select {
		case ev := <-sink.Events():
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("timed out waiting for %d audit events, got %d", n, len(events))
		}
	}
	return events
}

func TestAuditDisabledByDefault(t *testing.T) {
	sink := &countingSink{}
	engine, err := New().WithConfig(testConfig()).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, _ = engine.Derive(context.Background(), "example.com", "Tr0ub4dor&3", "")
	engine.Close()

	if got := sink.Count(); got != 0 {
		t.Fatalf("expected no events with audit disabled, got %d", got)
	}
}

func TestAuditDeriveEvents(t *testing.T) {
	sink := NewChannelSink(8)
	engine := newTestEngine(t, sink)

	ctx := WithClientIP(WithRequestID(context.Background(), "req-42"), "10.0.0.7")
	_, _ = engine.Derive(ctx, "example.com", "Tr0ub4dor&3", "")
	_, _ = engine.Derive(ctx, "example.com", "", "")

	events := collectEvents(t, sink, 2)

	ok := events[0]
	if ok.EventType != auditEventDeriveSuccess || !ok.Success {
		t.Fatalf("unexpected success event: %+v", ok)
	}
	if ok.RequestID != "req-42" || ok.IP != "10.0.0.7" {
		t.Fatalf("context fields missing: %+v", ok)
	}
	if ok.Identifier != "" {
		t.Fatalf("identifier recorded without IncludeIdentifier: %+v", ok)
	}

	bad := events[1]
	if bad.EventType != auditEventDeriveFailure || bad.Success {
		t.Fatalf("unexpected failure event: %+v", bad)
	}
	if bad.Error != string(auditErrMissingSecret) {
		t.Fatalf("expected missing_secret code, got %q", bad.Error)
	}
}

func TestAuditIncludeIdentifier(t *testing.T) {
	sink := NewChannelSink(4)
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.IncludeIdentifier = true

	engine, err := New().WithConfig(cfg).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	_, _ = engine.DeriveURL(context.Background(), "https://www.example.com", "Tr0ub4dor&3", "")

	ev := collectEvents(t, sink, 1)[0]
	if ev.Identifier != "example.com" {
		t.Fatalf("expected normalised identifier, got %q", ev.Identifier)
	}
	if ev.Metadata["op"] != opDeriveURL {
		t.Fatalf("expected op metadata, got %+v", ev.Metadata)
	}
}

func TestAuditReportHooks(t *testing.T) {
	sink := NewChannelSink(4)
	engine := newTestEngine(t, sink)

	engine.ReportUnauthorized(context.Background())
	engine.ReportRateLimited(context.Background(), "api")

	events := collectEvents(t, sink, 2)
	if events[0].EventType != auditEventAPIUnauthorized || events[0].Error != string(auditErrUnauthorized) {
		t.Fatalf("unexpected unauthorized event: %+v", events[0])
	}
	if events[1].EventType != auditEventRateLimitTriggered || events[1].Metadata["scope"] != "api" {
		t.Fatalf("unexpected rate limit event: %+v", events[1])
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricAPIUnauthorized] != 1 || snap.Counters[MetricRateLimitHit] != 1 {
		t.Fatalf("unexpected counters: %+v", snap.Counters)
	}
}

func TestAuditEventsNeverCarrySecrets(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.IncludeIdentifier = true
	engine, err := New().WithConfig(cfg).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	res, err := engine.Derive(context.Background(), "example.com", "Tr0ub4dor&3", "alice")
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	engine.Close()

	line := strings.TrimSpace(buf.String())
	var ev AuditEvent
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("audit line is not JSON: %v", err)
	}
	for _, secret := range []string{"Tr0ub4dor&3", "alice", res.Password} {
		if strings.Contains(line, secret) {
			t.Fatalf("audit output leaked %q: %s", secret, line)
		}
	}
}

func TestAuditErrorCodeMapping(t *testing.T) {
	cases := map[error]AuditErrorCode{
		nil:                       "",
		ErrMissingSecret:          auditErrMissingSecret,
		ErrInvalidURL:             auditErrInvalidURL,
		ErrConfigurationInvariant: auditErrConfiguration,
		ErrCanceled:               auditErrCanceled,
		ErrUnauthorized:           auditErrUnauthorized,
		ErrRateLimited:            auditErrRateLimited,
		ErrEngineClosed:           auditErrInternal,
	}
	for err, want := range cases {
		if got := auditErrorCode(err); got != want {
			t.Fatalf("auditErrorCode(%v) = %q, want %q", err, got, want)
		}
	}
}
