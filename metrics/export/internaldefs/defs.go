package internaldefs

import (
	pawma "github.com/dev-manthan-sharma/paw-ma"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   pawma.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   pawma.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: pawma.MetricDeriveSuccess, Name: "pawma_derive_success_total", Help: "Derivations that produced a password."},
	{ID: pawma.MetricDeriveFailure, Name: "pawma_derive_failure_total", Help: "Derivations that produced a failure."},
	{ID: pawma.MetricMissingSecret, Name: "pawma_missing_secret_total", Help: "Derivations rejected for an empty master secret."},
	{ID: pawma.MetricInvalidURL, Name: "pawma_invalid_url_total", Help: "Derivations rejected for an unparseable URL."},
	{ID: pawma.MetricFingerprint, Name: "pawma_fingerprint_total", Help: "Master-secret fingerprints computed."},
	{ID: pawma.MetricRateLimitHit, Name: "pawma_rate_limit_hit_total", Help: "API requests denied by the rate limiter."},
	{ID: pawma.MetricAPIUnauthorized, Name: "pawma_api_unauthorized_total", Help: "API requests rejected for a missing or invalid token."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: pawma.MetricDeriveLatency, Name: "pawma_derive_latency_seconds", Help: "Successful derivation latency."},
}

// HistogramBounds are the upper bounds of the engine's latency buckets, in
// seconds, as Prometheus le labels.
var HistogramBounds = []string{
	"0.001",
	"0.002",
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"+Inf",
}

// HistogramBoundSuffix is HistogramBounds in a form usable inside
// instrument names.
var HistogramBoundSuffix = []string{
	"0_001",
	"0_002",
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling missing
// buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
