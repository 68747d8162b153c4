package gtindata

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one client-side counter or histogram.
type MetricID uint16

const (
	// MetricRequestSuccess counts calls answered with a 2xx status.
	MetricRequestSuccess MetricID = iota
	// MetricConnectionError counts calls that never reached a response.
	MetricConnectionError
	// MetricUnauthorized counts 401 responses.
	MetricUnauthorized
	// MetricForbidden counts 403 responses.
	MetricForbidden
	// MetricNotFound counts 404 responses.
	MetricNotFound
	// MetricValidationRejected counts 400 responses and client-side
	// input rejections.
	MetricValidationRejected
	// MetricRateLimited counts 429 responses.
	MetricRateLimited
	// MetricServerError counts all other non-2xx responses.
	MetricServerError
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess
	// MetricLoginFailure counts failed logins.
	MetricLoginFailure
	// MetricRegisterSuccess counts successful registrations.
	MetricRegisterSuccess
	// MetricSessionExpired counts forced logouts triggered by a 401.
	MetricSessionExpired
	// MetricKeyCreated counts created API keys.
	MetricKeyCreated
	// MetricKeyRevoked counts revoked API keys.
	MetricKeyRevoked
	// MetricRequestLatency is the request round-trip latency histogram.
	MetricRequestLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// paddedCounter keeps each counter on its own cache line so concurrent
// increments from fan-out loads do not false-share.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the client's atomic counters. A nil or disabled Metrics
// turns every operation into a no-op.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and
// histograms, keyed by MetricID.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics builds a Metrics sized for all known metric IDs.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded at all.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records one latency sample. Only MetricRequestLatency is a
// histogram; other IDs are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricRequestLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and histogram. Safe to call while
// requests are in flight; each value is read atomically.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRequestLatency].buckets[i])
		}
		s.Histograms[MetricRequestLatency] = buckets
	}

	return s
}

func metricForKind(kind ErrorKind) MetricID {
	switch kind {
	case KindConnection:
		return MetricConnectionError
	case KindUnauthorized:
		return MetricUnauthorized
	case KindForbidden:
		return MetricForbidden
	case KindNotFound:
		return MetricNotFound
	case KindValidation:
		return MetricValidationRejected
	case KindRateLimited:
		return MetricRateLimited
	default:
		return MetricServerError
	}
}

// bucketIndex maps a round-trip duration to its histogram bucket.
// Bounds are tuned for WAN calls, 25ms through 2.5s.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 25:
		return 0
	case ms <= 50:
		return 1
	case ms <= 100:
		return 2
	case ms <= 250:
		return 3
	case ms <= 500:
		return 4
	case ms <= 1000:
		return 5
	case ms <= 2500:
		return 6
	default:
		return 7
	}
}
