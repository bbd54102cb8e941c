package fittrack

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one in-process counter or histogram.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected credentials.
	MetricLoginFailure
	// MetricLoginRateLimited counts logins refused by the throttle.
	MetricLoginRateLimited
	// MetricSessionCreated counts issued sessions.
	MetricSessionCreated
	// MetricSessionResolved counts cookies that resolved to a live session.
	MetricSessionResolved
	// MetricSessionRejected counts cookies with a bad shape or signature, or
	// no stored row.
	MetricSessionRejected
	// MetricSessionExpired counts signed, stored cookies past their expiry.
	MetricSessionExpired
	// MetricSessionInvalidated counts session rows removed by logout.
	MetricSessionInvalidated
	// MetricLogoutAll counts logout operations.
	MetricLogoutAll
	// MetricSessionsPruned counts rows removed by the expiry sweeper.
	MetricSessionsPruned
	// MetricPasswordChangeSuccess counts completed password changes.
	MetricPasswordChangeSuccess
	// MetricPasswordChangeInvalidCurrent counts changes refused because the
	// current password did not verify.
	MetricPasswordChangeInvalidCurrent
	// MetricResolveLatency is the session resolution latency histogram.
	MetricResolveLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of lock-free counters.  A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all metrics.  Histogram buckets
// are non-cumulative.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns metrics configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	m.Add(id, 1)
}

// Add adds delta to id.
func (m *Metrics) Add(id MetricID, delta uint64) {
	if m == nil || !m.enabled || id >= metricIDCount || delta == 0 {
		return
	}
	atomic.AddUint64(&m.counters[id].value, delta)
}

// Observe records d in the histogram of id.  Only [MetricResolveLatency] has
// a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricResolveLatency {
		return
	}

	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value returns the current value of id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter, and the latency histogram when enabled.
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
		if id == MetricResolveLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricResolveLatency].buckets[i])
		}
		s.Histograms[MetricResolveLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
