package fittrack

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)

	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsNilIsSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricResolveLatency, time.Millisecond)

	if m.Enabled() || m.Value(MetricLoginSuccess) != 0 {
		t.Fatalf("nil metrics must record nothing")
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap.Counters)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Add(MetricSessionInvalidated, 3)

	if got := m.Value(MetricLoginSuccess); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := m.Value(MetricSessionInvalidated); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricSessionResolved)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricSessionResolved); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}

	for _, d := range observations {
		m.Observe(MetricResolveLatency, d)
	}
	// Counters have no histogram.
	m.Observe(MetricLoginSuccess, time.Millisecond)

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricResolveLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}

	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
	if len(snap.Histograms) != 1 {
		t.Fatalf("expected a single histogram, got %d", len(snap.Histograms))
	}
}

func TestMetricsSnapshotConsistency(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginFailure)
	m.Inc(MetricLoginFailure)
	m.Observe(MetricResolveLatency, 2*time.Millisecond)

	snap := m.Snapshot()

	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("expected MetricLoginSuccess=1 got %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLoginFailure] != 2 {
		t.Fatalf("expected MetricLoginFailure=2 got %d", snap.Counters[MetricLoginFailure])
	}
	if _, ok := snap.Histograms[MetricResolveLatency]; ok {
		t.Fatalf("histogram must be absent when latency is disabled")
	}
	if _, ok := snap.Counters[MetricResolveLatency]; ok {
		t.Fatalf("latency id must not appear as a counter")
	}
}
