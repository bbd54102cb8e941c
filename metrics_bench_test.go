package fittrack

import (
	"testing"
	"time"
)

var resolvePathMetricIDs = [...]MetricID{
	MetricSessionResolved,
	MetricSessionRejected,
	MetricSessionExpired,
	MetricLoginSuccess,
	MetricLoginFailure,
	MetricSessionCreated,
}

func BenchmarkMetricsInc(b *testing.B) {
	for _, enabled := range []bool{true, false} {
		m := NewMetrics(MetricsConfig{Enabled: enabled})
		name := "disabled"
		if enabled {
			name = "enabled"
		}

		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					m.Inc(MetricSessionResolved)
				}
			})
		})
	}
}

func BenchmarkMetricsIncMixedParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			m.Inc(resolvePathMetricIDs[idx])
			idx = (idx + 1) % len(resolvePathMetricIDs)
		}
	})
}

func BenchmarkMetricsObserveResolveLatency(b *testing.B) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	d := 3 * time.Millisecond
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Observe(MetricResolveLatency, d)
		}
	})
}
