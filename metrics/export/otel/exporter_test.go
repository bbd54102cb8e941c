package otel

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MrEthical07/fittrack"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot fittrack.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() fittrack.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := fittrack.MetricsSnapshot{
		Counters:   make(map[fittrack.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[fittrack.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		out.Histograms[k] = append([]uint64(nil), buckets...)
	}

	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.dropped
}

func newReader() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()

	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

// sumValue returns the single data point of the named Int64 sum.
func sumValue(t *testing.T, rm *metricdata.ResourceMetrics, name string) int64 {
	t.Helper()

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok || len(sum.DataPoints) != 1 {
				t.Fatalf("%s: unexpected data %T", name, m.Data)
			}

			return sum.DataPoints[0].Value
		}
	}
	t.Fatalf("%s not collected", name)

	return 0
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newReader()

	src := &fakeSource{
		snapshot: fittrack.MetricsSnapshot{
			Counters: map[fittrack.MetricID]uint64{
				fittrack.MetricLoginSuccess: 3,
			},
			Histograms: map[fittrack.MetricID][]uint64{
				fittrack.MetricResolveLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewExporter(provider.Meter("fittrack-test"), src)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if got := sumValue(t, &rm, "fittrack_login_success_total"); got != 3 {
		t.Fatalf("login success = %d, want 3", got)
	}
	if got := sumValue(t, &rm, "fittrack_audit_dropped_total"); got != 1 {
		t.Fatalf("audit dropped = %d, want 1", got)
	}
}

func TestExporterRejectsNilArgs(t *testing.T) {
	_, provider := newReader()

	if _, err := NewExporter(provider.Meter("fittrack-test"), nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("nil source: %v", err)
	}
	if _, err := NewExporter(nil, &fakeSource{}); !errors.Is(err, ErrNilMeter) {
		t.Fatalf("nil meter: %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newReader()

	src := &fakeSource{
		snapshot: fittrack.MetricsSnapshot{
			Counters: map[fittrack.MetricID]uint64{
				fittrack.MetricLoginSuccess: 1,
			},
			Histograms: map[fittrack.MetricID][]uint64{},
		},
	}

	exp, err := NewExporter(provider.Meter("fittrack-test"), src)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	defer func() { _ = exp.Close() }()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()

			src.mu.Lock()
			src.snapshot.Counters[fittrack.MetricLoginSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
