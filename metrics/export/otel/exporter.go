package otel

import (
	"context"
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/MrEthical07/fittrack"
	"github.com/MrEthical07/fittrack/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

const (
	// ErrNilMeter is returned by [NewExporter] without a meter.
	ErrNilMeter errors.Error = "nil meter"
	// ErrNilSource is returned by [NewExporter] without a source.
	ErrNilSource errors.Error = "nil metrics source"
)

// MetricsSource is the part of [fittrack.Engine] the exporter reads.
type MetricsSource interface {
	MetricsSnapshot() fittrack.MetricsSnapshot
	AuditDropped() uint64
}

// type check
var _ MetricsSource = (*fittrack.Engine)(nil)

type observedCounter struct {
	id         fittrack.MetricID
	instrument metric.Int64ObservableCounter
}

type observedHistogram struct {
	id      fittrack.MetricID
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// Exporter keeps the instruments registered until [Exporter.Close].
type Exporter struct {
	source       MetricsSource
	registration metric.Registration
	counters     []observedCounter
	histograms   []observedHistogram
	auditDropped metric.Int64ObservableCounter
}

// NewExporter creates the instruments on meter and registers the callback
// reading source.
func NewExporter(meter metric.Meter, source MetricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &Exporter{
		source:     source,
		counters:   make([]observedCounter, 0, len(internaldefs.CounterDefs)),
		histograms: make([]observedHistogram, 0, len(internaldefs.HistogramDefs)),
	}

	observables := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+len(internaldefs.HistogramDefs)*9+1)

	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		e.counters = append(e.counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		h := observedHistogram{id: def.ID}
		for i, suffix := range internaldefs.HistogramBoundSuffix {
			name := def.Name + "_bucket_le_" + suffix
			ins, err := meter.Int64ObservableGauge(name, metric.WithDescription("Cumulative histogram bucket count."))
			if err != nil {
				return nil, fmt.Errorf("create histogram bucket gauge %s: %w", name, err)
			}
			h.buckets[i] = ins
			observables = append(observables, ins)
		}

		countName := def.Name + "_count"
		countIns, err := meter.Int64ObservableGauge(countName, metric.WithDescription("Histogram total sample count."))
		if err != nil {
			return nil, fmt.Errorf("create histogram count gauge %s: %w", countName, err)
		}
		h.count = countIns
		observables = append(observables, countIns)
		e.histograms = append(e.histograms, h)
	}

	auditDropped, err := meter.Int64ObservableCounter(
		internaldefs.AuditDroppedName,
		metric.WithDescription(internaldefs.AuditDroppedHelp),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	e.auditDropped = auditDropped
	observables = append(observables, auditDropped)

	e.registration, err = meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	return e, nil
}

// observe is the metric.Callback reading one snapshot per collection.
func (e *Exporter) observe(_ context.Context, o metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		o.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
	}

	for _, h := range e.histograms {
		raw, ok := snapshot.Histograms[h.id]
		if !ok {
			continue
		}

		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		for i := range cumulative {
			o.ObserveInt64(h.buckets[i], int64(cumulative[i]))
		}
		o.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]))
	}

	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))

	return nil
}

// Close unregisters the callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}

	return e.registration.Unregister()
}
