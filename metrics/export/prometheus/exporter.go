package prometheus

import (
	"github.com/MrEthical07/fittrack"
	"github.com/MrEthical07/fittrack/metrics/export/internaldefs"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSource is the part of [fittrack.Engine] the collector reads.
type MetricsSource interface {
	MetricsSnapshot() fittrack.MetricsSnapshot
	AuditDropped() uint64
}

// type check
var _ MetricsSource = (*fittrack.Engine)(nil)

type counterDesc struct {
	id   fittrack.MetricID
	desc *prometheus.Desc
}

type histogramDesc struct {
	id   fittrack.MetricID
	desc *prometheus.Desc
}

// Collector is a [prometheus.Collector] over engine metrics.
type Collector struct {
	source       MetricsSource
	counters     []counterDesc
	histograms   []histogramDesc
	auditDropped *prometheus.Desc
}

// type check
var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector reading from source.
func NewCollector(source MetricsSource) *Collector {
	c := &Collector{
		source:       source,
		counters:     make([]counterDesc, 0, len(internaldefs.CounterDefs)),
		histograms:   make([]histogramDesc, 0, len(internaldefs.HistogramDefs)),
		auditDropped: prometheus.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil),
	}

	for _, def := range internaldefs.CounterDefs {
		c.counters = append(c.counters, counterDesc{
			id:   def.ID,
			desc: prometheus.NewDesc(def.Name, def.Help, nil, nil),
		})
	}

	for _, def := range internaldefs.HistogramDefs {
		c.histograms = append(c.histograms, histogramDesc{
			id:   def.ID,
			desc: prometheus.NewDesc(def.Name, def.Help, nil, nil),
		})
	}

	return c
}

// Describe implements the [prometheus.Collector] interface for *Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, cd := range c.counters {
		ch <- cd.desc
	}
	for _, hd := range c.histograms {
		ch <- hd.desc
	}
	ch <- c.auditDropped
}

// Collect implements the [prometheus.Collector] interface for *Collector.
// Histograms are only reported when the engine records them.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.source == nil {
		return
	}

	snapshot := c.source.MetricsSnapshot()
	for _, cd := range c.counters {
		ch <- prometheus.MustNewConstMetric(cd.desc, prometheus.CounterValue, float64(snapshot.Counters[cd.id]))
	}

	for _, hd := range c.histograms {
		raw, ok := snapshot.Histograms[hd.id]
		if !ok {
			continue
		}

		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramUpperBounds))
		for i, le := range internaldefs.HistogramUpperBounds {
			buckets[le] = cumulative[i]
		}

		// The engine does not track the sum of observations.
		count := cumulative[len(cumulative)-1]
		ch <- prometheus.MustNewConstHistogram(hd.desc, count, 0, buckets)
	}

	ch <- prometheus.MustNewConstMetric(c.auditDropped, prometheus.CounterValue, float64(c.source.AuditDropped()))
}
