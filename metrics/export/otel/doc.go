// Package otel exports the engine metrics through OpenTelemetry observable
// instruments.
//
// [NewExporter] registers one Int64ObservableCounter per engine counter and
// one Int64ObservableGauge per latency bucket.  A single callback reads
// [fittrack.Engine.MetricsSnapshot] on each collection.
//
// # What this package must NOT do
//
//   - Own the MeterProvider (callers supply the Meter).
//   - Mutate engine state.
package otel
