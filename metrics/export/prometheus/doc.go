// Package prometheus exports the engine metrics as a client_golang
// collector.
//
// [NewCollector] reads [fittrack.Engine] snapshots on every scrape.  Register
// it with the registry that serves /metrics.
//
// # What this package must NOT do
//
//   - Register anything in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
