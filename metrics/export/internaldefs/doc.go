// Package internaldefs holds the metric names, help strings and bucket
// bounds shared by the exporters, so that Prometheus and OTel report the
// same series.
//
// # What this package must NOT do
//
//   - Import an exporter package.
//   - Perform I/O.
package internaldefs
