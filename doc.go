// Package fittrack provides the session authentication engine of the fittrack
// API: scrypt password hashing, opaque signed session cookies backed by a
// relational store, login throttling, audit events and metrics.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// fittrack is the public surface.  It exposes [Engine], [Builder], [Config]
// and value types (IssuedSession, ResolvedSession, MetricsSnapshot, etc.).
// Flow orchestration, token encoding, rate limiting, audit dispatch and the
// HTTP API live under internal/.
//
// # What this package must NOT do
//
//   - Log or store raw session tokens.  Only hex(sha256(token)) reaches the
//     database.
//   - Perform I/O during [Builder.Build].
//   - Import any sub-package that re-imports fittrack (no import cycles).
//
// # Performance contract
//
// ResolveSession runs on every authenticated request.  It costs one indexed
// primary key lookup with the owner preloaded and no writes.
package fittrack
