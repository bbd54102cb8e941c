// Package session provides relational persistence for login sessions.
//
// # Storage model
//
// One row per login, keyed by the hex SHA-256 of the raw session token.  Rows
// reference users(id) with ON DELETE CASCADE.  Lookups preload the owning
// user's id, username and type so a single query resolves a request.
//
// # Architecture boundaries
//
// This package owns the [Store] (database operations) and the [Session] model.
// It does NOT verify cookie signatures, compare expiry against a clock, or make
// authorization decisions; those belong to the Engine.
//
// # What this package must NOT do
//
//   - Import fittrack or middleware (no upward imports).
//   - Store raw session tokens.
//   - Retry failed writes; a retried create would mint a second session.
package session
