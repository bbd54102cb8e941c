// Package audit implements async event dispatching for security-relevant
// operations such as logins, logouts and password changes.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, slog, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full or block-if-full semantics.
//   - [Event]: structured audit record with id, timestamp, type, user, IP and metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery.  It does NOT decide which
// events to emit; that belongs to the Engine.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import fittrack or any sibling internal package.
//   - Record passwords, tokens or cookie values.
package audit
