// Package internal contains helper utilities that are intentionally private to
// fittrack: session token generation, session id derivation and cookie
// signatures.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: pure-function flow orchestrators for Engine operations
//   - rate: Redis-backed login throttling
//   - server: the HTTP API
//   - stores: gorm-backed domain data (users, foods, exercises, workouts, weights)
//
// # What this package must NOT do
//
//   - Export types that appear in the public fittrack API.
//   - Log tokens, signatures or the secret.
package internal
