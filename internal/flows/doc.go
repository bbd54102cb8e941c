// Package flows contains pure-function orchestrators for the Engine's session
// operations.
//
// Each flow function (RunCreateSession, RunResolve, RunLogin, etc.) accepts a
// typed dependency struct and returns either a result or a classified failure.
// The root package maps failure kinds onto its sentinel errors, metrics and
// audit events, which keeps the Engine type thin.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import fittrack (to avoid import cycles).
//   - Perform I/O directly; all I/O is mediated through dependency fields.
package flows
