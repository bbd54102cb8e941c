// Package middleware exposes HTTP middleware that gates routes on a resolved
// session and on the admin role.
//
// # Guards
//
//   - [RequireSession]: reads the session cookie, resolves it through the
//     Engine and injects the caller into the request context.
//   - [RequireAdmin]: runs after RequireSession and rejects non-admin callers.
//
// Both write the JSON error envelope used across the API.
//
// # What this package must NOT do
//
//   - Parse, sign or hash session tokens directly (delegates to Engine).
//   - Access the database (Engine handles I/O).
//   - Make authorization decisions beyond authenticated and admin checks.
package middleware
