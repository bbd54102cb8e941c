// Package password implements password hashing and verification with scrypt.
//
// # Output format
//
// Hashes are stored as two hex strings joined by a colon:
//
//	<hex salt>:<hex derived key>
//
// The hex salt string itself (not its decoded bytes) is the KDF salt input, so
// values written by the previous Node deployment keep verifying.
//
// # Architecture boundaries
//
// This package owns hashing and verification only.  Password policy (minimum
// length, confirmation) is enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords; callers supply plaintext and receive hashes.
//   - Import any other fittrack package.
//   - Log plaintext passwords.
package password
