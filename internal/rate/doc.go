// Package rate provides the Redis-backed login throttle used by the Engine.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit.  Key prefixes:
//   - ft:login:u:  failed logins per username (lowercased)
//   - ft:login:ip: failed logins per client IP
//
// A key blocks further attempts once its counter reaches MaxLoginAttempts.
//
// # What this package must NOT do
//
//   - Decide whether credentials are valid.
//   - Be imported outside the fittrack module.
package rate
