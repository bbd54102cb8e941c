// Package stores is the relational data layer of the fitness API: users,
// foods, exercises, workouts and weight history, all kept in one SQLite
// database through gorm.
//
// [Store] also implements [fittrack.UserProvider], so the session engine and
// the HTTP handlers read users from the same tables.
//
// # What this package must NOT do
//
//   - Hash or verify passwords (the Engine owns credentials).
//   - Decide who may read or write a row (handlers do that).
package stores
