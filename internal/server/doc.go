// Package server is the JSON HTTP API of fittrack.  It routes requests with
// [http.ServeMux] method patterns, gates them with the session and admin
// middleware and reads and writes data through [stores.Store].
package server
