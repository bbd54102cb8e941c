package middleware

import "net/http"

// RequireAdmin passes only callers whose role is ADMIN.  It must run after
// [RequireSession]; a request without an auth context gets 401, a non-admin
// gets 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := AuthFromContext(r.Context())
		if !ok {
			writeUnauthorized(w)
			return
		}
		if !ac.User.IsAdmin() {
			writeForbidden(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
