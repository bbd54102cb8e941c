package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/MrEthical07/fittrack"
)

// SessionResolver is the part of [fittrack.Engine] used by [RequireSession].
type SessionResolver interface {
	CookieName() string
	ResolveSession(ctx context.Context, cookieValue string) (*fittrack.ResolvedSession, error)
}

// type check
var _ SessionResolver = (*fittrack.Engine)(nil)

// AuthContext is the caller identity injected by [RequireSession].
type AuthContext struct {
	User    fittrack.AuthUser
	Session *fittrack.ResolvedSession
}

type authContextKey struct{}

// WithAuth returns a copy of ctx carrying ac.
func WithAuth(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, ac)
}

// AuthFromContext returns the identity injected by [RequireSession].
func AuthFromContext(ctx context.Context) (*AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey{}).(*AuthContext)
	return ac, ok && ac != nil
}

// RequireSession rejects requests without a live session with 401 and passes
// the others on with an [AuthContext].  Storage failures answer 500.  logger
// may be nil.
func RequireSession(engine SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeUnauthorized(w)
				return
			}

			cookie, err := r.Cookie(engine.CookieName())
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w)
				return
			}

			res, err := engine.ResolveSession(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, fittrack.ErrStorageUnavailable) {
					logger.ErrorContext(r.Context(), "resolving session", slogutil.KeyError, err)
					writeInternal(w)
					return
				}
				writeUnauthorized(w)
				return
			}

			ctx := WithAuth(r.Context(), &AuthContext{User: res.User, Session: res})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
