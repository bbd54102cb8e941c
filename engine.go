package fittrack

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/MrEthical07/fittrack/internal"
	internalaudit "github.com/MrEthical07/fittrack/internal/audit"
	"github.com/MrEthical07/fittrack/internal/flows"
	"github.com/MrEthical07/fittrack/internal/rate"
	"github.com/MrEthical07/fittrack/password"
	"github.com/MrEthical07/fittrack/session"
)

// Engine issues, resolves and revokes sessions and authenticates users.
//
// Engine instances are configured once through [Builder] and then treated as
// immutable.  All methods are safe for concurrent use.
type Engine struct {
	config       Config
	sessionStore *session.Store
	signer       *internal.Signer
	hasher       *password.Scrypt
	userProvider UserProvider
	rateLimiter  *rate.Limiter
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
	clock        timeutil.Clock
	logger       *slog.Logger
	dummyHash    string
	flows        flows.Deps
}

// Close stops the audit dispatcher after draining queued events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped returns how many audit events were dropped because the buffer
// was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return (*Metrics)(nil).Snapshot()
	}
	return e.metrics.Snapshot()
}

/*
====================================
LOGIN
====================================
*/

// Login authenticates username and password and issues a new session.
//
// Every credential problem returns [ErrInvalidCredentials].  While throttled
// it returns [ErrLoginRateLimited], even for a correct password.  Backend
// failures wrap [ErrStorageUnavailable].
func (e *Engine) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if e == nil || e.hasher == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunLogin(ctx, username, password, e.flows.Login)
	switch res.Failure {
	case flows.LoginFailureNone:
		e.metrics.Inc(MetricLoginSuccess)
		e.emitAudit(ctx, auditRecord{
			eventType: auditEventLoginSuccess,
			success:   true,
			userID:    res.User.ID,
			username:  res.User.Username,
			sessionID: res.Session.Session.ID,
		})

		return &LoginResult{
			User: UserRecord{
				ID:       res.User.ID,
				Username: res.User.Username,
				Type:     UserType(res.User.Type),
			},
			Session: issuedFromCreated(res.Session),
		}, nil
	case flows.LoginFailureRateLimited:
		e.metrics.Inc(MetricLoginRateLimited)
		e.emitAudit(ctx, auditRecord{
			eventType: auditEventLoginRateLimited,
			userID:    res.User.ID,
			username:  res.Username,
			err:       ErrLoginRateLimited,
		})

		return nil, ErrLoginRateLimited
	case flows.LoginFailureInvalidCredentials:
		e.metrics.Inc(MetricLoginFailure)
		e.emitAudit(ctx, auditRecord{
			eventType: auditEventLoginFailure,
			userID:    res.User.ID,
			username:  res.Username,
			err:       ErrInvalidCredentials,
			metadata: func() map[string]string {
				return map[string]string{"reason": res.Reason}
			},
		})

		return nil, ErrInvalidCredentials
	case flows.LoginFailureSession:
		e.metrics.Inc(MetricLoginFailure)
		e.emitAudit(ctx, auditRecord{
			eventType: auditEventLoginFailure,
			userID:    res.User.ID,
			username:  res.Username,
			err:       res.Err,
		})

		return nil, res.Err
	default:
		e.logger.ErrorContext(ctx, "login backend failure", slogutil.KeyError, res.Err)

		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, res.Err)
	}
}

// LoginRetryAfter returns how long username stays throttled.  It returns the
// full cooldown when the limiter cannot answer, and zero when throttling is
// disabled.
func (e *Engine) LoginRetryAfter(ctx context.Context, username string) time.Duration {
	if e == nil || e.rateLimiter == nil {
		return 0
	}

	d, err := e.rateLimiter.RetryAfter(ctx, username)
	if err != nil || d <= 0 {
		return e.config.Security.LoginCooldownDuration
	}

	return d
}

/*
====================================
SESSIONS
====================================
*/

// CreateSession issues a session for userID and returns the raw token and
// signed cookie value.  Storage errors wrap [ErrSessionCreationFailed] and
// are not retried.
func (e *Engine) CreateSession(ctx context.Context, userID int64) (*IssuedSession, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}

	created, err := e.createSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	return issuedFromCreated(created), nil
}

func (e *Engine) createSession(ctx context.Context, userID int64) (*flows.CreatedSession, error) {
	created, err := flows.RunCreateSession(ctx, userID, e.flows.Session)
	if err != nil {
		e.logger.ErrorContext(ctx, "creating session", "user_id", userID, slogutil.KeyError, err)

		return nil, fmt.Errorf("%w: %w", ErrSessionCreationFailed, err)
	}

	e.metrics.Inc(MetricSessionCreated)
	e.emitAudit(ctx, auditRecord{
		eventType: auditEventSessionCreated,
		success:   true,
		userID:    userID,
		sessionID: created.Session.ID,
	})
	e.logger.DebugContext(ctx, "session created", "user_id", userID)

	return created, nil
}

// ValidateSessionToken reports whether cookieValue is well formed and carries
// a valid signature.  It does not consult storage.
func (e *Engine) ValidateSessionToken(cookieValue string) bool {
	if e == nil || e.signer == nil {
		return false
	}

	return flows.RunValidateCookie(cookieValue, e.flows.Session)
}

// ResolveSession returns the live session for cookieValue together with its
// owner.
//
// Bad shape or signature returns [ErrUnauthorized].  Unknown and expired
// sessions return [ErrSessionNotFound].  Expired rows are not deleted.  Only
// storage failures return an error wrapping [ErrStorageUnavailable].
func (e *Engine) ResolveSession(ctx context.Context, cookieValue string) (*ResolvedSession, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	res := flows.RunResolve(ctx, cookieValue, e.flows.Session)
	e.metrics.Observe(MetricResolveLatency, time.Since(start))

	switch res.Failure {
	case flows.ResolveFailureNone:
		e.metrics.Inc(MetricSessionResolved)
	case flows.ResolveFailureMalformed, flows.ResolveFailureSignature:
		e.metrics.Inc(MetricSessionRejected)

		return nil, ErrUnauthorized
	case flows.ResolveFailureNotFound:
		e.metrics.Inc(MetricSessionRejected)

		return nil, ErrSessionNotFound
	case flows.ResolveFailureExpired:
		e.metrics.Inc(MetricSessionExpired)

		return nil, ErrSessionNotFound
	default:
		e.logger.ErrorContext(ctx, "resolving session", slogutil.KeyError, res.Err)

		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, res.Err)
	}

	sess := res.Session

	return &ResolvedSession{
		User: AuthUser{
			ID:       sess.User.ID,
			Username: sess.User.Username,
			Type:     UserType(sess.User.Type),
		},
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// InvalidateAllSessions deletes every session of userID and returns how many
// were removed.  Cookies issued before the call stop resolving immediately.
func (e *Engine) InvalidateAllSessions(ctx context.Context, userID int64) (int64, error) {
	if e == nil || e.sessionStore == nil {
		return 0, ErrEngineNotReady
	}

	n, err := flows.RunLogoutAll(ctx, userID, e.flows.Logout)
	if err != nil {
		e.logger.ErrorContext(ctx, "invalidating sessions", "user_id", userID, slogutil.KeyError, err)
		e.emitAudit(ctx, auditRecord{
			eventType: auditEventLogoutAll,
			userID:    userID,
			err:       ErrSessionInvalidationFailed,
		})

		return 0, fmt.Errorf("%w: %w", ErrSessionInvalidationFailed, err)
	}

	e.metrics.Inc(MetricLogoutAll)
	e.metrics.Add(MetricSessionInvalidated, uint64(n))
	e.emitAudit(ctx, auditRecord{
		eventType: auditEventLogoutAll,
		success:   true,
		userID:    userID,
		metadata: func() map[string]string {
			return map[string]string{"sessions": fmt.Sprint(n)}
		},
	})
	e.logger.DebugContext(ctx, "sessions invalidated", "user_id", userID, "count", n)

	return n, nil
}

// ActiveSessionCount returns the number of unexpired sessions of userID.
func (e *Engine) ActiveSessionCount(ctx context.Context, userID int64) (int64, error) {
	if e == nil || e.sessionStore == nil {
		return 0, ErrEngineNotReady
	}

	n, err := e.sessionStore.CountActiveForUser(ctx, userID, e.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return n, nil
}

// PruneExpiredSessions deletes every expired session and returns how many
// rows were removed.
func (e *Engine) PruneExpiredSessions(ctx context.Context) (int64, error) {
	if e == nil || e.sessionStore == nil {
		return 0, ErrEngineNotReady
	}

	n, err := e.sessionStore.DeleteExpired(ctx, e.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	e.metrics.Add(MetricSessionsPruned, uint64(n))

	return n, nil
}

// RunSessionSweeper prunes expired sessions every Session.CleanupInterval
// until ctx is done.  It returns immediately when the interval is not
// positive.
func (e *Engine) RunSessionSweeper(ctx context.Context) {
	if e == nil || e.config.Session.CleanupInterval <= 0 {
		return
	}

	ticker := time.NewTicker(e.config.Session.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := e.PruneExpiredSessions(ctx)
			if err != nil {
				if !errors.Is(ctx.Err(), context.Canceled) {
					e.logger.WarnContext(ctx, "pruning expired sessions", slogutil.KeyError, err)
				}
				continue
			}
			if n > 0 {
				e.logger.DebugContext(ctx, "pruned expired sessions", "count", n)
			}
		}
	}
}

/*
====================================
COOKIES
====================================
*/

// CookieName returns the name of the session cookie.
func (e *Engine) CookieName() string {
	return e.config.Session.CookieName
}

// SessionCookie returns the Set-Cookie value for issued.
func (e *Engine) SessionCookie(issued *IssuedSession) *http.Cookie {
	return &http.Cookie{
		Name:     e.config.Session.CookieName,
		Value:    issued.CookieValue,
		Path:     "/",
		Expires:  issued.ExpiresAt,
		MaxAge:   int(e.config.Session.TTL / time.Second),
		Secure:   e.config.Session.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie returns a cookie that makes browsers drop the session
// cookie.
func (e *Engine) ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     e.config.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   e.config.Session.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func issuedFromCreated(c *flows.CreatedSession) *IssuedSession {
	return &IssuedSession{
		Token:       c.Token,
		CookieValue: c.CookieValue,
		SessionID:   c.Session.ID,
		UserID:      c.Session.UserID,
		ExpiresAt:   c.Session.ExpiresAt,
	}
}
