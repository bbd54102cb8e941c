package fittrack

import (
	"context"

	"github.com/AdguardTeam/golibs/errors"
	internalaudit "github.com/MrEthical07/fittrack/internal/audit"
	"github.com/MrEthical07/fittrack/session"
)

const (
	auditEventLoginSuccess             = "login_success"
	auditEventLoginFailure             = "login_failure"
	auditEventLoginRateLimited         = "login_rate_limited"
	auditEventSessionCreated           = "session_created"
	auditEventLogoutAll                = "logout_all"
	auditEventPasswordChangeSuccess    = "password_change_success"
	auditEventPasswordChangeInvalidOld = "password_change_invalid_old"
	auditEventPasswordChangeFailure    = "password_change_failure"
)

// AuditErrorCode is the stable error classification stored in
// [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrUnauthorized          AuditErrorCode = "unauthorized"
	auditErrInvalidCredentials    AuditErrorCode = "invalid_credentials"
	auditErrRateLimited           AuditErrorCode = "rate_limited"
	auditErrSessionNotFound       AuditErrorCode = "session_not_found"
	auditErrUserNotFound          AuditErrorCode = "user_not_found"
	auditErrPasswordPolicy        AuditErrorCode = "password_policy"
	auditErrPasswordMismatch      AuditErrorCode = "password_mismatch"
	auditErrSessionCreationFailed AuditErrorCode = "session_creation_failed"
	auditErrSessionInvalidation   AuditErrorCode = "session_invalidation_failed"
	auditErrUnavailable           AuditErrorCode = "backend_unavailable"
	auditErrInternal              AuditErrorCode = "internal_error"
)

type auditRecord struct {
	eventType string
	success   bool
	userID    int64
	username  string
	sessionID string
	err       error
	metadata  func() map[string]string
}

func (e *Engine) emitAudit(ctx context.Context, rec auditRecord) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.Event{
		ID:        internalaudit.NewEventID(),
		Timestamp: e.clock.Now().UTC(),
		EventType: rec.eventType,
		UserID:    rec.userID,
		Username:  rec.username,
		SessionID: rec.sessionID,
		IP:        clientIPFromContext(ctx),
		Success:   rec.success,
	}
	if rec.metadata != nil {
		event.Metadata = rec.metadata()
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		if event.Metadata == nil {
			event.Metadata = map[string]string{}
		}
		event.Metadata["user_agent"] = ua
	}
	if code := auditErrorCode(rec.err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, session.ErrNotFound):
		return auditErrSessionNotFound
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrPasswordPolicy):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrPasswordMismatch):
		return auditErrPasswordMismatch
	case errors.Is(err, ErrSessionCreationFailed):
		return auditErrSessionCreationFailed
	case errors.Is(err, ErrSessionInvalidationFailed):
		return auditErrSessionInvalidation
	case errors.Is(err, ErrStorageUnavailable), errors.Is(err, session.ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
