package fittrack

import (
	"context"
	"fmt"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/MrEthical07/fittrack/internal/flows"
)

// HashPassword hashes plaintext with the configured scrypt parameters.
func (e *Engine) HashPassword(plaintext string) (string, error) {
	if e == nil || e.hasher == nil {
		return "", ErrEngineNotReady
	}

	return e.hasher.Hash(plaintext)
}

// VerifyPassword reports whether plaintext matches the stored hash.  A
// malformed hash returns false with an error.
func (e *Engine) VerifyPassword(plaintext, stored string) (bool, error) {
	if e == nil || e.hasher == nil {
		return false, ErrEngineNotReady
	}

	return e.hasher.Verify(plaintext, stored)
}

// MinPasswordLength returns the configured minimum password length.
func (e *Engine) MinPasswordLength() int {
	return e.config.Password.MinLength
}

// ChangePassword replaces the password of userID.
//
// It returns [ErrPasswordPolicy] for a short new password,
// [ErrPasswordMismatch] when confirm differs and [ErrInvalidCredentials] when
// current does not verify.  Sessions of the user are kept.
func (e *Engine) ChangePassword(ctx context.Context, userID int64, current, next, confirm string) error {
	if e == nil || e.hasher == nil || e.userProvider == nil {
		return ErrEngineNotReady
	}

	res := flows.RunChangePassword(ctx, userID, current, next, confirm, e.flows.Password)

	var err error
	switch res.Failure {
	case flows.PasswordFailureNone:
		e.metrics.Inc(MetricPasswordChangeSuccess)
		e.emitAudit(ctx, auditRecord{
			eventType: auditEventPasswordChangeSuccess,
			success:   true,
			userID:    userID,
		})

		return nil
	case flows.PasswordFailureInvalidCurrent:
		e.metrics.Inc(MetricPasswordChangeInvalidCurrent)
		e.emitAudit(ctx, auditRecord{
			eventType: auditEventPasswordChangeInvalidOld,
			userID:    userID,
			err:       ErrInvalidCredentials,
		})

		return ErrInvalidCredentials
	case flows.PasswordFailurePolicy:
		err = ErrPasswordPolicy
	case flows.PasswordFailureMismatch:
		err = ErrPasswordMismatch
	case flows.PasswordFailureUserNotFound:
		err = ErrUserNotFound
	default:
		e.logger.ErrorContext(ctx, "changing password", "user_id", userID, slogutil.KeyError, res.Err)
		err = fmt.Errorf("%w: %v", ErrStorageUnavailable, res.Err)
	}

	e.emitAudit(ctx, auditRecord{
		eventType: auditEventPasswordChangeFailure,
		userID:    userID,
		err:       err,
	})

	return err
}
