package flows

import "context"

// PasswordFailureKind classifies change-password failures.
type PasswordFailureKind int

const (
	PasswordFailureNone PasswordFailureKind = iota
	PasswordFailurePolicy
	PasswordFailureMismatch
	PasswordFailureInvalidCurrent
	PasswordFailureUserNotFound
	PasswordFailureBackend
)

// PasswordResult carries a classified failure, if any.
type PasswordResult struct {
	Failure PasswordFailureKind
	Err     error
}

// PasswordDeps captures change-password dependencies.
type PasswordDeps struct {
	MinLength          int
	GetUserByID        func(ctx context.Context, id int64) (LoginUserRecord, error)
	IsUserNotFound     func(error) bool
	VerifyPassword     func(password, hash string) (bool, error)
	HashPassword       func(password string) (string, error)
	UpdatePasswordHash func(ctx context.Context, id int64, hash string) error
}

// RunChangePassword replaces the password of userID after checking the
// current one.  Policy checks run first so a weak new password never costs a
// hash verification.  Existing sessions are left untouched.
func RunChangePassword(ctx context.Context, userID int64, current, next, confirm string, deps PasswordDeps) PasswordResult {
	if len(next) < deps.MinLength {
		return PasswordResult{Failure: PasswordFailurePolicy}
	}
	if next != confirm {
		return PasswordResult{Failure: PasswordFailureMismatch}
	}

	user, err := deps.GetUserByID(ctx, userID)
	if err != nil {
		if deps.IsUserNotFound(err) {
			return PasswordResult{Failure: PasswordFailureUserNotFound, Err: err}
		}
		return PasswordResult{Failure: PasswordFailureBackend, Err: err}
	}

	ok, err := deps.VerifyPassword(current, user.PasswordHash)
	if err != nil || !ok {
		return PasswordResult{Failure: PasswordFailureInvalidCurrent, Err: err}
	}

	hash, err := deps.HashPassword(next)
	if err != nil {
		return PasswordResult{Failure: PasswordFailureBackend, Err: err}
	}

	if err = deps.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if deps.IsUserNotFound(err) {
			return PasswordResult{Failure: PasswordFailureUserNotFound, Err: err}
		}
		return PasswordResult{Failure: PasswordFailureBackend, Err: err}
	}

	return PasswordResult{}
}
