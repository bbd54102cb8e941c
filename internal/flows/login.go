package flows

import (
	"context"
	"strings"
)

// LoginUserRecord is a flow-local user model.
type LoginUserRecord struct {
	ID           int64
	Username     string
	PasswordHash string
	Type         string
}

// LoginFailureKind classifies login failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureRateLimited
	LoginFailureInvalidCredentials
	LoginFailureBackend
	LoginFailureSession
)

// LoginResult returns either the user and its new session or a classified
// failure.  Reason names the cause of an invalid-credentials failure for
// audit only; callers must not expose it.
type LoginResult struct {
	Failure  LoginFailureKind
	Err      error
	Reason   string
	Username string
	User     LoginUserRecord
	Session  *CreatedSession
}

// LoginDeps captures login dependencies.  The rate fields are nil when
// throttling is disabled.
type LoginDeps struct {
	ClientIPFromContext func(context.Context) string

	CheckLoginRate     func(ctx context.Context, username, ip string) error
	IncrementLoginRate func(ctx context.Context, username, ip string) error
	ResetLoginRate     func(ctx context.Context, username string) error
	IsRateLimited      func(error) bool

	GetUserByUsername func(ctx context.Context, username string) (LoginUserRecord, error)
	IsUserNotFound    func(error) bool
	VerifyPassword    func(password, hash string) (bool, error)
	// DummyVerify burns the same hashing time as a real verification.
	DummyVerify func(password string)

	CreateSession func(ctx context.Context, userID int64) (*CreatedSession, error)
	Warn          func(msg string, args ...any)
}

// RunLogin authenticates username and password and issues a session.  Unknown
// users, wrong passwords and malformed stored hashes all end in
// [LoginFailureInvalidCredentials].
func RunLogin(ctx context.Context, username, password string, deps LoginDeps) LoginResult {
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.IsRateLimited == nil {
		deps.IsRateLimited = func(error) bool { return true }
	}
	if deps.DummyVerify == nil {
		deps.DummyVerify = func(string) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}

	username = strings.TrimSpace(username)
	ip := deps.ClientIPFromContext(ctx)

	if deps.CheckLoginRate != nil {
		if err := deps.CheckLoginRate(ctx, username, ip); err != nil {
			return rateFailure(username, err, deps)
		}
	}

	fail := func(userID int64, reason string) LoginResult {
		if deps.IncrementLoginRate != nil {
			if err := deps.IncrementLoginRate(ctx, username, ip); err != nil {
				res := rateFailure(username, err, deps)
				res.User.ID = userID
				return res
			}
		}
		return LoginResult{
			Failure:  LoginFailureInvalidCredentials,
			Reason:   reason,
			Username: username,
			User:     LoginUserRecord{ID: userID, Username: username},
		}
	}

	if username == "" || password == "" {
		deps.DummyVerify(password)
		return fail(0, "empty_credentials")
	}

	user, err := deps.GetUserByUsername(ctx, username)
	if err != nil {
		if deps.IsUserNotFound(err) {
			deps.DummyVerify(password)
			return fail(0, "user_not_found")
		}
		return LoginResult{Failure: LoginFailureBackend, Err: err, Username: username}
	}

	ok, err := deps.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		deps.Warn("stored password hash is malformed", "user_id", user.ID)
		return fail(user.ID, "malformed_hash")
	} else if !ok {
		return fail(user.ID, "password_mismatch")
	}

	if deps.ResetLoginRate != nil {
		if err = deps.ResetLoginRate(ctx, username); err != nil {
			deps.Warn("resetting login throttle failed", "err", err)
		}
	}

	created, err := deps.CreateSession(ctx, user.ID)
	if err != nil {
		return LoginResult{Failure: LoginFailureSession, Err: err, Username: username, User: user}
	}

	user.PasswordHash = ""

	return LoginResult{Username: username, User: user, Session: created}
}

func rateFailure(username string, err error, deps LoginDeps) LoginResult {
	if deps.IsRateLimited(err) {
		return LoginResult{Failure: LoginFailureRateLimited, Err: err, Username: username}
	}

	return LoginResult{Failure: LoginFailureBackend, Err: err, Username: username}
}
