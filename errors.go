package fittrack

import "github.com/AdguardTeam/golibs/errors"

const (
	// ErrUnauthorized is returned when a request carries no usable session.
	ErrUnauthorized errors.Error = "unauthorized"
	// ErrForbidden is returned when an authenticated caller lacks the role or
	// ownership an operation needs.
	ErrForbidden errors.Error = "forbidden"
	// ErrInvalidCredentials is the single login failure surfaced to callers.
	// It never says whether the username or the password was wrong.
	ErrInvalidCredentials errors.Error = "invalid username or password"
	// ErrUserNotFound is returned by [UserProvider] implementations.
	ErrUserNotFound errors.Error = "user not found"
	// ErrLoginRateLimited is returned while a username or IP is throttled.
	ErrLoginRateLimited errors.Error = "login rate limited"
	// ErrSessionNotFound covers forged, unknown and expired session cookies.
	ErrSessionNotFound errors.Error = "session not found"
	// ErrSessionCreationFailed wraps storage failures while issuing a session.
	ErrSessionCreationFailed errors.Error = "session creation failed"
	// ErrSessionInvalidationFailed wraps storage failures during logout.
	ErrSessionInvalidationFailed errors.Error = "session invalidation failed"
	// ErrStorageUnavailable wraps database and cache transport failures.
	ErrStorageUnavailable errors.Error = "storage unavailable"
	// ErrPasswordPolicy is returned when a new password is too short.
	ErrPasswordPolicy errors.Error = "password policy violation"
	// ErrPasswordMismatch is returned when the confirmation differs.
	ErrPasswordMismatch errors.Error = "passwords do not match"
	// ErrEngineNotReady is returned by methods called on a nil or partially
	// built Engine.
	ErrEngineNotReady errors.Error = "engine not initialized"
	// ErrSecretTooShort is returned by [Config.Validate] for a weak secret.
	ErrSecretTooShort errors.Error = "session secret must be at least 32 characters"
)
