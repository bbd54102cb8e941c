package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/fittrack/session"
)

// SessionDeps captures token, signature and storage dependencies shared by
// session creation and resolution.
type SessionDeps struct {
	NewToken    func() (string, error)
	SessionID   func(token string) string
	Sign        func(token string) string
	Verify      func(token, sig string) bool
	JoinCookie  func(token, sig string) string
	SplitCookie func(value string) (token, sig string, ok bool)
	Now         func() time.Time
	TTL         time.Duration
	Store       SessionStore
}

// CreatedSession is the result of [RunCreateSession].  Token is the only copy
// of the raw token; the store keeps its hash.
type CreatedSession struct {
	Token       string
	CookieValue string
	Session     *session.Session
}

// RunCreateSession generates a token, stores its hashed id for userID and
// returns the signed cookie value.  Errors are returned as-is without retry.
func RunCreateSession(ctx context.Context, userID int64, deps SessionDeps) (*CreatedSession, error) {
	token, err := deps.NewToken()
	if err != nil {
		return nil, err
	}

	now := deps.Now()
	sess := &session.Session{
		ID:        deps.SessionID(token),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(deps.TTL),
	}
	if err = deps.Store.Save(ctx, sess); err != nil {
		return nil, err
	}

	return &CreatedSession{
		Token:       token,
		CookieValue: deps.JoinCookie(token, deps.Sign(token)),
		Session:     sess,
	}, nil
}

// RunValidateCookie reports whether value is a well-formed cookie carrying a
// valid signature.  It never touches storage.
func RunValidateCookie(value string, deps SessionDeps) bool {
	token, sig, ok := deps.SplitCookie(value)
	if !ok {
		return false
	}

	return deps.Verify(token, sig)
}

// ResolveFailureKind classifies resolution failures for root-level mapping.
type ResolveFailureKind int

const (
	ResolveFailureNone ResolveFailureKind = iota
	ResolveFailureMalformed
	ResolveFailureSignature
	ResolveFailureNotFound
	ResolveFailureExpired
	ResolveFailureBackend
)

// ResolveResult returns either the live session or a classified failure.
type ResolveResult struct {
	Failure ResolveFailureKind
	Err     error
	Session *session.Session
}

// RunResolve checks the cookie signature, loads the session with its owner
// and rejects it when expired.  Expired rows are left for the sweeper.
func RunResolve(ctx context.Context, value string, deps SessionDeps) ResolveResult {
	token, sig, ok := deps.SplitCookie(value)
	if !ok {
		return ResolveResult{Failure: ResolveFailureMalformed}
	}
	if !deps.Verify(token, sig) {
		return ResolveResult{Failure: ResolveFailureSignature}
	}

	sess, err := deps.Store.Get(ctx, deps.SessionID(token))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ResolveResult{Failure: ResolveFailureNotFound, Err: err}
		}
		return ResolveResult{Failure: ResolveFailureBackend, Err: err}
	}

	if sess.Expired(deps.Now()) {
		return ResolveResult{Failure: ResolveFailureExpired}
	}

	return ResolveResult{Session: sess}
}
