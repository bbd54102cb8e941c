package flows

import (
	"context"

	"github.com/MrEthical07/fittrack/session"
)

// SessionStore is the subset of [session.Store] used by the flows.
type SessionStore interface {
	Save(ctx context.Context, sess *session.Session) error
	Get(ctx context.Context, id string) (*session.Session, error)
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
}

// type check
var _ SessionStore = (*session.Store)(nil)

// Deps groups flow dependency sets.  The root engine builds this once and
// delegates request methods to the matching flow.
type Deps struct {
	Session  SessionDeps
	Login    LoginDeps
	Logout   LogoutDeps
	Password PasswordDeps
}
