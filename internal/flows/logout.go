package flows

import "context"

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Store SessionStore
}

// RunLogoutAll deletes every session of userID and returns how many were
// removed.  A user without sessions is not an error.
func RunLogoutAll(ctx context.Context, userID int64, deps LogoutDeps) (int64, error) {
	return deps.Store.DeleteAllForUser(ctx, userID)
}
