package fittrack

import (
	"context"
	"io"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/fittrack/internal/audit"
)

// UserType is the role of a user account.
type UserType string

const (
	// UserTypeAdmin may reach admin-gated routes.
	UserTypeAdmin UserType = "ADMIN"
	// UserTypeUser is the default role.
	UserTypeUser UserType = "USER"
)

// Valid reports whether t is a known role.
func (t UserType) Valid() bool {
	return t == UserTypeAdmin || t == UserTypeUser
}

// UserRecord is the credential view of a user that the Engine needs.
type UserRecord struct {
	ID           int64
	Username     string
	PasswordHash string
	Type         UserType
}

// UserProvider is the Engine's access to user credentials.  Implementations
// return [ErrUserNotFound] for unknown users.  UpdatePasswordHash also clears
// the user's first-login flag.
type UserProvider interface {
	GetUserByUsername(ctx context.Context, username string) (UserRecord, error)
	GetUserByID(ctx context.Context, id int64) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
}

// AuthUser is the identity injected into request contexts after a session
// resolves.
type AuthUser struct {
	ID       int64
	Username string
	Type     UserType
}

// IsAdmin reports whether u has the admin role.
func (u AuthUser) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}

// ResolvedSession is a validated, unexpired session together with its owner.
type ResolvedSession struct {
	User      AuthUser
	SessionID string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IssuedSession is returned once per login.  Token and CookieValue are never
// stored server side.
type IssuedSession struct {
	Token       string
	CookieValue string
	SessionID   string
	UserID      int64
	ExpiresAt   time.Time
}

// LoginResult is the outcome of a successful [Engine.Login].  User carries no
// password hash.
type LoginResult struct {
	User    UserRecord
	Session *IssuedSession
}

// AuditEvent is the audit record emitted by the Engine.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events.
type AuditSink = internalaudit.Sink

// NoOpSink discards audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers audit events in a channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes audit events as JSON lines.
type JSONWriterSink = internalaudit.JSONWriterSink

// SlogSink logs audit events.
type SlogSink = internalaudit.SlogSink

// NewChannelSink returns a [ChannelSink] with the given capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a [JSONWriterSink] writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewSlogSink returns a [SlogSink] logging through l.
func NewSlogSink(l *slog.Logger) *SlogSink {
	return internalaudit.NewSlogSink(l)
}
