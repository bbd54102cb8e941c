package session

import "time"

// Session is one authenticated client session.  ID is the hex SHA-256 of the
// raw token; the token itself is never stored.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    int64     `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"not null"`

	User Owner `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName implements the gorm tabler interface for Session.
func (Session) TableName() string { return "sessions" }

// Expired reports whether s is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Owner is the slice of the users table a resolved session carries.
type Owner struct {
	ID       int64  `gorm:"primaryKey"`
	Username string `gorm:"not null"`
	Type     string `gorm:"not null"`
}

// TableName implements the gorm tabler interface for Owner.
func (Owner) TableName() string { return "users" }
