package session

import (
	"context"
	"fmt"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"gorm.io/gorm"
)

const (
	// ErrNotFound is returned by [Store.Get] when no row has the id.
	ErrNotFound errors.Error = "session not found"

	// ErrStoreUnavailable wraps every driver error returned by [Store].
	ErrStoreUnavailable errors.Error = "session store unavailable"
)

// Store persists sessions in the relational database.  All methods are safe
// for concurrent use; atomicity comes from the database.
type Store struct {
	db *gorm.DB
}

// NewStore returns a store backed by db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the sessions table.  The users table must
// already exist.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Session{}); err != nil {
		return unavailable(err)
	}

	return nil
}

// Save inserts sess.  An id collision is reported as an error rather than
// overwriting the existing row.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	// SQLite compares timestamps as text, so keep a single zone.
	sess.CreatedAt = sess.CreatedAt.UTC()
	sess.ExpiresAt = sess.ExpiresAt.UTC()

	if err := s.db.WithContext(ctx).Omit("User").Create(sess).Error; err != nil {
		return unavailable(err)
	}

	return nil
}

// Get returns the session with id together with its owner.  Expiry is not
// checked here.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		Take(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, unavailable(err)
	}

	if sess.User.ID == 0 {
		// Owner row vanished without the cascade firing.
		return nil, ErrNotFound
	}

	return &sess, nil
}

// Delete removes a single session.  Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Session{}).Error; err != nil {
		return unavailable(err)
	}

	return nil
}

// DeleteAllForUser removes every session of userID and returns how many rows
// were deleted.
func (s *Store) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Session{})
	if res.Error != nil {
		return 0, unavailable(res.Error)
	}

	return res.RowsAffected, nil
}

// DeleteExpired removes sessions that expired at or before now.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&Session{})
	if res.Error != nil {
		return 0, unavailable(res.Error)
	}

	return res.RowsAffected, nil
}

// CountActiveForUser returns the number of unexpired sessions of userID.
func (s *Store) CountActiveForUser(ctx context.Context, userID int64, now time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&Session{}).
		Where("user_id = ? AND expires_at > ?", userID, now.UTC()).
		Count(&n).Error
	if err != nil {
		return 0, unavailable(err)
	}

	return n, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
