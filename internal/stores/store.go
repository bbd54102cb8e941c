package stores

import (
	"context"

	"github.com/AdguardTeam/golibs/timeutil"
	"gorm.io/gorm"
)

// Store is the data access layer.  It is safe for concurrent use.
type Store struct {
	db    *gorm.DB
	clock timeutil.Clock
}

// New returns a store backed by db.  db should come from [Open] and be
// migrated with [Migrate].  clock dates entries recorded without an explicit
// date; nil means the system clock.
func New(db *gorm.DB, clock timeutil.Clock) *Store {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}

	return &Store{db: db, clock: clock}
}

// withTx returns a copy of s bound to the transaction tx.
func (s *Store) withTx(tx *gorm.DB) *Store {
	return &Store{db: tx, clock: s.clock}
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return storeError("ping", err)
	}

	return storeError("ping", sqlDB.PingContext(ctx))
}

// exists reports whether model has a row matching the condition.
func (s *Store) exists(ctx context.Context, model any, query string, args ...any) (ok bool, err error) {
	var n int64
	err = s.db.WithContext(ctx).Model(model).Where(query, args...).Limit(1).Count(&n).Error

	return n > 0, err
}
