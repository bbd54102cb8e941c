package fittrack

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/testutil/faketime"
	"github.com/MrEthical07/fittrack/session"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef-test"

// testUser mirrors the credential columns of the users table.
type testUser struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Username   string `gorm:"uniqueIndex;not null"`
	Password   string `gorm:"column:password;not null"`
	Type       string `gorm:"not null"`
	FirstLogin bool   `gorm:"not null;default:true"`
}

func (testUser) TableName() string { return "users" }

type dbUserProvider struct {
	db *gorm.DB

	mu                  sync.Mutex
	getByUsernameCalls  int
	updatePasswordCalls int
}

func (p *dbUserProvider) GetUserByUsername(ctx context.Context, username string) (UserRecord, error) {
	p.mu.Lock()
	p.getByUsernameCalls++
	p.mu.Unlock()

	var u testUser
	err := p.db.WithContext(ctx).Where("username = ?", username).Take(&u).Error
	return toRecord(u, err)
}

func (p *dbUserProvider) GetUserByID(ctx context.Context, id int64) (UserRecord, error) {
	var u testUser
	err := p.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	return toRecord(u, err)
}

func (p *dbUserProvider) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	p.mu.Lock()
	p.updatePasswordCalls++
	p.mu.Unlock()

	res := p.db.WithContext(ctx).Model(&testUser{}).Where("id = ?", id).
		Updates(map[string]any{"password": hash, "first_login": false})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func toRecord(u testUser, err error) (UserRecord, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return UserRecord{}, ErrUserNotFound
	} else if err != nil {
		return UserRecord{}, err
	}
	return UserRecord{ID: u.ID, Username: u.Username, PasswordHash: u.Password, Type: UserType(u.Type)}, nil
}

// testClock is a settable fake clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *testClock) fake() *faketime.Clock {
	return &faketime.Clock{OnNow: c.Now}
}

type engineFixture struct {
	engine   *Engine
	db       *gorm.DB
	provider *dbUserProvider
	clock    *testClock
}

// testPasswordConfig keeps scrypt cheap in tests.
func testPasswordConfig() PasswordConfig {
	return PasswordConfig{N: 1024, R: 8, P: 1, SaltLength: 16, KeyLength: 32, MinLength: 8}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Session.Secret = testSecret
	cfg.Password = testPasswordConfig()
	return cfg
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "engine.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err = db.AutoMigrate(&testUser{}); err != nil {
		t.Fatalf("migrate users: %v", err)
	}
	if err = session.NewStore(db).Migrate(context.Background()); err != nil {
		t.Fatalf("migrate sessions: %v", err)
	}

	return db
}

func newEngineFixture(t *testing.T, cfg Config, opts ...func(*Builder)) *engineFixture {
	t.Helper()

	db := openTestDB(t)
	provider := &dbUserProvider{db: db}
	clock := &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	b := New().
		WithConfig(cfg).
		WithDB(db).
		WithUserProvider(provider).
		WithClock(clock.fake())
	for _, o := range opts {
		o(b)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(engine.Close)

	return &engineFixture{engine: engine, db: db, provider: provider, clock: clock}
}

func (f *engineFixture) addUser(t *testing.T, username, password string, typ UserType) int64 {
	t.Helper()

	hash, err := f.engine.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := testUser{Username: username, Password: hash, Type: string(typ), FirstLogin: true}
	if err = f.db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	return u.ID
}
