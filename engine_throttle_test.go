package fittrack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func throttledConfig() Config {
	cfg := testConfig()
	cfg.Security.EnableLoginThrottle = true
	cfg.Security.MaxLoginAttempts = 3
	cfg.Security.LoginCooldownDuration = time.Minute
	return cfg
}

func TestBuildThrottleRequiresRedis(t *testing.T) {
	db := openTestDB(t)
	_, err := New().
		WithConfig(throttledConfig()).
		WithDB(db).
		WithUserProvider(&dbUserProvider{db: db}).
		Build()
	if err == nil {
		t.Fatalf("expected build error without redis")
	}
}

func TestLoginThrottle(t *testing.T) {
	mr, rdb := newTestRedis(t)
	f := newEngineFixture(t, throttledConfig(), func(b *Builder) { b.WithRedis(rdb) })
	ctx := WithClientIP(context.Background(), "203.0.113.7")
	f.addUser(t, "alice", "password-123", UserTypeUser)

	for i := 0; i < 3; i++ {
		if _, err := f.engine.Login(ctx, "alice", "bad-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}

	if _, err := f.engine.Login(ctx, "alice", "password-123"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected throttle, got %v", err)
	}
	if d := f.engine.LoginRetryAfter(ctx, "alice"); d <= 0 || d > time.Minute {
		t.Fatalf("retry after = %v", d)
	}

	mr.FastForward(time.Minute + time.Second)

	if _, err := f.engine.Login(ctx, "alice", "password-123"); err != nil {
		t.Fatalf("login after cooldown: %v", err)
	}
	if !f.engine.SecurityReport().LoginThrottleActive {
		t.Fatalf("report must show throttle")
	}
}

func TestLoginThrottleBackendDown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	f := newEngineFixture(t, throttledConfig(), func(b *Builder) { b.WithRedis(rdb) })
	f.addUser(t, "alice", "password-123", UserTypeUser)

	mr.Close()

	if _, err := f.engine.Login(context.Background(), "alice", "password-123"); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
}
