package rate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/redis/go-redis/v9"
)

// Key prefixes of the failed-login counters.
const (
	keyPrefixUser = "ft:login:u:"
	keyPrefixIP   = "ft:login:ip:"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
}

// Limiter counts failed logins per username and, optionally, per IP in fixed
// windows stored in Redis.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) (l *Limiter) {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// keys returns the counters a login attempt touches.  The username counter
// is always first.
func (l *Limiter) keys(username, ip string) (keys []string) {
	keys = []string{keyPrefixUser + strings.ToLower(username)}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, keyPrefixIP+ip)
	}

	return keys
}

// CheckLogin returns [ErrRateLimited] when username or ip has used up its
// budget of failed attempts in the current window.
func (l *Limiter) CheckLogin(ctx context.Context, username, ip string) (err error) {
	vals, err := l.redis.MGet(ctx, l.keys(username, ip)...).Result()
	if err != nil {
		return unavailable(err)
	}

	for _, v := range vals {
		if counterValue(v) >= int64(l.config.MaxLoginAttempts) {
			return ErrRateLimited
		}
	}

	return nil
}

// IncrementLogin records a failed login attempt.  It returns [ErrRateLimited]
// when the attempt went over the budget.
func (l *Limiter) IncrementLogin(ctx context.Context, username, ip string) (err error) {
	keys := l.keys(username, ip)

	incrs := make([]*redis.IntCmd, len(keys))
	_, err = l.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for i, k := range keys {
			incrs[i] = p.Incr(ctx, k)
		}

		return nil
	})
	if err != nil {
		return unavailable(err)
	}

	limited := false
	for i, cmd := range incrs {
		n := cmd.Val()
		if n == 1 {
			// The first hit opens the window.
			err = l.redis.Expire(ctx, keys[i], l.config.LoginCooldownDuration).Err()
			if err != nil {
				return unavailable(err)
			}
		}

		limited = limited || n > int64(l.config.MaxLoginAttempts)
	}

	if limited {
		return ErrRateLimited
	}

	return nil
}

// ResetLogin clears the username counter after a successful login.  The IP
// counter runs out on its own.
func (l *Limiter) ResetLogin(ctx context.Context, username string) (err error) {
	if err = l.redis.Del(ctx, l.keys(username, "")[0]).Err(); err != nil {
		return unavailable(err)
	}

	return nil
}

// RetryAfter returns how long username stays blocked, or zero.
func (l *Limiter) RetryAfter(ctx context.Context, username string) (d time.Duration, err error) {
	d, err = l.redis.PTTL(ctx, l.keys(username, "")[0]).Result()
	if err != nil {
		return 0, unavailable(err)
	}

	return max(d, 0), nil
}

// LoginAttempts returns the current counter for username.  Missing keys
// return zero.
func (l *Limiter) LoginAttempts(ctx context.Context, username string) (n int, err error) {
	v, err := l.redis.Get(ctx, l.keys(username, "")[0]).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, unavailable(err)
	}

	return int(counterValue(v)), nil
}

// counterValue converts an MGET or GET reply into a counter.  Missing and
// garbled values count as zero.
func counterValue(v any) (n int64) {
	s, ok := v.(string)
	if !ok {
		return 0
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}

	return n
}

func unavailable(err error) (wrapped error) {
	return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
}
