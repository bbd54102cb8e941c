package rate

import "github.com/AdguardTeam/golibs/errors"

const (
	// ErrRateLimited is returned when the attempt budget is exhausted.
	ErrRateLimited errors.Error = "rate limited"

	// ErrRedisUnavailable wraps Redis transport failures.
	ErrRedisUnavailable errors.Error = "redis unavailable"
)
