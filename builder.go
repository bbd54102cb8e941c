package fittrack

import (
	"context"
	"log/slog"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/MrEthical07/fittrack/internal"
	internalaudit "github.com/MrEthical07/fittrack/internal/audit"
	"github.com/MrEthical07/fittrack/internal/flows"
	"github.com/MrEthical07/fittrack/internal/rate"
	"github.com/MrEthical07/fittrack/password"
	"github.com/MrEthical07/fittrack/session"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// dummyPassword is hashed once per engine so that logins for unknown users
// spend the same time in scrypt as real ones.
const dummyPassword = "fittrack-timing-equalizer"

// Builder assembles an [Engine].  A Builder can be used for one Build only.
type Builder struct {
	config Config
	db     *gorm.DB
	redis  redis.UniversalClient

	userProvider UserProvider
	auditSink    AuditSink
	logger       *slog.Logger
	clock        timeutil.Clock

	built bool
}

// New returns a Builder with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithDB sets the database that holds the users and sessions tables.
func (b *Builder) WithDB(db *gorm.DB) *Builder {
	b.db = db
	return b
}

// WithRedis sets the client used for login throttling.  It is required only
// when Security.EnableLoginThrottle is set.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider sets the credential source.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithAuditSink sets the destination of audit events.  It has effect only
// when Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the engine logger.  The default discards everything.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithClock sets the clock used for session expiry.  Tests pass a fake one.
func (b *Builder) WithClock(c timeutil.Clock) *Builder {
	b.clock = c
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the resolve latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.  It performs
// no I/O; tables are created by the store layer's migration.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.Error("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, errors.Annotate(err, "validating config: %w")
	}

	if b.db == nil {
		return nil, errors.Error("database required")
	}
	if b.userProvider == nil {
		return nil, errors.Error("user provider required")
	}
	if cfg.Security.EnableLoginThrottle && b.redis == nil {
		return nil, errors.Error("login throttle requires redis client")
	}

	hasher, err := password.NewScrypt(cfg.Password.hasher())
	if err != nil {
		return nil, err
	}
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}

	scheme, _ := cfg.Session.SignatureScheme.internal()

	logger := b.logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	clock := b.clock
	if clock == nil {
		clock = timeutil.SystemClock{}
	}

	engine := &Engine{
		config:       cfg,
		sessionStore: session.NewStore(b.db),
		signer:       internal.NewSigner(cfg.Session.Secret, scheme),
		hasher:       hasher,
		userProvider: b.userProvider,
		metrics:      NewMetrics(cfg.Metrics),
		clock:        clock,
		logger:       logger,
		dummyHash:    dummyHash,
	}

	if cfg.Security.EnableLoginThrottle {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle:      cfg.Security.EnableIPThrottle,
			MaxLoginAttempts:      cfg.Security.MaxLoginAttempts,
			LoginCooldownDuration: cfg.Security.LoginCooldownDuration,
		})
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink, logger.With(slogutil.KeyPrefix, "audit"))

	engine.flows = engine.flowDeps()

	b.built = true

	return engine, nil
}

// flowDeps binds the flow dependency sets to the engine's components.
func (e *Engine) flowDeps() flows.Deps {
	sessionDeps := flows.SessionDeps{
		NewToken:    internal.NewSessionToken,
		SessionID:   internal.SessionIDFromToken,
		Sign:        e.signer.Sign,
		Verify:      e.signer.Verify,
		JoinCookie:  internal.JoinCookie,
		SplitCookie: internal.SplitCookie,
		Now:         e.clock.Now,
		TTL:         e.config.Session.TTL,
		Store:       e.sessionStore,
	}

	isUserNotFound := func(err error) bool { return errors.Is(err, ErrUserNotFound) }
	getByID := func(ctx context.Context, id int64) (flows.LoginUserRecord, error) {
		u, err := e.userProvider.GetUserByID(ctx, id)
		return loginRecord(u), err
	}

	loginDeps := flows.LoginDeps{
		ClientIPFromContext: clientIPFromContext,
		GetUserByUsername: func(ctx context.Context, username string) (flows.LoginUserRecord, error) {
			u, err := e.userProvider.GetUserByUsername(ctx, username)
			return loginRecord(u), err
		},
		IsUserNotFound: isUserNotFound,
		VerifyPassword: e.hasher.Verify,
		DummyVerify: func(pw string) {
			_, _ = e.hasher.Verify(pw, e.dummyHash)
		},
		CreateSession: e.createSession,
		Warn: func(msg string, args ...any) {
			e.logger.Warn(msg, args...)
		},
	}
	if e.rateLimiter != nil {
		loginDeps.CheckLoginRate = e.rateLimiter.CheckLogin
		loginDeps.IncrementLoginRate = e.rateLimiter.IncrementLogin
		loginDeps.ResetLoginRate = e.rateLimiter.ResetLogin
		loginDeps.IsRateLimited = func(err error) bool { return errors.Is(err, rate.ErrRateLimited) }
	}

	return flows.Deps{
		Session: sessionDeps,
		Login:   loginDeps,
		Logout:  flows.LogoutDeps{Store: e.sessionStore},
		Password: flows.PasswordDeps{
			MinLength:          e.config.Password.MinLength,
			GetUserByID:        getByID,
			IsUserNotFound:     isUserNotFound,
			VerifyPassword:     e.hasher.Verify,
			HashPassword:       e.hasher.Hash,
			UpdatePasswordHash: e.userProvider.UpdatePasswordHash,
		},
	}
}

func loginRecord(u UserRecord) flows.LoginUserRecord {
	return flows.LoginUserRecord{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Type:         string(u.Type),
	}
}
