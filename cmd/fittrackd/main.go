// Command fittrackd serves the FitTrack HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/osutil"
	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/MrEthical07/fittrack"
	"github.com/MrEthical07/fittrack/internal/server"
	"github.com/MrEthical07/fittrack/internal/stores"
	promexport "github.com/MrEthical07/fittrack/metrics/export/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	confPath := flag.String("config", "", "path to an optional YAML configuration file")
	flag.Parse()

	conf, err := loadConfig(*confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fittrackd: %s\n", err)
		os.Exit(osutil.ExitCodeArgumentError)
	}

	if err = conf.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "fittrackd: invalid configuration: %s\n", err)
		os.Exit(osutil.ExitCodeArgumentError)
	}

	l, logCloser, err := newLogger(&conf.Log, conf.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fittrackd: %s\n", err)
		os.Exit(osutil.ExitCodeFailure)
	}
	defer func() { _ = logCloser.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err = run(ctx, conf, l); err != nil {
		l.ErrorContext(ctx, "fatal", slogutil.KeyError, err)
		_ = logCloser.Close()
		os.Exit(osutil.ExitCodeFailure)
	}
}

// newLogger returns the process logger.  The closer releases the log file,
// if any.
func newLogger(c *logConfig, appEnv string) (l *slog.Logger, closer io.Closer, err error) {
	var lvl slog.Level
	if err = lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var out io.WriteCloser = nopCloser{Writer: os.Stdout}
	if c.File != "" {
		out = &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAge,
			Compress:   c.Compress,
			LocalTime:  false,
		}
	}

	format := slogutil.FormatDefault
	if appEnv == appEnvProduction || c.File != "" {
		format = slogutil.FormatJSON
	}

	return slogutil.New(&slogutil.Config{
		Output:       out,
		Format:       format,
		Level:        lvl,
		AddTimestamp: true,
	}), out, nil
}

type nopCloser struct {
	io.Writer
}

// Close implements the [io.Closer] interface for nopCloser.
func (nopCloser) Close() (err error) { return nil }

// run wires the process together and blocks until ctx is canceled.
func run(ctx context.Context, conf *config, l *slog.Logger) (err error) {
	db, err := stores.Open(conf.DatabasePath, strings.EqualFold(conf.Log.Level, "debug"))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { err = errors.WithDeferred(err, stores.Close(db)) }()

	if err = stores.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	store := stores.New(db, timeutil.SystemClock{})

	b := fittrack.New().
		WithConfig(conf.engineConfig()).
		WithDB(db).
		WithUserProvider(store).
		WithLogger(l.With(slogutil.KeyPrefix, "engine"))

	var rdb *redis.Client
	if conf.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		defer func() { err = errors.WithDeferred(err, rdb.Close()) }()

		b = b.WithRedis(rdb)
	}

	if sink := newAuditSink(conf.Audit, l); sink != nil {
		b = b.WithAuditSink(sink)
	}

	engine, err := b.Build()
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}
	defer engine.Close()

	logSecurityReport(ctx, l, engine.SecurityReport())

	if err = bootstrapAdmin(ctx, conf.Admin, engine, store, l); err != nil {
		return fmt.Errorf("bootstrapping admin: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		promexport.NewCollector(engine),
	)

	srv := &http.Server{
		Addr: conf.HTTPAddr,
		Handler: server.New(&server.Config{
			Engine:   engine,
			Store:    store,
			Logger:   l.With(slogutil.KeyPrefix, "http"),
			Registry: reg,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(l.Handler(), slog.LevelDebug),
	}

	go func() {
		defer slogutil.RecoverAndLog(ctx, l)

		engine.RunSessionSweeper(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		defer slogutil.RecoverAndLog(ctx, l)

		l.InfoContext(ctx, "listening", "addr", conf.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
		l.InfoContext(ctx, "shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout.Duration)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http: %w", err)
	}

	return nil
}

// newAuditSink returns the sink named by kind, or nil when auditing is off.
func newAuditSink(kind string, l *slog.Logger) (sink fittrack.AuditSink) {
	switch strings.ToLower(kind) {
	case "stdout":
		return fittrack.NewJSONWriterSink(os.Stdout)
	case "slog":
		return fittrack.NewSlogSink(l.With(slogutil.KeyPrefix, "audit"))
	default:
		return nil
	}
}

// userCreator is the part of [stores.Store] used for the admin bootstrap.
type userCreator interface {
	GetUserByUsername(ctx context.Context, username string) (fittrack.UserRecord, error)
	CreateUser(ctx context.Context, u *stores.User) (err error)
}

// passwordHasher is the part of [fittrack.Engine] used for the admin
// bootstrap.
type passwordHasher interface {
	HashPassword(plaintext string) (string, error)
}

// bootstrapAdmin creates the configured admin account unless the username is
// already taken.
func bootstrapAdmin(
	ctx context.Context,
	c adminConfig,
	hasher passwordHasher,
	users userCreator,
	l *slog.Logger,
) (err error) {
	if c.Username == "" {
		return nil
	}

	_, err = users.GetUserByUsername(ctx, c.Username)
	switch {
	case err == nil:
		l.DebugContext(ctx, "admin account exists", "username", c.Username)

		return nil
	case !errors.Is(err, fittrack.ErrUserNotFound):
		return err
	}

	hash, err := hasher.HashPassword(c.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	email := c.Email
	if email == "" {
		email = c.Username + "@localhost"
	}

	err = users.CreateUser(ctx, &stores.User{
		Username: c.Username,
		Name:     c.Username,
		LastName: "Admin",
		Password: hash,
		Type:     fittrack.UserTypeAdmin,
		Email:    email,
	})
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	l.InfoContext(ctx, "created admin account", "username", c.Username)

	return nil
}

func logSecurityReport(ctx context.Context, l *slog.Logger, r fittrack.SecurityReport) {
	l.InfoContext(
		ctx,
		"security posture",
		"signature", r.SignatureScheme,
		"session_ttl", r.SessionTTL,
		"cookie_secure", r.CookieSecure,
		"sweeper", r.SweeperEnabled,
		"scrypt_n", r.Scrypt.N,
		"min_password_length", r.MinPasswordLength,
		"login_throttle", r.LoginThrottleActive,
		"ip_throttle", r.IPThrottleActive,
		"audit", r.AuditEnabled,
		"metrics", r.MetricsEnabled,
	)
}
