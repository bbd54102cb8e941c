package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/AdguardTeam/golibs/validate"
	"github.com/MrEthical07/fittrack"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// appEnvProduction turns secure cookies on by default.
const appEnvProduction = "production"

// config is the process configuration.  It is read from an optional YAML
// file, then from a .env file and the environment, which win.
type config struct {
	HTTPAddr        string            `yaml:"http_addr"`
	DatabasePath    string            `yaml:"database_path"`
	AppEnv          string            `yaml:"app_env"`
	ShutdownTimeout timeutil.Duration `yaml:"shutdown_timeout"`

	Session sessionConfig `yaml:"session"`
	Redis   redisConfig   `yaml:"redis"`
	Log     logConfig     `yaml:"log"`
	Admin   adminConfig   `yaml:"admin"`

	// Audit is where audit events go: "", "stdout" or "slog".
	Audit string `yaml:"audit"`
}

type sessionConfig struct {
	Secret          string            `yaml:"secret"`
	Signature       string            `yaml:"signature"`
	CookieSecure    *bool             `yaml:"cookie_secure"`
	TTL             timeutil.Duration `yaml:"ttl"`
	CleanupInterval timeutil.Duration `yaml:"cleanup_interval"`
}

type redisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type logConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

type adminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
}

func defaultConfig() (c *config) {
	return &config{
		HTTPAddr:        ":3000",
		DatabasePath:    "data/fittrack.db",
		AppEnv:          "development",
		ShutdownTimeout: timeutil.Duration{Duration: 10 * time.Second},
		Session: sessionConfig{
			Signature: string(fittrack.SignatureHMAC),
			TTL:       timeutil.Duration{Duration: 30 * timeutil.Day},
		},
		Log: logConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// loadConfig reads the YAML file at path, when set, then the .env file and
// the environment.
func loadConfig(path string) (c *config, err error) {
	c = defaultConfig()
	if path != "" {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err = yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	err = godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err = c.applyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	return c, nil
}

// applyEnv overrides c with the environment variables lookup finds.
func (c *config) applyEnv(lookup func(key string) (string, bool)) (err error) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("HTTP_ADDR", &c.HTTPAddr)
	str("DATABASE_PATH", &c.DatabasePath)
	str("APP_ENV", &c.AppEnv)
	str("SESSION_SECRET", &c.Session.Secret)
	str("SESSION_SIGNATURE", &c.Session.Signature)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FILE", &c.Log.File)
	str("AUDIT_LOG", &c.Audit)
	str("ADMIN_USERNAME", &c.Admin.Username)
	str("ADMIN_PASSWORD", &c.Admin.Password)
	str("ADMIN_EMAIL", &c.Admin.Email)

	var errs []error
	if v, ok := lookup("COOKIE_SECURE"); ok && v != "" {
		secure, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			errs = append(errs, fmt.Errorf("COOKIE_SECURE: %w", parseErr))
		} else {
			c.Session.CookieSecure = &secure
		}
	}

	durations := []struct {
		dst *timeutil.Duration
		key string
	}{
		{&c.Session.TTL, "SESSION_TTL"},
		{&c.Session.CleanupInterval, "SESSION_CLEANUP_INTERVAL"},
		{&c.ShutdownTimeout, "SHUTDOWN_TIMEOUT"},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || v == "" {
			continue
		}

		if parseErr := d.dst.UnmarshalText([]byte(v)); parseErr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.key, parseErr))
		}
	}

	return errors.Join(errs...)
}

// type check
var _ validate.Interface = (*config)(nil)

// Validate implements the [validate.Interface] interface for *config.
func (c *config) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	errs := []error{
		validate.NotEmpty("http_addr", c.HTTPAddr),
		validate.NotEmpty("database_path", c.DatabasePath),
		validate.NotNegative("shutdown_timeout", c.ShutdownTimeout.Duration),
	}

	switch strings.ToLower(c.Audit) {
	case "", "stdout", "slog":
		// Go on.
	default:
		errs = append(errs, fmt.Errorf("audit: unsupported value %q", c.Audit))
	}

	if (c.Admin.Username == "") != (c.Admin.Password == "") {
		errs = append(errs, errors.Error("admin: username and password must be set together"))
	}

	return errors.Join(errs...)
}

// engineConfig returns the library configuration for c.
func (c *config) engineConfig() (ec fittrack.Config) {
	ec = fittrack.DefaultConfig()
	ec.Session.Secret = c.Session.Secret
	ec.Session.SignatureScheme = fittrack.SignatureScheme(strings.ToLower(c.Session.Signature))
	ec.Session.TTL = c.Session.TTL.Duration
	ec.Session.CleanupInterval = c.Session.CleanupInterval.Duration
	ec.Session.CookieSecure = c.AppEnv == appEnvProduction
	if c.Session.CookieSecure != nil {
		ec.Session.CookieSecure = *c.Session.CookieSecure
	}

	if c.Redis.Addr != "" {
		ec.Security.EnableLoginThrottle = true
	}

	ec.Audit.Enabled = c.Audit != ""

	return ec
}
