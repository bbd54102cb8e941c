package fittrack

import (
	"fmt"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/validate"
	"github.com/MrEthical07/fittrack/internal"
	"github.com/MrEthical07/fittrack/password"
)

// MinSecretLength is the shortest accepted session signing secret.
const MinSecretLength = 32

// Config holds every Engine setting.  It is copied into the Engine at Build
// time and never mutated afterwards.
type Config struct {
	Session  SessionConfig
	Password PasswordConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SignatureScheme selects the cookie signature construction.
type SignatureScheme string

const (
	// SignatureHMAC signs tokens with HMAC-SHA256.  This is the default.
	SignatureHMAC SignatureScheme = "hmac"
	// SignatureLegacySHA256 signs tokens with SHA-256(token || secret).  Use
	// it only while cookies from an older deployment are still live.
	SignatureLegacySHA256 SignatureScheme = "legacy"
)

func (s SignatureScheme) internal() (internal.SignatureScheme, bool) {
	switch s {
	case SignatureHMAC, "":
		return internal.SignatureHMAC, true
	case SignatureLegacySHA256:
		return internal.SignatureLegacySHA256, true
	default:
		return 0, false
	}
}

// SessionConfig controls session lifetime and the session cookie.
type SessionConfig struct {
	// Secret keys cookie signatures.  At least [MinSecretLength] characters.
	Secret          string
	SignatureScheme SignatureScheme
	TTL             time.Duration
	CookieName      string
	CookieSecure    bool
	// CleanupInterval enables the expired-session sweeper when positive.
	CleanupInterval time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds scrypt cost parameters and the password policy.
type PasswordConfig struct {
	N          int
	R          int
	P          int
	SaltLength int
	KeyLength  int
	MinLength  int
}

func (c PasswordConfig) hasher() password.Config {
	return password.Config{
		N:          c.N,
		R:          c.R,
		P:          c.P,
		SaltLength: c.SaltLength,
		KeyLength:  c.KeyLength,
	}
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig controls login throttling.  Throttling needs Redis.
type SecurityConfig struct {
	EnableLoginThrottle   bool
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a config with every field but Session.Secret set.
func DefaultConfig() Config {
	pw := password.DefaultConfig()

	return Config{
		Session: SessionConfig{
			SignatureScheme: SignatureHMAC,
			TTL:             30 * 24 * time.Hour,
			CookieName:      "session",
			CookieSecure:    true,
			CleanupInterval: 0,
		},
		Password: PasswordConfig{
			N:          pw.N,
			R:          pw.R,
			P:          pw.P,
			SaltLength: pw.SaltLength,
			KeyLength:  pw.KeyLength,
			MinLength:  8,
		},
		Security: SecurityConfig{
			EnableLoginThrottle:   false,
			EnableIPThrottle:      true,
			MaxLoginAttempts:      5,
			LoginCooldownDuration: 15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// type check
var _ validate.Interface = (*Config)(nil)

// Validate implements the [validate.Interface] interface for *Config.  All
// problems are reported together.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrNoValue
	}

	errs := []error{
		validate.NotEmpty("Session.CookieName", c.Session.CookieName),
		validate.NotNegative("Session.CleanupInterval", c.Session.CleanupInterval),
		validate.NotNegative("Security.LoginCooldownDuration", c.Security.LoginCooldownDuration),
		validate.NotNegative("Audit.BufferSize", c.Audit.BufferSize),
	}

	if len(c.Session.Secret) < MinSecretLength {
		errs = append(errs, ErrSecretTooShort)
	}
	if _, ok := c.Session.SignatureScheme.internal(); !ok {
		errs = append(errs, fmt.Errorf("Session.SignatureScheme: unsupported value %q", c.Session.SignatureScheme))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.Error("Session.TTL must be > 0"))
	}
	if c.Password.MinLength < 1 {
		errs = append(errs, errors.Error("Password.MinLength must be >= 1"))
	}
	if _, err := password.NewScrypt(c.Password.hasher()); err != nil {
		errs = append(errs, fmt.Errorf("Password: %w", err))
	}
	if c.Security.EnableLoginThrottle {
		if c.Security.MaxLoginAttempts < 1 {
			errs = append(errs, errors.Error("Security.MaxLoginAttempts must be >= 1"))
		}
		if c.Security.LoginCooldownDuration == 0 {
			errs = append(errs, errors.Error("Security.LoginCooldownDuration must be > 0"))
		}
	}

	return errors.Join(errs...)
}
