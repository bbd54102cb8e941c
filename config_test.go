package fittrack

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "test config valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "short secret",
			mutate: func(c *Config) {
				c.Session.Secret = strings.Repeat("x", MinSecretLength-1)
			},
			wantValid: false,
		},
		{
			name: "legacy signature valid",
			mutate: func(c *Config) {
				c.Session.SignatureScheme = SignatureLegacySHA256
			},
			wantValid: true,
		},
		{
			name: "unknown signature",
			mutate: func(c *Config) {
				c.Session.SignatureScheme = "md5"
			},
			wantValid: false,
		},
		{
			name: "zero ttl",
			mutate: func(c *Config) {
				c.Session.TTL = 0
			},
			wantValid: false,
		},
		{
			name: "empty cookie name",
			mutate: func(c *Config) {
				c.Session.CookieName = ""
			},
			wantValid: false,
		},
		{
			name: "negative cleanup interval",
			mutate: func(c *Config) {
				c.Session.CleanupInterval = -time.Second
			},
			wantValid: false,
		},
		{
			name: "scrypt n not power of two",
			mutate: func(c *Config) {
				c.Password.N = 3000
			},
			wantValid: false,
		},
		{
			name: "zero min length",
			mutate: func(c *Config) {
				c.Password.MinLength = 0
			},
			wantValid: false,
		},
		{
			name: "throttle without attempts",
			mutate: func(c *Config) {
				c.Security.EnableLoginThrottle = true
				c.Security.MaxLoginAttempts = 0
			},
			wantValid: false,
		},
		{
			name: "attempts ignored when throttle off",
			mutate: func(c *Config) {
				c.Security.MaxLoginAttempts = 0
			},
			wantValid: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatalf("expected invalid config")
			}
		})
	}
}

func TestConfigValidateReportsAllProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.TTL = 0

	err := cfg.Validate()
	if !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("missing secret not reported: %v", err)
	}
	if !strings.Contains(err.Error(), "Session.TTL") {
		t.Fatalf("ttl problem not reported: %v", err)
	}
}

func TestDefaultConfigCookiePolicy(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Session.TTL != 30*24*time.Hour || cfg.Session.CookieName != "session" || !cfg.Session.CookieSecure {
		t.Fatalf("unexpected session defaults: %+v", cfg.Session)
	}
	if cfg.Password.N != 16384 || cfg.Password.R != 8 || cfg.Password.P != 1 || cfg.Password.KeyLength != 64 {
		t.Fatalf("unexpected scrypt defaults: %+v", cfg.Password)
	}
}

func TestBuilderSingleUse(t *testing.T) {
	db := openTestDB(t)
	b := New().WithConfig(testConfig()).WithDB(db).WithUserProvider(&dbUserProvider{db: db})

	e, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer e.Close()

	if _, err = b.Build(); err == nil {
		t.Fatalf("second build must fail")
	}
}

func TestBuilderRequiresDependencies(t *testing.T) {
	if _, err := New().WithConfig(testConfig()).Build(); err == nil {
		t.Fatalf("build without db must fail")
	}

	db := openTestDB(t)
	if _, err := New().WithConfig(testConfig()).WithDB(db).Build(); err == nil {
		t.Fatalf("build without user provider must fail")
	}

	if _, err := New().WithDB(db).WithUserProvider(&dbUserProvider{db: db}).Build(); !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("default config without secret must fail, got %v", err)
	}
}
