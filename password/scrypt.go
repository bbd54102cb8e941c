package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"golang.org/x/crypto/scrypt"
)

const (
	minCostN      = 1 << 10
	minSaltLength = 16
	minKeyLength  = 32
	separator     = ":"
)

// ErrMalformedHash is returned by [Scrypt.Verify] when the stored value is not
// in the salt:hash format.
const ErrMalformedHash errors.Error = "malformed password hash"

// Config holds the scrypt cost parameters.
type Config struct {
	N          int
	R          int
	P          int
	SaltLength int
	KeyLength  int
}

// DefaultConfig returns parameters compatible with hashes produced by Node's
// crypto.scryptSync defaults.
func DefaultConfig() Config {
	return Config{
		N:          16384,
		R:          8,
		P:          1,
		SaltLength: 16,
		KeyLength:  64,
	}
}

// Scrypt hashes and verifies passwords stored as hex(salt):hex(key).
//
// Scrypt instances are immutable after construction and safe for concurrent
// use.
type Scrypt struct {
	config Config
}

// NewScrypt validates cfg and returns a hasher using it.
func NewScrypt(cfg Config) (*Scrypt, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return &Scrypt{config: cfg}, nil
}

// Hash derives a key for password with a fresh random salt.  Two calls with the
// same password never return the same value.
func (s *Scrypt) Hash(password string) (string, error) {
	salt := make([]byte, s.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("reading salt: %w", err)
	}

	// The hex form of the salt is the KDF input, so stored values stay
	// verifiable by other implementations that pass the salt string through.
	saltHex := hex.EncodeToString(salt)

	key, err := s.derive(password, saltHex, s.config.KeyLength)
	if err != nil {
		return "", err
	}

	return saltHex + separator + hex.EncodeToString(key), nil
}

// Verify reports whether password matches stored.  A malformed stored value
// yields false together with [ErrMalformedHash], never a match.
func (s *Scrypt) Verify(password, stored string) (bool, error) {
	saltHex, hashHex, ok := strings.Cut(stored, separator)
	if !ok || saltHex == "" || hashHex == "" {
		return false, ErrMalformedHash
	}

	expected, err := hex.DecodeString(hashHex)
	if err != nil || len(expected) == 0 {
		return false, ErrMalformedHash
	}

	computed, err := s.derive(password, saltHex, len(expected))
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

func (s *Scrypt) derive(password, salt string, keyLen int) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), []byte(salt), s.config.N, s.config.R, s.config.P, keyLen)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}

	return key, nil
}

func validateConfig(cfg Config) error {
	if cfg.N < minCostN || cfg.N&(cfg.N-1) != 0 {
		return errors.Error("password N must be a power of two >= 1024")
	}
	if cfg.R < 1 {
		return errors.Error("password R must be >= 1")
	}
	if cfg.P < 1 {
		return errors.Error("password P must be >= 1")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.Error("password salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return errors.Error("password key length must be >= 32")
	}

	return nil
}
