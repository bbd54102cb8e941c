package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"strings"
)

// SessionTokenSize is the number of random bytes behind a session token.
const SessionTokenSize = 20

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewSessionToken returns a fresh session token: 160 random bits encoded as
// unpadded base32.
func NewSessionToken() (string, error) {
	var raw [SessionTokenSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}

	return tokenEncoding.EncodeToString(raw[:]), nil
}

// SessionIDFromToken returns the storage key for token: lowercase hex of its
// SHA-256 digest.  The token itself is never persisted.
func SessionIDFromToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// JoinCookie builds the cookie value token.signature.
func JoinCookie(token, signature string) string {
	return token + "." + signature
}

// SplitCookie splits value on its last dot.  ok is false when either half is
// empty.
func SplitCookie(value string) (token, signature string, ok bool) {
	idx := strings.LastIndexByte(value, '.')
	if idx <= 0 || idx == len(value)-1 {
		return "", "", false
	}

	return value[:idx], value[idx+1:], true
}
