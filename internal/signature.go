package internal

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// SignatureScheme selects how cookie signatures are computed.
type SignatureScheme uint8

const (
	// SignatureHMAC is HMAC-SHA256 keyed with the server secret.
	SignatureHMAC SignatureScheme = iota
	// SignatureLegacySHA256 is SHA-256 over token followed by secret.  It only
	// exists so cookies minted by older deployments keep validating.
	SignatureLegacySHA256
)

// Signer computes and checks cookie signatures.  It holds the secret and is
// read-only after construction.
type Signer struct {
	secret []byte
	scheme SignatureScheme
}

// NewSigner returns a signer for secret.  The caller enforces secret length.
func NewSigner(secret string, scheme SignatureScheme) *Signer {
	return &Signer{
		secret: []byte(secret),
		scheme: scheme,
	}
}

// Sign returns the lowercase hex signature of token.
func (s *Signer) Sign(token string) string {
	return hex.EncodeToString(s.sum(token))
}

// Verify reports whether signature is the signature of token.
func (s *Signer) Verify(token, signature string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil || len(got) != sha256.Size {
		return false
	}

	return subtle.ConstantTimeCompare(got, s.sum(token)) == 1
}

func (s *Signer) sum(token string) []byte {
	if s.scheme == SignatureLegacySHA256 {
		h := sha256.New()
		h.Write([]byte(token))
		h.Write(s.secret)
		return h.Sum(nil)
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))
	return mac.Sum(nil)
}
