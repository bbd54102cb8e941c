package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"testing"
)

var base32NoPad = regexp.MustCompile(`^[A-Z2-7]{32}$`)

func TestNewSessionTokenFormat(t *testing.T) {
	seen := make(map[string]struct{}, 256)
	for i := 0; i < 256; i++ {
		token, err := NewSessionToken()
		if err != nil {
			t.Fatalf("NewSessionToken error: %v", err)
		}
		if !base32NoPad.MatchString(token) {
			t.Fatalf("token %q is not unpadded base32 of 20 bytes", token)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = struct{}{}
	}
}

func TestSessionIDFromToken(t *testing.T) {
	const token = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"
	sum := sha256.Sum256([]byte(token))
	want := hex.EncodeToString(sum[:])

	if got := SessionIDFromToken(token); got != want {
		t.Fatalf("SessionIDFromToken = %s, want %s", got, want)
	}
	if SessionIDFromToken(token+"A") == want {
		t.Fatal("different tokens must not share an id")
	}
}

func TestSplitCookie(t *testing.T) {
	cases := []struct {
		in        string
		token     string
		signature string
		ok        bool
	}{
		{in: "tok.sig", token: "tok", signature: "sig", ok: true},
		{in: "a.b.sig", token: "a.b", signature: "sig", ok: true},
		{in: "tok.", ok: false},
		{in: ".sig", ok: false},
		{in: "nodot", ok: false},
		{in: "", ok: false},
	}

	for _, tc := range cases {
		token, signature, ok := SplitCookie(tc.in)
		if ok != tc.ok || token != tc.token || signature != tc.signature {
			t.Fatalf("SplitCookie(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.in, token, signature, ok, tc.token, tc.signature, tc.ok)
		}
	}

	if token, signature, ok := SplitCookie(JoinCookie("T", "S")); !ok || token != "T" || signature != "S" {
		t.Fatal("JoinCookie/SplitCookie mismatch")
	}
}
