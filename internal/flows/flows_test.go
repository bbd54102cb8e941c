package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/fittrack/session"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
	failGet  error
	failSave error
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]*session.Session{}}
}

func (s *memStore) Save(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave != nil {
		return s.failSave
	}
	if _, ok := s.sessions[sess.ID]; ok {
		return errors.New("duplicate")
	}
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *memStore) Get(_ context.Context, id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, s.failGet
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *memStore) DeleteAllForUser(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func testSessionDeps(store SessionStore, now *time.Time) SessionDeps {
	var seq int
	var mu sync.Mutex
	return SessionDeps{
		NewToken: func() (string, error) {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("TOKEN%027d", seq), nil
		},
		SessionID: func(token string) string { return "id-" + token },
		Sign:      func(token string) string { return "sig-" + token },
		Verify:    func(token, sig string) bool { return sig == "sig-"+token },
		JoinCookie: func(token, sig string) string {
			return token + "." + sig
		},
		SplitCookie: func(v string) (string, string, bool) {
			i := strings.LastIndexByte(v, '.')
			if i <= 0 || i == len(v)-1 {
				return "", "", false
			}
			return v[:i], v[i+1:], true
		},
		Now:   func() time.Time { return *now },
		TTL:   time.Hour,
		Store: store,
	}
}

func TestRunCreateSessionThenResolve(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newMemStore()
	deps := testSessionDeps(store, &now)

	created, err := RunCreateSession(context.Background(), 42, deps)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Session.ID != "id-"+created.Token {
		t.Fatalf("session id not derived from token: %q", created.Session.ID)
	}
	if !created.Session.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expires_at = %v", created.Session.ExpiresAt)
	}
	if !RunValidateCookie(created.CookieValue, deps) {
		t.Fatalf("fresh cookie must validate")
	}

	res := RunResolve(context.Background(), created.CookieValue, deps)
	if res.Failure != ResolveFailureNone || res.Session.UserID != 42 {
		t.Fatalf("unexpected resolve result: %+v", res)
	}
}

func TestRunResolveFailureKinds(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newMemStore()
	deps := testSessionDeps(store, &now)

	created, err := RunCreateSession(context.Background(), 1, deps)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name  string
		value string
		want  ResolveFailureKind
	}{
		{"no dot", "abc", ResolveFailureMalformed},
		{"empty sig", created.Token + ".", ResolveFailureMalformed},
		{"bad sig", created.Token + ".sig-other", ResolveFailureSignature},
		{"never issued", "GHOST.sig-GHOST", ResolveFailureNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RunResolve(context.Background(), tc.value, deps).Failure; got != tc.want {
				t.Fatalf("failure = %d, want %d", got, tc.want)
			}
		})
	}

	now = now.Add(time.Hour)
	if got := RunResolve(context.Background(), created.CookieValue, deps).Failure; got != ResolveFailureExpired {
		t.Fatalf("expected expired at the boundary, got %d", got)
	}
	if _, err := store.Get(context.Background(), created.Session.ID); err != nil {
		t.Fatalf("expired row must not be deleted on read: %v", err)
	}

	store.failGet = errors.New("disk gone")
	if got := RunResolve(context.Background(), created.CookieValue, deps).Failure; got != ResolveFailureBackend {
		t.Fatalf("expected backend failure, got %d", got)
	}
}

func TestRunLogoutAllKillsEveryCookie(t *testing.T) {
	now := time.Now().UTC()
	store := newMemStore()
	deps := testSessionDeps(store, &now)

	var cookies []string
	for i := 0; i < 3; i++ {
		created, err := RunCreateSession(context.Background(), 5, deps)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		cookies = append(cookies, created.CookieValue)
	}

	n, err := RunLogoutAll(context.Background(), 5, LogoutDeps{Store: store})
	if err != nil || n != 3 {
		t.Fatalf("logout all = (%d, %v)", n, err)
	}
	for _, c := range cookies {
		if got := RunResolve(context.Background(), c, deps).Failure; got != ResolveFailureNotFound {
			t.Fatalf("cookie survived logout: %d", got)
		}
	}
}

var errNoUser = errors.New("no user")

func testLoginDeps(users map[string]LoginUserRecord) (LoginDeps, *int) {
	dummy := 0
	return LoginDeps{
		GetUserByUsername: func(_ context.Context, u string) (LoginUserRecord, error) {
			rec, ok := users[u]
			if !ok {
				return LoginUserRecord{}, errNoUser
			}
			return rec, nil
		},
		IsUserNotFound: func(err error) bool { return errors.Is(err, errNoUser) },
		VerifyPassword: func(pw, hash string) (bool, error) {
			if hash == "broken" {
				return false, errors.New("malformed")
			}
			return "hash:"+pw == hash, nil
		},
		DummyVerify: func(string) { dummy++ },
		CreateSession: func(_ context.Context, id int64) (*CreatedSession, error) {
			return &CreatedSession{Token: "t", CookieValue: "t.s", Session: &session.Session{ID: "sid", UserID: id}}, nil
		},
	}, &dummy
}

func TestRunLoginOutcomes(t *testing.T) {
	users := map[string]LoginUserRecord{
		"alice":  {ID: 1, Username: "alice", PasswordHash: "hash:secret-pass", Type: "USER"},
		"broken": {ID: 2, Username: "broken", PasswordHash: "broken", Type: "USER"},
	}
	deps, dummy := testLoginDeps(users)

	res := RunLogin(context.Background(), "  alice ", "secret-pass", deps)
	if res.Failure != LoginFailureNone || res.User.ID != 1 || res.Session == nil {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.User.PasswordHash != "" {
		t.Fatalf("password hash must be stripped")
	}

	tests := []struct {
		name, user, pass, reason string
	}{
		{"unknown user", "bob", "secret-pass", "user_not_found"},
		{"wrong password", "alice", "nope", "password_mismatch"},
		{"malformed hash", "broken", "x", "malformed_hash"},
		{"empty password", "alice", "", "empty_credentials"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RunLogin(context.Background(), tc.user, tc.pass, deps)
			if got.Failure != LoginFailureInvalidCredentials || got.Reason != tc.reason {
				t.Fatalf("got %+v, want reason %q", got, tc.reason)
			}
		})
	}
	if *dummy != 2 {
		t.Fatalf("dummy verify ran %d times, want 2", *dummy)
	}
}

func TestRunLoginThrottle(t *testing.T) {
	users := map[string]LoginUserRecord{
		"alice": {ID: 1, Username: "alice", PasswordHash: "hash:pw"},
	}
	deps, _ := testLoginDeps(users)

	errLimited := errors.New("limited")
	failures := 0
	reset := 0
	deps.IsRateLimited = func(err error) bool { return errors.Is(err, errLimited) }
	deps.CheckLoginRate = func(context.Context, string, string) error {
		if failures >= 2 {
			return errLimited
		}
		return nil
	}
	deps.IncrementLoginRate = func(context.Context, string, string) error {
		failures++
		return nil
	}
	deps.ResetLoginRate = func(context.Context, string) error {
		reset++
		return nil
	}

	for i := 0; i < 2; i++ {
		if res := RunLogin(context.Background(), "alice", "bad", deps); res.Failure != LoginFailureInvalidCredentials {
			t.Fatalf("attempt %d: %+v", i, res)
		}
	}
	if res := RunLogin(context.Background(), "alice", "pw", deps); res.Failure != LoginFailureRateLimited {
		t.Fatalf("expected rate limit even with correct password, got %+v", res)
	}

	failures = 0
	if res := RunLogin(context.Background(), "alice", "pw", deps); res.Failure != LoginFailureNone {
		t.Fatalf("expected success, got %+v", res)
	}
	if reset != 1 {
		t.Fatalf("reset called %d times, want 1", reset)
	}

	deps.CheckLoginRate = func(context.Context, string, string) error { return errors.New("redis down") }
	if res := RunLogin(context.Background(), "alice", "pw", deps); res.Failure != LoginFailureBackend {
		t.Fatalf("expected backend failure, got %+v", res)
	}
}

func TestRunChangePassword(t *testing.T) {
	stored := "hash:old-password"
	deps := PasswordDeps{
		MinLength: 8,
		GetUserByID: func(_ context.Context, id int64) (LoginUserRecord, error) {
			if id != 1 {
				return LoginUserRecord{}, errNoUser
			}
			return LoginUserRecord{ID: 1, PasswordHash: stored}, nil
		},
		IsUserNotFound: func(err error) bool { return errors.Is(err, errNoUser) },
		VerifyPassword: func(pw, hash string) (bool, error) { return "hash:"+pw == hash, nil },
		HashPassword:   func(pw string) (string, error) { return "hash:" + pw, nil },
		UpdatePasswordHash: func(_ context.Context, _ int64, hash string) error {
			stored = hash
			return nil
		},
	}

	tests := []struct {
		name                   string
		id                     int64
		current, next, confirm string
		want                   PasswordFailureKind
	}{
		{"too short", 1, "old-password", "short", "short", PasswordFailurePolicy},
		{"confirm differs", 1, "old-password", "new-password", "new-passw0rd", PasswordFailureMismatch},
		{"wrong current", 1, "guess-guess", "new-password", "new-password", PasswordFailureInvalidCurrent},
		{"unknown user", 9, "old-password", "new-password", "new-password", PasswordFailureUserNotFound},
		{"ok", 1, "old-password", "new-password", "new-password", PasswordFailureNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RunChangePassword(context.Background(), tc.id, tc.current, tc.next, tc.confirm, deps)
			if got.Failure != tc.want {
				t.Fatalf("failure = %d, want %d", got.Failure, tc.want)
			}
		})
	}
	if stored != "hash:new-password" {
		t.Fatalf("stored hash = %q", stored)
	}
}
