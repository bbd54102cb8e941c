package fittrack

import (
	"context"
	"testing"
	"time"
)

func auditConfig() Config {
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 64
	cfg.Audit.DropIfFull = false
	return cfg
}

func collectEvents(t *testing.T, sink *ChannelSink, n int) []AuditEvent {
	t.Helper()

	events := make([]AuditEvent, 0, n)
	timeout := time.After(2 * time.Second)
	for len(events) < n {
		select {
		case ev := <-sink.Events():
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("got %d events, want %d: %+v", len(events), n, events)
		}
	}

	return events
}

func TestAuditLoginLifecycle(t *testing.T) {
	sink := NewChannelSink(64)
	f := newEngineFixture(t, auditConfig(), func(b *Builder) { b.WithAuditSink(sink) })
	ctx := WithUserAgent(WithClientIP(context.Background(), "198.51.100.4"), "test-agent")
	id := f.addUser(t, "alice", "password-123", UserTypeUser)

	if _, err := f.engine.Login(ctx, "alice", "nope-nope"); err == nil {
		t.Fatalf("expected failure")
	}
	res, err := f.engine.Login(ctx, "alice", "password-123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err = f.engine.InvalidateAllSessions(ctx, id); err != nil {
		t.Fatalf("logout: %v", err)
	}

	events := collectEvents(t, sink, 4)
	wantTypes := []string{
		auditEventLoginFailure,
		auditEventSessionCreated,
		auditEventLoginSuccess,
		auditEventLogoutAll,
	}
	for i, want := range wantTypes {
		if events[i].EventType != want {
			t.Fatalf("event %d = %q, want %q", i, events[i].EventType, want)
		}
		if events[i].IP != "198.51.100.4" || events[i].Metadata["user_agent"] != "test-agent" {
			t.Fatalf("event %d missing request context: %+v", i, events[i])
		}
		if events[i].ID == "" {
			t.Fatalf("event %d has no id", i)
		}
	}

	failure := events[0]
	if failure.Success || failure.Error != string(auditErrInvalidCredentials) || failure.Metadata["reason"] != "password_mismatch" {
		t.Fatalf("unexpected failure event: %+v", failure)
	}
	if events[2].SessionID != res.Session.SessionID || events[2].UserID != id {
		t.Fatalf("unexpected success event: %+v", events[2])
	}
	if events[3].Metadata["sessions"] != "1" {
		t.Fatalf("unexpected logout event: %+v", events[3])
	}
}

func TestAuditDisabledEmitsNothing(t *testing.T) {
	sink := NewChannelSink(8)
	f := newEngineFixture(t, testConfig(), func(b *Builder) { b.WithAuditSink(sink) })
	f.addUser(t, "alice", "password-123", UserTypeUser)

	if _, err := f.engine.Login(context.Background(), "alice", "password-123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	select {
	case ev := <-sink.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
	if f.engine.SecurityReport().AuditEnabled {
		t.Fatalf("report must show audit disabled")
	}
}

func TestAuditErrorCodeMapping(t *testing.T) {
	tests := []struct {
		err  error
		want AuditErrorCode
	}{
		{nil, ""},
		{ErrInvalidCredentials, auditErrInvalidCredentials},
		{ErrLoginRateLimited, auditErrRateLimited},
		{ErrSessionNotFound, auditErrSessionNotFound},
		{ErrPasswordPolicy, auditErrPasswordPolicy},
		{ErrStorageUnavailable, auditErrUnavailable},
		{ErrSessionInvalidationFailed, auditErrSessionInvalidation},
	}
	for _, tc := range tests {
		if got := auditErrorCode(tc.err); got != tc.want {
			t.Fatalf("auditErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
