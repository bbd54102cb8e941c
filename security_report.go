package fittrack

import "time"

// SecurityReport summarizes the security posture of a built Engine.  It holds
// no secrets and is safe to log.
type SecurityReport struct {
	SignatureScheme     SignatureScheme
	SessionTTL          time.Duration
	CookieSecure        bool
	SweeperEnabled      bool
	Scrypt              PasswordConfigReport
	MinPasswordLength   int
	LoginThrottleActive bool
	IPThrottleActive    bool
	AuditEnabled        bool
	MetricsEnabled      bool
	LatencyHistogramsOn bool
}

// PasswordConfigReport mirrors the scrypt cost parameters.
type PasswordConfigReport struct {
	N          int
	R          int
	P          int
	SaltLength int
	KeyLength  int
}

// SecurityReport returns the posture of e.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	scheme := e.config.Session.SignatureScheme
	if scheme == "" {
		scheme = SignatureHMAC
	}

	throttle := e.rateLimiter != nil

	return SecurityReport{
		SignatureScheme:   scheme,
		SessionTTL:        e.config.Session.TTL,
		CookieSecure:      e.config.Session.CookieSecure,
		SweeperEnabled:    e.config.Session.CleanupInterval > 0,
		MinPasswordLength: e.config.Password.MinLength,
		Scrypt: PasswordConfigReport{
			N:          e.config.Password.N,
			R:          e.config.Password.R,
			P:          e.config.Password.P,
			SaltLength: e.config.Password.SaltLength,
			KeyLength:  e.config.Password.KeyLength,
		},
		LoginThrottleActive: throttle,
		IPThrottleActive:    throttle && e.config.Security.EnableIPThrottle,
		AuditEnabled:        e.audit != nil,
		MetricsEnabled:      e.metrics.Enabled(),
		LatencyHistogramsOn: e.metrics.Enabled() && e.config.Metrics.EnableLatencyHistograms,
	}
}
