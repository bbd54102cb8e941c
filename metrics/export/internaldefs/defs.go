package internaldefs

import "github.com/MrEthical07/fittrack"

// CounterDef names one engine counter.
type CounterDef struct {
	ID   fittrack.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram.
type HistogramDef struct {
	ID   fittrack.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported engine counter.
var CounterDefs = []CounterDef{
	{ID: fittrack.MetricLoginSuccess, Name: "fittrack_login_success_total", Help: "Successful logins."},
	{ID: fittrack.MetricLoginFailure, Name: "fittrack_login_failure_total", Help: "Failed logins."},
	{ID: fittrack.MetricLoginRateLimited, Name: "fittrack_login_rate_limited_total", Help: "Logins refused by the throttle."},
	{ID: fittrack.MetricSessionCreated, Name: "fittrack_session_created_total", Help: "Issued sessions."},
	{ID: fittrack.MetricSessionResolved, Name: "fittrack_session_resolved_total", Help: "Session cookies resolved to a live session."},
	{ID: fittrack.MetricSessionRejected, Name: "fittrack_session_rejected_total", Help: "Malformed, forged or unknown session cookies."},
	{ID: fittrack.MetricSessionExpired, Name: "fittrack_session_expired_total", Help: "Session cookies past their expiry."},
	{ID: fittrack.MetricSessionInvalidated, Name: "fittrack_session_invalidated_total", Help: "Sessions removed by logout."},
	{ID: fittrack.MetricLogoutAll, Name: "fittrack_logout_all_total", Help: "Logout operations."},
	{ID: fittrack.MetricSessionsPruned, Name: "fittrack_sessions_pruned_total", Help: "Expired sessions removed by the sweeper."},
	{ID: fittrack.MetricPasswordChangeSuccess, Name: "fittrack_password_change_success_total", Help: "Completed password changes."},
	{ID: fittrack.MetricPasswordChangeInvalidCurrent, Name: "fittrack_password_change_invalid_current_total", Help: "Password changes with a wrong current password."},
}

// HistogramDefs lists every exported engine histogram.
var HistogramDefs = []HistogramDef{
	{ID: fittrack.MetricResolveLatency, Name: "fittrack_session_resolve_latency_seconds", Help: "Session resolution latency."},
}

// AuditDroppedName is the counter of audit events dropped under backpressure.
const AuditDroppedName = "fittrack_audit_dropped_total"

// AuditDroppedHelp is the help string of [AuditDroppedName].
const AuditDroppedHelp = "Audit events dropped due to dispatcher backpressure."

// HistogramUpperBounds are the finite bucket bounds in seconds.  The last
// engine bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters that
// flatten buckets into gauges.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)

	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := range raw {
		running += raw[i]
		out[i] = running
	}

	return out
}
