package internaldefs

import (
	authsess "github.com/opencampus/authsess"
)

// CounterDef defines a public type used by authsess APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authsess.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authsess APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authsess.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session controller.
var CounterDefs = []CounterDef{
	{ID: authsess.MetricLoginSuccess, Name: "authsess_login_success_total", Help: "Successful login attempts."},
	{ID: authsess.MetricLoginFailure, Name: "authsess_login_failure_total", Help: "Failed login attempts."},
	{ID: authsess.MetricLoginRejected, Name: "authsess_login_rejected_total", Help: "Login attempts rejected before reaching the backend."},
	{ID: authsess.MetricVerifyNoToken, Name: "authsess_verify_no_token_total", Help: "Reconciliations that found no stored token."},
	{ID: authsess.MetricVerifySuccess, Name: "authsess_verify_success_total", Help: "Reconciliations confirmed by the backend."},
	{ID: authsess.MetricVerifyFallback, Name: "authsess_verify_fallback_total", Help: "Reconciliations continued on the cached snapshot."},
	{ID: authsess.MetricVerifyCleared, Name: "authsess_verify_cleared_total", Help: "Reconciliations that cleared the session."},
	{ID: authsess.MetricRefreshSuccess, Name: "authsess_refresh_success_total", Help: "Successful token rotations."},
	{ID: authsess.MetricRefreshNoToken, Name: "authsess_refresh_no_token_total", Help: "Rotation attempts without a stored refresh token."},
	{ID: authsess.MetricRefreshFailure, Name: "authsess_refresh_failure_total", Help: "Failed token rotations."},
	{ID: authsess.MetricLogout, Name: "authsess_logout_total", Help: "User-initiated logouts."},
	{ID: authsess.MetricForcedLogout, Name: "authsess_forced_logout_total", Help: "Logouts forced after rotation failures."},
	{ID: authsess.MetricCommitDropped, Name: "authsess_commit_dropped_total", Help: "Commits discarded by the generation guard."},
}

// HistogramDefs is an exported constant or variable used by the session controller.
var HistogramDefs = []HistogramDef{
	{ID: authsess.MetricLoginLatency, Name: "authsess_login_latency_seconds", Help: "Login latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session controller.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session controller.
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

// NormalizeBuckets widens a snapshot bucket slice to the fixed bucket
// array, zero-filling missing entries.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form both
// exporters emit.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
