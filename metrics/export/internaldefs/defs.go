package internaldefs

import (
	authkit "github.com/basillal/LeadSphere-sub001"
)

// CounterDef defines a public type used by authkit APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authkit APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session kit.
var CounterDefs = []CounterDef{
	{ID: authkit.MetricLoginSuccess, Name: "leadsphere_login_success_total", Help: "Successful login attempts."},
	{ID: authkit.MetricLoginFailure, Name: "leadsphere_login_failure_total", Help: "Failed login attempts."},
	{ID: authkit.MetricLogout, Name: "leadsphere_logout_total", Help: "Logout operations."},
	{ID: authkit.MetricLogoutTransportError, Name: "leadsphere_logout_transport_error_total", Help: "Logout revocation calls that failed in transit."},
	{ID: authkit.MetricBootstrapSuccess, Name: "leadsphere_bootstrap_success_total", Help: "Successful session bootstraps."},
	{ID: authkit.MetricBootstrapFailure, Name: "leadsphere_bootstrap_failure_total", Help: "Failed session bootstraps."},
	{ID: authkit.MetricBootstrapSkipped, Name: "leadsphere_bootstrap_skipped_total", Help: "Bootstraps skipped for lack of a stored credential."},
	{ID: authkit.MetricRenewSuccess, Name: "leadsphere_renew_success_total", Help: "Successful credential renewals."},
	{ID: authkit.MetricRenewFailure, Name: "leadsphere_renew_failure_total", Help: "Failed credential renewals."},
	{ID: authkit.MetricRenewShared, Name: "leadsphere_renew_shared_total", Help: "Callers that joined an in-flight renewal."},
	{ID: authkit.MetricForcedLogout, Name: "leadsphere_forced_logout_total", Help: "Forced logouts after renewal failure."},
	{ID: authkit.MetricTenantSwitch, Name: "leadsphere_tenant_switch_total", Help: "Tenant scope switches."},
}

// HistogramDefs is an exported constant or variable used by the session kit.
var HistogramDefs = []HistogramDef{
	{ID: authkit.MetricOperationLatency, Name: "leadsphere_operation_latency_seconds", Help: "Session operation latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session kit.
var HistogramBounds = []string{
	"0.001",
	"0.004",
	"0.016",
	"0.064",
	"0.256",
	"1",
	"4",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session kit.
var HistogramBoundSuffix = []string{
	"0_001",
	"0_004",
	"0_016",
	"0_064",
	"0_256",
	"1",
	"4",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
