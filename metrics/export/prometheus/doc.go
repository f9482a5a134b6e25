// Package prometheus provides Prometheus collectors for session metrics.
//
// [NewPrometheusExporter] accepts an [authkit.Manager] and exposes an [http.Handler]
// that renders all session counters and histograms in Prometheus text exposition
// format. Counter names are prefixed leadsphere_*_total; the single histogram is
// leadsphere_operation_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate manager state.
package prometheus
