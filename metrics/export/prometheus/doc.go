// Package prometheus provides Prometheus collectors for authsess metrics.
//
// [NewPrometheusExporter] accepts an [authsess.Controller] and exposes an
// [http.Handler] that renders all authsess counters and histograms in Prometheus text
// exposition format. Counter names are prefixed authsess_*_total; the single histogram
// is authsess_login_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry: callers mount the Handler.
//   - Mutate controller state.
package prometheus
