// Package metrics provides Prometheus-compatible metrics for the mock listeners.
//
// Metrics are exposed in the Prometheus text exposition format
// (text/plain; version=0.0.4). Counters, gauges and histograms are safe for
// concurrent use from every listener goroutine.
//
// The mock server records:
//
//   - harmock_requests_total: requests by authority, method and outcome
//   - harmock_request_duration_seconds: handling latency by authority
//   - harmock_exemplars: exemplars loaded per authority
//   - harmock_listeners: listeners currently accepting connections
//
// Usage:
//
//	registry := metrics.NewRegistry()
//	m := metrics.NewMockMetrics(registry)
//	m.Observe("api.example.com", "POST", metrics.OutcomeMatched, 3*time.Millisecond)
//	http.Handle("/metrics", registry.Handler())
package metrics
