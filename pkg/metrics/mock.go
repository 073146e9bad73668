package metrics

import "time"

// Request outcomes recorded by the mock listeners.
const (
	OutcomeMatched          = "matched"
	OutcomeNoMatch          = "no_match"
	OutcomeFault            = "fault"
	OutcomeMethodNotAllowed = "method_not_allowed"
)

// MockMetrics groups the metrics recorded while serving exemplars.
type MockMetrics struct {
	Requests  *Counter
	Duration  *Histogram
	Exemplars *Gauge
	Listeners *Gauge
}

// NewMockMetrics registers the mock server metrics on r.
func NewMockMetrics(r *Registry) *MockMetrics {
	return &MockMetrics{
		Requests: r.NewCounter("harmock_requests_total",
			"Requests handled by the mock listeners", "authority", "method", "outcome"),
		Duration: r.NewHistogram("harmock_request_duration_seconds",
			"Time spent matching and rendering a response", DefaultBuckets, "authority"),
		Exemplars: r.NewGauge("harmock_exemplars",
			"Exemplars loaded per authority", "authority"),
		Listeners: r.NewGauge("harmock_listeners",
			"Listeners currently accepting connections"),
	}
}

// Observe records one handled request. A nil receiver is a no-op.
func (m *MockMetrics) Observe(authority, method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if vec, err := m.Requests.WithLabels(authority, method, outcome); err == nil {
		_ = vec.Inc()
	}
	if vec, err := m.Duration.WithLabels(authority); err == nil {
		vec.Observe(elapsed.Seconds())
	}
}

// SetExemplars records how many exemplars an authority serves.
func (m *MockMetrics) SetExemplars(authority string, n int) {
	if m == nil {
		return
	}
	if vec, err := m.Exemplars.WithLabels(authority); err == nil {
		vec.Set(float64(n))
	}
}

// ListenerUp adjusts the live listener gauge by delta.
func (m *MockMetrics) ListenerUp(delta int) {
	if m == nil {
		return
	}
	_ = m.Listeners.Add(float64(delta))
}
