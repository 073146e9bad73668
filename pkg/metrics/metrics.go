package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrLabelCountMismatch is returned when the number of label values doesn't match the defined labels.
var ErrLabelCountMismatch = errors.New("label count mismatch")

// ErrNegativeCounterValue is returned when attempting to add a negative value to a counter.
var ErrNegativeCounterValue = errors.New("counter cannot be decreased")

// ErrDuplicateMetric is returned when registering a metric with a name that is already registered.
var ErrDuplicateMetric = errors.New("duplicate metric name")

// atomicFloat64 stores float64 bits in a uint64 for lock-free updates.
type atomicFloat64 struct {
	bits uint64
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(atomic.LoadUint64(&a.bits))
}

func (a *atomicFloat64) Store(val float64) {
	atomic.StoreUint64(&a.bits, math.Float64bits(val))
}

func (a *atomicFloat64) Add(delta float64) {
	for {
		old := atomic.LoadUint64(&a.bits)
		next := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(&a.bits, old, math.Float64bits(next)) {
			return
		}
	}
}

// MetricType represents the type of a metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric is the interface implemented by all metric types.
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	// Collect returns all samples, ordered by label values.
	Collect() []Sample
}

// Sample represents a single metric sample with labels.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

type entry[V any] struct {
	key    string
	labels map[string]string
	value  *V
}

// series is a family of values keyed by label values.
type series[V any] struct {
	name       string
	help       string
	labelNames []string
	newValue   func() *V

	mu      sync.RWMutex
	entries map[string]*entry[V]
}

func (s *series[V]) configure(name, help string, labelNames []string, newValue func() *V) {
	s.name = name
	s.help = help
	s.labelNames = labelNames
	s.newValue = newValue
	s.entries = make(map[string]*entry[V])
}

func newFloat() *atomicFloat64 { return &atomicFloat64{} }

func (s *series[V]) Name() string { return s.name }
func (s *series[V]) Help() string { return s.help }

func (s *series[V]) get(kind string, values []string) (*V, error) {
	if len(values) != len(s.labelNames) {
		return nil, fmt.Errorf("%w: %s %s expected %d labels, got %d",
			ErrLabelCountMismatch, kind, s.name, len(s.labelNames), len(values))
	}

	key := strings.Join(values, "\x00")
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		return e.value, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[key]; ok {
		return e.value, nil
	}
	labels := make(map[string]string, len(s.labelNames))
	for i, name := range s.labelNames {
		labels[name] = values[i]
	}
	e = &entry[V]{key: key, labels: labels, value: s.newValue()}
	s.entries[key] = e
	return e.value, nil
}

func (s *series[V]) snapshot() []*entry[V] {
	s.mu.RLock()
	out := make([]*entry[V], 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// Counter is a monotonically increasing metric.
type Counter struct {
	series[atomicFloat64]
}

func (c *Counter) Type() MetricType { return MetricTypeCounter }

// WithLabels returns the counter child for the given label values.
func (c *Counter) WithLabels(values ...string) (*CounterVec, error) {
	v, err := c.get("counter", values)
	if err != nil {
		return nil, err
	}
	return &CounterVec{name: c.name, v: v}, nil
}

// Inc increments an unlabeled counter by 1.
func (c *Counter) Inc() error {
	return c.Add(1)
}

// Add adds delta to an unlabeled counter.
func (c *Counter) Add(delta float64) error {
	vec, err := c.WithLabels()
	if err != nil {
		return err
	}
	return vec.Add(delta)
}

func (c *Counter) Collect() []Sample {
	entries := c.snapshot()
	samples := make([]Sample, 0, len(entries))
	for _, e := range entries {
		samples = append(samples, Sample{Name: c.name, Labels: e.labels, Value: e.value.Load()})
	}
	return samples
}

// CounterVec is one label combination of a Counter.
type CounterVec struct {
	name string
	v    *atomicFloat64
}

func (v *CounterVec) Inc() error {
	return v.Add(1)
}

func (v *CounterVec) Add(delta float64) error {
	if delta < 0 {
		return fmt.Errorf("%w: counter %s", ErrNegativeCounterValue, v.name)
	}
	v.v.Add(delta)
	return nil
}

// Gauge is a metric that can go up and down.
type Gauge struct {
	series[atomicFloat64]
}

func (g *Gauge) Type() MetricType { return MetricTypeGauge }

// WithLabels returns the gauge child for the given label values.
func (g *Gauge) WithLabels(values ...string) (*GaugeVec, error) {
	v, err := g.get("gauge", values)
	if err != nil {
		return nil, err
	}
	return &GaugeVec{v: v}, nil
}

// Set sets an unlabeled gauge.
func (g *Gauge) Set(value float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Set(value)
	return nil
}

// Add adds delta to an unlabeled gauge.
func (g *Gauge) Add(delta float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Add(delta)
	return nil
}

func (g *Gauge) Inc() error { return g.Add(1) }
func (g *Gauge) Dec() error { return g.Add(-1) }

func (g *Gauge) Collect() []Sample {
	entries := g.snapshot()
	samples := make([]Sample, 0, len(entries))
	for _, e := range entries {
		samples = append(samples, Sample{Name: g.name, Labels: e.labels, Value: e.value.Load()})
	}
	return samples
}

// GaugeVec is one label combination of a Gauge.
type GaugeVec struct {
	v *atomicFloat64
}

func (v *GaugeVec) Set(value float64) { v.v.Store(value) }
func (v *GaugeVec) Add(delta float64) { v.v.Add(delta) }
func (v *GaugeVec) Inc()              { v.v.Add(1) }
func (v *GaugeVec) Dec()              { v.v.Add(-1) }

// Histogram tracks the distribution of observed values.
type Histogram struct {
	series[histogramValue]
	bounds []float64
}

type histogramValue struct {
	bounds []float64
	counts []uint64
	sum    atomicFloat64
	count  uint64
}

func (h *Histogram) Type() MetricType { return MetricTypeHistogram }

// WithLabels returns the histogram child for the given label values.
func (h *Histogram) WithLabels(values ...string) (*HistogramVec, error) {
	v, err := h.get("histogram", values)
	if err != nil {
		return nil, err
	}
	return &HistogramVec{v: v}, nil
}

// Observe records a value in an unlabeled histogram.
func (h *Histogram) Observe(value float64) error {
	vec, err := h.WithLabels()
	if err != nil {
		return err
	}
	vec.Observe(value)
	return nil
}

func (h *Histogram) Collect() []Sample {
	entries := h.snapshot()
	samples := make([]Sample, 0, (len(h.bounds)+2)*len(entries))
	for _, e := range entries {
		var cumulative uint64
		for i, bound := range e.value.bounds {
			cumulative += atomic.LoadUint64(&e.value.counts[i])
			labels := make(map[string]string, len(e.labels)+1)
			for k, v := range e.labels {
				labels[k] = v
			}
			labels["le"] = formatFloat(bound)
			samples = append(samples, Sample{Name: h.name + "_bucket", Labels: labels, Value: float64(cumulative)})
		}
		samples = append(samples,
			Sample{Name: h.name + "_sum", Labels: e.labels, Value: e.value.sum.Load()},
			Sample{Name: h.name + "_count", Labels: e.labels, Value: float64(atomic.LoadUint64(&e.value.count))},
		)
	}
	return samples
}

// HistogramVec is one label combination of a Histogram.
type HistogramVec struct {
	v *histogramValue
}

func (v *HistogramVec) Observe(value float64) {
	for i, bound := range v.v.bounds {
		if value <= bound {
			atomic.AddUint64(&v.v.counts[i], 1)
			break
		}
	}
	v.v.sum.Add(value)
	atomic.AddUint64(&v.v.count, 1)
}

// DefaultBuckets are histogram buckets for request durations in seconds.
var DefaultBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Registry holds all registered metrics.
type Registry struct {
	mu      sync.RWMutex
	metrics []Metric
	names   map[string]struct{}
}

// NewRegistry creates an empty metric registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// NewCounter creates and registers a counter.
func (r *Registry) NewCounter(name, help string, labels ...string) *Counter {
	c := &Counter{}
	c.configure(name, help, labels, newFloat)
	r.register(c)
	return c
}

// NewGauge creates and registers a gauge.
func (r *Registry) NewGauge(name, help string, labels ...string) *Gauge {
	g := &Gauge{}
	g.configure(name, help, labels, newFloat)
	r.register(g)
	return g
}

// NewHistogram creates and registers a histogram. A +Inf bucket is appended
// when missing.
func (r *Registry) NewHistogram(name, help string, buckets []float64, labels ...string) *Histogram {
	bounds := append([]float64(nil), buckets...)
	sort.Float64s(bounds)
	if len(bounds) == 0 || !math.IsInf(bounds[len(bounds)-1], 1) {
		bounds = append(bounds, math.Inf(1))
	}
	h := &Histogram{bounds: bounds}
	h.configure(name, help, labels, func() *histogramValue {
		return &histogramValue{bounds: bounds, counts: make([]uint64, len(bounds))}
	})
	r.register(h)
	return h
}

// register panics on duplicate names, since they produce invalid exposition output.
func (r *Registry) register(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[m.Name()]; exists {
		panic(fmt.Sprintf("%s: %s", ErrDuplicateMetric, m.Name()))
	}
	r.names[m.Name()] = struct{}{}
	r.metrics = append(r.metrics, m)
}

// Metrics returns the registered metrics in registration order.
func (r *Registry) Metrics() []Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Metric(nil), r.metrics...)
}
