package mutate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	scopeNode = "node"
	scopeRoot = "root"
)

// MetricsConfig configures the Prometheus collectors of an Engine.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "mutate").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for batch sizes.
	// Default: exponential from 1 to 4096.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the batch size histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "mutate",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors of an Engine. A nil *Metrics
// records nothing.
type Metrics struct {
	eventsEnqueued     *prometheus.CounterVec
	eventsDeduplicated *prometheus.CounterVec
	eventsDelivered    *prometheus.CounterVec
	listenerPanics     *prometheus.CounterVec
	flushes            *prometheus.CounterVec
	batchSize          *prometheus.HistogramVec
	observations       *prometheus.GaugeVec
	listeners          *prometheus.GaugeVec
}

// NewMetrics creates and registers the engine collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}
	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	return &Metrics{
		eventsEnqueued:     counter("events_enqueued_total", "Change events accepted into a batch", "channel"),
		eventsDeduplicated: counter("events_deduplicated_total", "Change events dropped because their target was already pending", "channel"),
		eventsDelivered:    counter("events_delivered_total", "Listener invocations", "channel", "scope"),
		listenerPanics:     counter("listener_panics_total", "Listener invocations that panicked", "channel"),
		flushes:            counter("flushes_total", "Batches flushed", "channel"),
		batchSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_size",
			Help:        "Events per flushed batch after expansion",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"channel"}),
		observations: gauge("observations", "Live native observation handles", "key"),
		listeners:    gauge("listeners", "Registered listeners", "channel", "scope"),
	}
}

func (m *Metrics) enqueued(ch Channel) {
	if m != nil {
		m.eventsEnqueued.WithLabelValues(ch.String()).Inc()
	}
}

func (m *Metrics) deduplicated(ch Channel) {
	if m != nil {
		m.eventsDeduplicated.WithLabelValues(ch.String()).Inc()
	}
}

func (m *Metrics) delivered(ch Channel, scope string, n int) {
	if m != nil && n > 0 {
		m.eventsDelivered.WithLabelValues(ch.String(), scope).Add(float64(n))
	}
}

func (m *Metrics) panicked(ch Channel) {
	if m != nil {
		m.listenerPanics.WithLabelValues(ch.String()).Inc()
	}
}

func (m *Metrics) flushed(ch Channel, size int) {
	if m != nil {
		m.flushes.WithLabelValues(ch.String()).Inc()
		m.batchSize.WithLabelValues(ch.String()).Observe(float64(size))
	}
}

func (m *Metrics) handleOpened(key Key) {
	if m != nil {
		m.observations.WithLabelValues(string(key)).Inc()
	}
}

func (m *Metrics) handleClosed(key Key) {
	if m != nil {
		m.observations.WithLabelValues(string(key)).Dec()
	}
}

func (m *Metrics) listenerAdded(ch Channel, scope string) {
	if m != nil {
		m.listeners.WithLabelValues(ch.String(), scope).Inc()
	}
}

func (m *Metrics) listenerRemoved(ch Channel, scope string) {
	if m != nil {
		m.listeners.WithLabelValues(ch.String(), scope).Dec()
	}
}
