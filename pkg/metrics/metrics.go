// Package metrics exports Prometheus metrics for cells, observers and
// store registries.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/cellstore/pkg/reactive"
	"github.com/vango-dev/cellstore/pkg/store"
)

// Config configures the Prometheus collector.
type Config struct {
	// Namespace is the metrics namespace (default: "cellstore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for notify duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "cellstore",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records engine and registry events as Prometheus metrics.
// It implements reactive.Instrumentation and store.Hooks.
type Collector struct {
	cellsCreated       prometheus.Counter
	writesTotal        prometheus.Counter
	explicitCalls      prometheus.Counter
	implicitCalls      prometheus.Counter
	prunedLinks        prometheus.Counter
	notifyDuration     prometheus.Histogram
	activeObservers    prometheus.Gauge
	sessionInvalidates prometheus.Histogram
	poisonedCells      prometheus.Counter
	storeEvents        *prometheus.CounterVec
}

var (
	_ reactive.Instrumentation = (*Collector)(nil)
	_ store.Hooks              = (*Collector)(nil)
)

// New registers the collector's metrics and returns it.
//
// Metrics collected:
//   - cellstore_cells_created_total
//   - cellstore_writes_total: Set and Update calls that completed a notify pass
//   - cellstore_explicit_notifications_total
//   - cellstore_implicit_notifications_total
//   - cellstore_pruned_links_total
//   - cellstore_notify_duration_seconds
//   - cellstore_active_observers
//   - cellstore_observer_invalidations: invalidations per finished session
//   - cellstore_poisoned_cells_total
//   - cellstore_store_events_total: registry events by registry and event
//
// Example:
//
//	c := metrics.New(metrics.WithNamespace("myapp"))
//	reactive.SetInstrumentation(c)
//	store.SetHooks(c)
//	http.Handle("/metrics", promhttp.Handler())
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Collector{
		cellsCreated:  counter("cells_created_total", "Total number of cells created"),
		writesTotal:   counter("writes_total", "Total number of cell writes"),
		explicitCalls: counter("explicit_notifications_total", "Total explicit subscriber invocations"),
		implicitCalls: counter("implicit_notifications_total", "Total observer invalidations delivered by writes"),
		prunedLinks:   counter("pruned_links_total", "Total dead observer links pruned"),
		poisonedCells: counter("poisoned_cells_total", "Total cells poisoned by a panicking update"),

		notifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notify_duration_seconds",
			Help:        "Duration of a write's notification pass in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		activeObservers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_observers",
			Help:        "Number of observation sessions not yet disposed",
			ConstLabels: config.ConstLabels,
		}),

		sessionInvalidates: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "observer_invalidations",
			Help:        "Invalidations received per finished observation session",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 1, 2, 5, 10, 50, 100},
		}),

		storeEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_events_total",
			Help:        "Store registry events by registry and event type",
			ConstLabels: config.ConstLabels,
		}, []string{"registry", "event"}),
	}
}

// CellCreated implements reactive.Instrumentation.
func (c *Collector) CellCreated(string) {
	c.cellsCreated.Inc()
}

// Notified implements reactive.Instrumentation.
func (c *Collector) Notified(stats reactive.NotifyStats) {
	c.writesTotal.Inc()
	c.explicitCalls.Add(float64(stats.Explicit))
	c.implicitCalls.Add(float64(stats.Implicit))
	c.prunedLinks.Add(float64(stats.Pruned))
	c.notifyDuration.Observe(stats.Duration.Seconds())
}

// ObserverInstalled implements reactive.Instrumentation.
func (c *Collector) ObserverInstalled(string) {
	c.activeObservers.Inc()
}

// ObserverDisposed implements reactive.Instrumentation.
func (c *Collector) ObserverDisposed(_ string, invalidations uint64) {
	c.activeObservers.Dec()
	c.sessionInvalidates.Observe(float64(invalidations))
}

// Poisoned implements reactive.Instrumentation.
func (c *Collector) Poisoned(string, any) {
	c.poisonedCells.Inc()
}

// StoreRegistered implements store.Hooks.
func (c *Collector) StoreRegistered(registry, _ string) {
	c.storeEvents.WithLabelValues(registry, "registered").Inc()
}

// StoreRemoved implements store.Hooks.
func (c *Collector) StoreRemoved(registry, _ string) {
	c.storeEvents.WithLabelValues(registry, "removed").Inc()
}

// StoresCleared implements store.Hooks.
func (c *Collector) StoresCleared(registry string, count int) {
	c.storeEvents.WithLabelValues(registry, "cleared").Add(float64(count))
}
