// Package metrics exports hook runtime activity as Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	rt := hooks.NewRuntime(
//	    hooks.WithObserver(metrics.New(metrics.WithRegistry(reg))),
//	)
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/hookscope/pkg/hooks"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "hookscope").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: render-sized buckets from 10µs to 1s.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus observer.
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

// WithBuckets sets the render duration histogram buckets.
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

// DefaultBuckets covers render passes from 10µs to 1s.
var DefaultBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1}

func defaultConfig() Config {
	return Config{
		Namespace: "hookscope",
		Buckets:   DefaultBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer records runtime events. It implements hooks.Observer.
type Observer struct {
	hostsCreated   prometheus.Counter
	hostsReleased  *prometheus.CounterVec
	liveHosts      prometheus.Gauge
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	effectsRun     prometheus.Counter
	flushes        *prometheus.CounterVec
}

// New creates an observer and registers its metrics. Registering twice on
// the same registry panics, as promauto does.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Observer{
		hostsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "hosts_created_total",
			Help:        "Total number of hosts that got hook storage",
			ConstLabels: config.ConstLabels,
		}),

		hostsReleased: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "hosts_released_total",
			Help:        "Total number of hosts whose storage was released, by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		liveHosts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_hosts",
			Help:        "Number of hosts with live hook storage",
			ConstLabels: config.ConstLabels,
		}),

		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_passes_total",
			Help:        "Total number of render passes by scope and status",
			ConstLabels: config.ConstLabels,
		}, []string{"scope", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"scope"}),

		effectsRun: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_run_total",
			Help:        "Total number of effects run by flushes",
			ConstLabels: config.ConstLabels,
		}),

		flushes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_flushes_total",
			Help:        "Total number of effect flushes by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),
	}
}

func (o *Observer) HostCreated(uint64) {
	o.hostsCreated.Inc()
	o.liveHosts.Inc()
}

func (o *Observer) HostReleased(_ uint64, reason hooks.ReleaseReason) {
	o.hostsReleased.WithLabelValues(reason.String()).Inc()
	o.liveHosts.Dec()
}

func (o *Observer) RenderStarted(nested bool) func(hooks.RenderInfo) {
	scope := "top"
	if nested {
		scope = "nested"
	}
	start := time.Now()
	return func(info hooks.RenderInfo) {
		o.renderDuration.WithLabelValues(scope).Observe(time.Since(start).Seconds())
		o.renders.WithLabelValues(scope, status(info.Panic)).Inc()
	}
}

func (o *Observer) EffectsFlushed(info hooks.FlushInfo) {
	o.effectsRun.Add(float64(info.Ran))
	o.flushes.WithLabelValues(status(info.Panic)).Inc()
}

func status(panicValue any) string {
	if panicValue != nil {
		return "panic"
	}
	return "ok"
}

var _ hooks.Observer = (*Observer)(nil)
