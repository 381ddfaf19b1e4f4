package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of one LaunchWolf process.
//
// The wizard is short-lived, so nothing is served over HTTP. The registry
// can be written to a textfile on shutdown instead.
type Metrics struct {
	config MetricsConfig

	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec

	stepsCompleted *prometheus.CounterVec

	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	providerErrors   *prometheus.CounterVec

	configResolutions *prometheus.CounterVec
	pollAttempts      *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of launch runs by outcome",
			},
			[]string{"outcome"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of launch runs in seconds",
				Buckets:   buckets,
			},
			[]string{"outcome"},
		),

		stepsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_completed_total",
				Help:      "Total number of wizard steps reaching a terminal status",
			},
			[]string{"step", "status"},
		),

		providerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "Total number of provider API calls",
			},
			[]string{"provider", "operation"},
		),
		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_call_duration_seconds",
				Help:      "Duration of provider API calls in seconds",
				Buckets:   buckets,
			},
			[]string{"provider", "operation"},
		),
		providerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Total number of failed provider API calls",
			},
			[]string{"provider", "operation"},
		),

		configResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_resolutions_total",
				Help:      "Total number of config lookups by key and source",
			},
			[]string{"key", "source"},
		),
		pollAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "poll_attempts_total",
				Help:      "Total number of poll retries",
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		m.runs,
		m.runDuration,
		m.stepsCompleted,
		m.providerCalls,
		m.providerDuration,
		m.providerErrors,
		m.configResolutions,
		m.pollAttempts,
	)

	return m, nil
}

// RecordRun records a finished launch run.
func (m *Metrics) RecordRun(outcome string, duration time.Duration) {
	if m.runs == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordStepCompleted records a step reaching done or failed.
func (m *Metrics) RecordStepCompleted(step, status string) {
	if m.stepsCompleted == nil {
		return
	}
	m.stepsCompleted.WithLabelValues(step, status).Inc()
}

// RecordProviderCall records a provider call with its duration.
func (m *Metrics) RecordProviderCall(provider, operation string, duration time.Duration) {
	if m.providerCalls == nil {
		return
	}
	m.providerCalls.WithLabelValues(provider, operation).Inc()
	m.providerDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordProviderError records a failed provider call.
func (m *Metrics) RecordProviderError(provider, operation string) {
	if m.providerErrors == nil {
		return
	}
	m.providerErrors.WithLabelValues(provider, operation).Inc()
}

// RecordConfigResolution records where a config value came from.
func (m *Metrics) RecordConfigResolution(key, source string) {
	if m.configResolutions == nil {
		return
	}
	m.configResolutions.WithLabelValues(key, source).Inc()
}

// RecordPollAttempt records one poll retry.
func (m *Metrics) RecordPollAttempt(operation string) {
	if m.pollAttempts == nil {
		return
	}
	m.pollAttempts.WithLabelValues(operation).Inc()
}

// Registry returns the underlying registry, or nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the registry to the configured textfile. It is a
// no-op when metrics are disabled or no textfile is configured.
func (m *Metrics) WriteTextfile() error {
	if m.registry == nil || m.config.Textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(m.config.Textfile, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", m.config.Textfile, err)
	}
	return nil
}

// Timer measures the duration of an operation.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
