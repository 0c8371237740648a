package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"framecheck/internal/models"
)

// Telemetry holds the Prometheus collectors of the estimation engine.
// A nil *Telemetry is valid and records nothing.
type Telemetry struct {
	registry        *prometheus.Registry
	estimations     *prometheus.CounterVec
	providerCalls   *prometheus.CounterVec
	providerLatency prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	cacheEntries    prometheus.Gauge
	compatibility   *prometheus.CounterVec
}

// NewTelemetry creates the collectors on a private registry together with
// the Go runtime and process collectors
func NewTelemetry() *Telemetry {
	t := &Telemetry{
		registry: prometheus.NewRegistry(),
		estimations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "framecheck",
			Subsystem: "estimation",
			Name:      "results_total",
			Help:      "Estimations served, by source",
		}, []string{"source"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "framecheck",
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Calls to the estimation provider, by outcome",
		}, []string{"outcome"}),
		providerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "framecheck",
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Latency of estimation provider calls",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30},
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "framecheck",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Estimate cache lookups, by result",
		}, []string{"result"}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "framecheck",
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Entries held by the estimate cache, stale ones included",
		}),
		compatibility: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "framecheck",
			Subsystem: "compatibility",
			Name:      "checks_total",
			Help:      "Compatibility checks, by verdict",
		}, []string{"verdict"}),
	}

	t.registry.MustRegister(
		t.estimations,
		t.providerCalls,
		t.providerLatency,
		t.cacheLookups,
		t.cacheEntries,
		t.compatibility,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return t
}

// Registry returns the registry to expose on /metrics
func (t *Telemetry) Registry() *prometheus.Registry {
	if t == nil {
		return nil
	}
	return t.registry
}

func (t *Telemetry) estimation(source models.Source) {
	if t == nil {
		return
	}
	t.estimations.WithLabelValues(string(source)).Inc()
}

func (t *Telemetry) providerCall(outcome string, elapsed time.Duration) {
	if t == nil {
		return
	}
	t.providerCalls.WithLabelValues(outcome).Inc()
	t.providerLatency.Observe(elapsed.Seconds())
}

func (t *Telemetry) cacheLookup(result string) {
	if t == nil {
		return
	}
	t.cacheLookups.WithLabelValues(result).Inc()
}

func (t *Telemetry) cacheSize(n int) {
	if t == nil {
		return
	}
	t.cacheEntries.Set(float64(n))
}

func (t *Telemetry) compatibilityVerdict(compatible bool) {
	if t == nil {
		return
	}
	verdict := "incompatible"
	if compatible {
		verdict = "compatible"
	}
	t.compatibility.WithLabelValues(verdict).Inc()
}
