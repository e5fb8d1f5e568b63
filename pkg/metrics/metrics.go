package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Flush triggers, used as the "trigger" label.
const (
	TriggerAutosave = "autosave"
	TriggerManual   = "manual"
	TriggerDirect   = "direct"
)

// Metrics wraps Prometheus collectors for the persistence layer.
type Metrics struct {
	registry       *prometheus.Registry
	flushesTotal   *prometheus.CounterVec
	flushDuration  prometheus.Histogram
	payloadBytes   prometheus.Gauge
	lastFlushGauge prometheus.Gauge
	loadsTotal     *prometheus.CounterVec
}

// New initializes a registry with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		flushesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrboard_flushes_total",
			Help: "Snapshot writes by trigger and result.",
		}, []string{"trigger", "result"}),
		flushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hrboard_flush_duration_seconds",
			Help:    "Duration of snapshot writes in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		payloadBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hrboard_payload_bytes",
			Help: "Size of the last written snapshot.",
		}),
		lastFlushGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hrboard_last_flush_timestamp",
			Help: "Unix timestamp of the last successful write.",
		}),
		loadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrboard_loads_total",
			Help: "Startup loads by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.flushesTotal,
		m.flushDuration,
		m.payloadBytes,
		m.lastFlushGauge,
		m.loadsTotal,
	)
	return m
}

// Handler returns a Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFlush records one write attempt.
func (m *Metrics) ObserveFlush(trigger string, duration time.Duration, size int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.flushesTotal.WithLabelValues(trigger, result).Inc()
	m.flushDuration.Observe(duration.Seconds())
	if err == nil {
		m.payloadBytes.Set(float64(size))
	}
}

// SetLastFlushTimestamp sets the time of the last successful write.
func (m *Metrics) SetLastFlushTimestamp(t time.Time) {
	if m == nil {
		return
	}
	m.lastFlushGauge.Set(float64(t.Unix()))
}

// IncLoads counts a startup load with the given outcome.
func (m *Metrics) IncLoads(outcome string) {
	if m == nil {
		return
	}
	m.loadsTotal.WithLabelValues(outcome).Inc()
}
