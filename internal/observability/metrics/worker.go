package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics tracks job throughput and extraction latency for the worker
// service.
type WorkerMetrics struct {
	registry *prometheus.Registry

	jobsTotal          *prometheus.CounterVec
	extractionDuration prometheus.Histogram
	jobsInFlight       prometheus.Gauge
}

// NewWorkerMetrics builds a WorkerMetrics set on a fresh registry.
func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	jobsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "docex",
			Subsystem:   "worker",
			Name:        "jobs_total",
			Help:        "Jobs processed, labeled by outcome.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"outcome"},
	)
	extractionDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "docex",
			Subsystem:   "worker",
			Name:        "extraction_duration_seconds",
			Help:        "Wall-clock duration of extraction calls.",
			Buckets:     prometheus.ExponentialBuckets(0.1, 2, 12),
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	jobsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "docex",
			Subsystem:   "worker",
			Name:        "jobs_in_flight",
			Help:        "Jobs currently being processed.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	registry.MustRegister(jobsTotal, extractionDuration, jobsInFlight)

	return &WorkerMetrics{
		registry:           registry,
		jobsTotal:          jobsTotal,
		extractionDuration: extractionDuration,
		jobsInFlight:       jobsInFlight,
	}
}

// Job outcome labels.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeRetried   = "retried"
	OutcomeSkipped   = "skipped"
)

// ObserveJob records one finished job.
func (m *WorkerMetrics) ObserveJob(outcome string, extraction time.Duration) {
	m.jobsTotal.WithLabelValues(outcome).Inc()
	if extraction > 0 {
		m.extractionDuration.Observe(extraction.Seconds())
	}
}

// JobStarted and JobFinished bracket the in-flight gauge.
func (m *WorkerMetrics) JobStarted()  { m.jobsInFlight.Inc() }
func (m *WorkerMetrics) JobFinished() { m.jobsInFlight.Dec() }

// Handler returns the scrape endpoint for this registry.
func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
