// Package metrics exposes the scheduler's Prometheus instrumentation: job
// execution counts and durations, active job/entry gauges, and scheduler
// lifecycle events, served over HTTP via promhttp when enabled.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics wraps the Prometheus collectors the scheduler updates as it runs.
type Metrics struct {
	registry prometheus.Registerer

	jobsRegistered *prometheus.GaugeVec
	executionTotal *prometheus.CounterVec
	executionTime  *prometheus.HistogramVec
	schedulerUp    prometheus.Gauge
	events         *prometheus.CounterVec
}

// New creates and registers every collector against reg. A nil reg falls
// back to prometheus.DefaultRegisterer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		registry: reg,
		jobsRegistered: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "jobs_registered",
				Help:      "Number of jobs currently known to the registry, by scheduling state.",
			},
			[]string{"state"},
		),
		executionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_executions_total",
				Help:      "Total job executions, by outcome.",
			},
			[]string{"job_id", "status"},
		),
		executionTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_execution_duration_seconds",
				Help:      "Job execution duration in seconds.",
				Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 300, 900, 3600},
			},
			[]string{"job_id", "status"},
		),
		schedulerUp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scheduler_up",
				Help:      "1 if the tick loop is running, 0 otherwise.",
			},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scheduler_events_total",
				Help:      "Scheduler lifecycle and registry events, by kind.",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(
		m.jobsRegistered,
		m.executionTotal,
		m.executionTime,
		m.schedulerUp,
		m.events,
	)

	return m
}

// RecordExecution updates the execution counters for one finished run.
func (m *Metrics) RecordExecution(jobID, status string, duration time.Duration) {
	m.executionTotal.WithLabelValues(jobID, status).Inc()
	m.executionTime.WithLabelValues(jobID, status).Observe(duration.Seconds())
}

// SetJobCounts reports the current registry size split by scheduling state:
// "scheduled" jobs have a live entry, "unscheduled" ones don't (an invalid
// cron expression, a one-shot time already in the past, or a one-shot job
// that has already fired).
func (m *Metrics) SetJobCounts(scheduled, unscheduled int) {
	m.jobsRegistered.WithLabelValues("scheduled").Set(float64(scheduled))
	m.jobsRegistered.WithLabelValues("unscheduled").Set(float64(unscheduled))
}

// SetSchedulerUp reports whether the tick loop is currently running.
func (m *Metrics) SetSchedulerUp(up bool) {
	if up {
		m.schedulerUp.Set(1)
	} else {
		m.schedulerUp.Set(0)
	}
}

// RecordEvent increments the counter for one eventlog event kind.
func (m *Metrics) RecordEvent(kind string) {
	m.events.WithLabelValues(kind).Inc()
}

// Server serves /metrics on addr until Shutdown is called.
type Server struct {
	httpServer *http.Server
}

// NewServer builds (but does not start) an HTTP server exposing gatherer's
// collectors via promhttp at /metrics.
func NewServer(addr string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{httpServer: &http.Server{Addr: addr, Handler: mux}}
}

// ListenAndServe blocks serving metrics until the process exits or the
// server is shut down; http.ErrServerClosed is not an error.
func (s *Server) ListenAndServe() error {
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the metrics HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
