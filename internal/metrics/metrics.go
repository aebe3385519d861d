// Package metrics exposes prometheus instrumentation for the pipeline
// and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector. It implements ops.Recorder so the
// dispatcher can observe operation outcomes without importing this
// package.
type Metrics struct {
	operationDuration *prometheus.HistogramVec
	operationCount    *prometheus.CounterVec

	requestDuration *prometheus.HistogramVec
	requestCount    *prometheus.CounterVec

	scheduledJobCount *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	return &Metrics{
		operationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of operation dispatch",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"kind", "result"},
		),
		operationCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total dispatched operations",
			},
			[]string{"kind", "result"},
		),
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"path", "method", "status"},
		),
		requestCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		scheduledJobCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scheduled_jobs_total",
				Help:      "Total scheduler job runs",
			},
			[]string{"job", "outcome"},
		),
	}
}

// ObserveOperation records one dispatched operation.
func (m *Metrics) ObserveOperation(kind, result string, d time.Duration) {
	m.operationDuration.WithLabelValues(kind, result).Observe(d.Seconds())
	m.operationCount.WithLabelValues(kind, result).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(path, method string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(path, method, code).Observe(d.Seconds())
	m.requestCount.WithLabelValues(path, method, code).Inc()
}

// ObserveJob records one scheduler job run.
func (m *Metrics) ObserveJob(job string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.scheduledJobCount.WithLabelValues(job, outcome).Inc()
}

// Handler serves the prometheus scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
