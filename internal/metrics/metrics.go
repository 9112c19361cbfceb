package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the trainer service.
type Metrics struct {
	registry         *prometheus.Registry
	requestsTotal    *prometheus.CounterVec
	errorsTotal      prometheus.Counter
	analysesTotal    *prometheus.CounterVec
	eventsDetected   prometheus.Counter
	attemptsTotal    *prometheus.CounterVec
	inferenceSeconds prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cuetrainer_requests_total",
		Help: "Total number of HTTP requests received",
	}, []string{"method"})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cuetrainer_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	analysesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cuetrainer_analyses_total",
		Help: "Video analyses by final status",
	}, []string{"status"})
	eventsDetected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cuetrainer_events_detected_total",
		Help: "Ground truth events produced by analyses",
	})
	attemptsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cuetrainer_attempts_total",
		Help: "Scored user attempts by accuracy level",
	}, []string{"accuracy"})
	inferenceSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cuetrainer_inference_duration_seconds",
		Help:    "Latency of multimodal inference calls",
		Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		analysesTotal,
		eventsDetected,
		attemptsTotal,
		inferenceSeconds,
	)

	return &Metrics{
		registry:         registry,
		requestsTotal:    requestsTotal,
		errorsTotal:      errorsTotal,
		analysesTotal:    analysesTotal,
		eventsDetected:   eventsDetected,
		attemptsTotal:    attemptsTotal,
		inferenceSeconds: inferenceSeconds,
	}
}

// All recorders are safe on a nil *Metrics so callers can run without it.

func (m *Metrics) IncRequests(method string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method).Inc()
}

func (m *Metrics) IncErrors() {
	if m == nil {
		return
	}
	m.errorsTotal.Inc()
}

func (m *Metrics) ObserveAnalysis(status string, events int) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(status).Inc()
	m.eventsDetected.Add(float64(events))
}

func (m *Metrics) ObserveAttempt(accuracy string) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(accuracy).Inc()
}

func (m *Metrics) ObserveInference(seconds float64) {
	if m == nil {
		return
	}
	m.inferenceSeconds.Observe(seconds)
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
