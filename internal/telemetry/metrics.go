package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the checkout's operational counters. Submission
// outcomes and per-step side-effect failures are the two signals that
// matter here: the pipeline swallows non-fatal errors, so these counters
// are often the only place they surface.
type Metrics struct {
	Submissions        *prometheus.CounterVec
	SideEffectFailures *prometheus.CounterVec
	Requests           *prometheus.CounterVec
	LatencyMS          *prometheus.HistogramVec
}

func New() *Metrics {
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evemaster",
		Subsystem: "checkout",
		Name:      "submissions_total",
		Help:      "Total checkout submissions by outcome.",
	}, []string{"outcome"})
	sideEffects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evemaster",
		Subsystem: "checkout",
		Name:      "side_effect_failures_total",
		Help:      "Non-fatal pipeline step failures by step.",
	}, []string{"step"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evemaster",
		Subsystem: "checkout",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "evemaster",
		Subsystem: "checkout",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	prometheus.MustRegister(submissions, sideEffects, requests, latency)
	return &Metrics{
		Submissions:        submissions,
		SideEffectFailures: sideEffects,
		Requests:           requests,
		LatencyMS:          latency,
	}
}

func (m *Metrics) SubmissionFinished(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SideEffectFailed(step string) {
	m.SideEffectFailures.WithLabelValues(step).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
