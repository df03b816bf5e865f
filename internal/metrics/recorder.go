package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "billcheck"

// Recorder collects client-side workflow metrics. Each Recorder owns its
// registry so that tests and multiple instances never collide.
type Recorder struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	stale       *prometheus.CounterVec
	transitions *prometheus.CounterVec
	inFlight    prometheus.Gauge
}

// NewRecorder creates a Recorder with Go runtime and process collectors registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Remote API calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Remote API call latency by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"operation"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer request superseded them.",
		}, []string{"class"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_transitions_total",
			Help:      "Workflow step changes by destination step.",
		}, []string{"step"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_requests_in_flight",
			Help:      "Remote API calls currently outstanding.",
		}),
	}
	reg.MustRegister(
		r.requests, r.latency, r.stale, r.transitions, r.inFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveRequest records one finished remote call.
func (r *Recorder) ObserveRequest(operation string, d time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.requests.WithLabelValues(operation, outcome).Inc()
	r.latency.WithLabelValues(operation).Observe(d.Seconds())
}

// StartRequest marks a call in flight and returns the function that ends it.
func (r *Recorder) StartRequest() func() {
	if r == nil {
		return func() {}
	}
	r.inFlight.Inc()
	return r.inFlight.Dec
}

// StaleDiscarded counts a response dropped by the sequencing guard.
func (r *Recorder) StaleDiscarded(class string) {
	if r == nil {
		return
	}
	r.stale.WithLabelValues(class).Inc()
}

// Transition counts a step change.
func (r *Recorder) Transition(step string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(step).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
