// Package metrics holds the Prometheus instruments for upstream calls and predictions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Recorder groups the service's collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	predictions      *prometheus.CounterVec
	probes           *prometheus.CounterVec
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "klymate",
			Name:      "upstream_requests_total",
			Help:      "Upstream provider calls by subsystem and outcome",
		}, []string{"subsystem", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "klymate",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream provider call latency",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"subsystem"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "klymate",
			Name:      "predictions_total",
			Help:      "Next-day predictions by outcome",
		}, []string{"outcome"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "klymate",
			Name:      "upstream_probes_total",
			Help:      "Scheduled upstream probes by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(r.upstreamRequests, r.upstreamLatency, r.predictions, r.probes)
	return r
}

// ObserveUpstream records one upstream call. outcome is OutcomeOK or an error kind.
func (r *Recorder) ObserveUpstream(subsystem, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.upstreamRequests.WithLabelValues(subsystem, outcome).Inc()
	r.upstreamLatency.WithLabelValues(subsystem).Observe(elapsed.Seconds())
}

func (r *Recorder) ObservePrediction(outcome string) {
	if r == nil {
		return
	}
	r.predictions.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveProbe(outcome string) {
	if r == nil {
		return
	}
	r.probes.WithLabelValues(outcome).Inc()
}
