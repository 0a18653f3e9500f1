package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus exports request events as Prometheus collectors.
type Prometheus struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

var _ Observer = (*Prometheus)(nil)

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claudify_requests_total",
				Help: "Total number of provider executions by outcome",
			},
			[]string{"provider", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "claudify_request_duration_seconds",
				Help:    "Duration of provider executions",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"provider", "outcome"},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "claudify_requests_in_flight",
				Help: "Provider executions currently running",
			},
			[]string{"provider"},
		),
	}

	for _, c := range []prometheus.Collector{p.requests, p.duration, p.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	return p, nil
}

// RequestStarted implements Observer.
func (p *Prometheus) RequestStarted(provider string) {
	p.inFlight.WithLabelValues(provider).Inc()
}

// RequestFinished implements Observer.
func (p *Prometheus) RequestFinished(provider string, outcome Outcome, latency time.Duration) {
	p.inFlight.WithLabelValues(provider).Dec()
	p.requests.WithLabelValues(provider, string(outcome)).Inc()
	p.duration.WithLabelValues(provider, string(outcome)).Observe(latency.Seconds())
}
