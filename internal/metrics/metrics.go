// Package metrics tracks per-provider request counts and latency.
//
// A Tracker keeps running totals in memory for status reporting. An optional
// Observer receives the same events; Prometheus is the observer used by the
// claudify binary.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Outcome labels a finished request.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Observer receives request lifecycle events.
type Observer interface {
	RequestStarted(provider string)
	RequestFinished(provider string, outcome Outcome, latency time.Duration)
}

// Snapshot is a point-in-time copy of a Tracker's totals.
type Snapshot struct {
	TotalRequests      int64         `json:"totalRequests"`
	SuccessfulRequests int64         `json:"successfulRequests"`
	FailedRequests     int64         `json:"failedRequests"`
	AverageLatency     time.Duration `json:"-"`
	AverageLatencyMs   float64       `json:"averageLatency"`
}

// Tracker accumulates request totals for one provider. It is safe for
// concurrent use.
type Tracker struct {
	provider string
	observer Observer

	total     atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64

	mu         sync.Mutex
	avgLatency time.Duration
}

// NewTracker creates a Tracker for provider. observer may be nil.
func NewTracker(provider string, observer Observer) *Tracker {
	return &Tracker{provider: provider, observer: observer}
}

// Begin records the start of a request and returns the function that records
// its end. The average latency is a running mean over successful requests
// only.
func (t *Tracker) Begin() func(success bool) {
	start := time.Now()

	t.total.Add(1)

	if t.observer != nil {
		t.observer.RequestStarted(t.provider)
	}

	var once sync.Once

	return func(success bool) {
		once.Do(func() {
			latency := time.Since(start)
			outcome := OutcomeFailure

			if success {
				outcome = OutcomeSuccess
				n := t.succeeded.Add(1)

				t.mu.Lock()
				t.avgLatency += (latency - t.avgLatency) / time.Duration(n)
				t.mu.Unlock()
			} else {
				t.failed.Add(1)
			}

			if t.observer != nil {
				t.observer.RequestFinished(t.provider, outcome, latency)
			}
		})
	}
}

// Snapshot returns the current totals.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	avg := t.avgLatency
	t.mu.Unlock()

	return Snapshot{
		TotalRequests:      t.total.Load(),
		SuccessfulRequests: t.succeeded.Load(),
		FailedRequests:     t.failed.Load(),
		AverageLatency:     avg,
		AverageLatencyMs:   float64(avg) / float64(time.Millisecond),
	}
}
