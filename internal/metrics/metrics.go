// Package metrics records clustering outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"plexquant/internal/kmeans"
)

// Collector receives one call per k-means run.
type Collector interface {
	// RecordRun is called after every run. res is zero when err is non-nil.
	RecordRun(res kmeans.Result, duration time.Duration, err error)
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordRun(kmeans.Result, time.Duration, error) {}

// Outcome label values.
const (
	OutcomeConverged = "converged"
	OutcomeExhausted = "exhausted"
	OutcomeError     = "error"
)

// Prometheus exports run counts, epochs and durations.
type Prometheus struct {
	runs     *prometheus.CounterVec
	epochs   prometheus.Histogram
	duration prometheus.Histogram
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plexquant",
			Name:      "kmeans_runs_total",
			Help:      "K-means runs by outcome.",
		}, []string{"outcome"}),
		epochs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "plexquant",
			Name:      "kmeans_epochs",
			Help:      "Epochs executed per successful run.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 200, 300},
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "plexquant",
			Name:      "kmeans_run_duration_seconds",
			Help:      "Wall time per run.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
	for _, c := range []prometheus.Collector{p.runs, p.epochs, p.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) RecordRun(res kmeans.Result, duration time.Duration, err error) {
	p.duration.Observe(duration.Seconds())
	switch {
	case err != nil:
		p.runs.WithLabelValues(OutcomeError).Inc()
		return
	case res.Converged:
		p.runs.WithLabelValues(OutcomeConverged).Inc()
	default:
		p.runs.WithLabelValues(OutcomeExhausted).Inc()
	}
	p.epochs.Observe(float64(res.Epochs))
}
