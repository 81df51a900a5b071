package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus instruments a Driver updates. A nil *Metrics
// disables instrumentation.
type Metrics struct {
	rounds        prometheus.Counter
	setups        *prometheus.CounterVec
	dedupHits     *prometheus.CounterVec
	dedupFull     *prometheus.CounterVec
	stored        prometheus.Counter
	poolSize      prometheus.Gauge
	cutoff        prometheus.Gauge
	roundDuration prometheus.Histogram
}

// NewMetrics registers the search instruments with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		rounds: f.NewCounter(prometheus.CounterOpts{
			Namespace: "destroy",
			Name:      "rounds_total",
			Help:      "Search rounds started.",
		}),
		setups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "destroy",
			Name:      "setups_total",
			Help:      "Extended candidates simulated, by result.",
		}, []string{"result"}),
		dedupHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "destroy",
			Name:      "dedup_hits_total",
			Help:      "Work skipped because a fingerprint was already indexed.",
		}, []string{"index"}),
		dedupFull: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "destroy",
			Name:      "dedup_full_total",
			Help:      "Fingerprints that could not be indexed because the index was full.",
		}, []string{"index"}),
		stored: f.NewCounter(prometheus.CounterOpts{
			Namespace: "destroy",
			Name:      "candidates_stored_total",
			Help:      "Settled candidates written to the unfiltered pool.",
		}),
		poolSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "destroy",
			Name:      "filtered_pool_size",
			Help:      "Candidates carried into the next round.",
		}),
		cutoff: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "destroy",
			Name:      "cost_cutoff",
			Help:      "Cost cutoff chosen by the last pool selection.",
		}),
		roundDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "destroy",
			Name:      "round_duration_seconds",
			Help:      "Wall time per search round.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
	}
}

func (m *Metrics) roundStarted() {
	if m != nil {
		m.rounds.Inc()
	}
}

func (m *Metrics) setup(r SetupResult) {
	if m != nil {
		m.setups.WithLabelValues(r.String()).Inc()
	}
}

func (m *Metrics) dedupHit(index string) {
	if m != nil {
		m.dedupHits.WithLabelValues(index).Inc()
	}
}

func (m *Metrics) indexFull(index string) {
	if m != nil {
		m.dedupFull.WithLabelValues(index).Inc()
	}
}

func (m *Metrics) candidateStored() {
	if m != nil {
		m.stored.Inc()
	}
}

func (m *Metrics) roundFinished(stats RoundStats, seconds float64) {
	if m != nil {
		m.poolSize.Set(float64(stats.Kept))
		m.cutoff.Set(float64(stats.Cutoff))
		m.roundDuration.Observe(seconds)
	}
}
