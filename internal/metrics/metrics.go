// Package metrics records derived-metric computations for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what services depend on, so tests can pass a no-op.
type Recorder interface {
	RecordComputation(kind string, duration time.Duration)
	RecordScore(mode string, score int)
	RecordSnapshot(hit bool)
	RecordSnapshotRebuild()
}

const (
	KindScore      = "score"
	KindResilience = "resilience"
	KindStreak     = "streak"
	KindInsights   = "insights"
	KindSummary    = "summary"
)

type Collector struct {
	computations     *prometheus.CounterVec
	computeLatency   *prometheus.HistogramVec
	scores           *prometheus.HistogramVec
	snapshotLookups  *prometheus.CounterVec
	snapshotRebuilds prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resonance_computations_total",
			Help: "Derived metric computations by kind",
		}, []string{"kind"}),
		computeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "resonance_computation_duration_seconds",
			Help:    "Time spent computing derived metrics, including snapshot load",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		scores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "resonance_score",
			Help:    "Distribution of computed resonance scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}, []string{"mode"}),
		snapshotLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resonance_snapshot_lookups_total",
			Help: "Snapshot cache lookups by result",
		}, []string{"result"}),
		snapshotRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resonance_snapshot_rebuilds_total",
			Help: "Snapshots rebuilt after a record-set change",
		}),
	}

	reg.MustRegister(
		c.computations,
		c.computeLatency,
		c.scores,
		c.snapshotLookups,
		c.snapshotRebuilds,
	)

	return c
}

func (c *Collector) RecordComputation(kind string, duration time.Duration) {
	c.computations.WithLabelValues(kind).Inc()
	c.computeLatency.WithLabelValues(kind).Observe(duration.Seconds())
}

func (c *Collector) RecordScore(mode string, score int) {
	c.scores.WithLabelValues(mode).Observe(float64(score))
}

func (c *Collector) RecordSnapshot(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.snapshotLookups.WithLabelValues(result).Inc()
}

func (c *Collector) RecordSnapshotRebuild() {
	c.snapshotRebuilds.Inc()
}

type nop struct{}

// Nop returns a Recorder that drops everything.
func Nop() Recorder { return nop{} }

func (nop) RecordComputation(string, time.Duration) {}
func (nop) RecordScore(string, int)                 {}
func (nop) RecordSnapshot(bool)                     {}
func (nop) RecordSnapshotRebuild()                  {}
