package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	epochSyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "epoch_sync",
		Name:      "runs_total",
		Help:      "Count of epoch walks.",
	}, []string{"status"})
	epochSyncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "epoch_sync",
		Name:      "run_duration_seconds",
		Help:      "Duration of epoch walks.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	}, []string{"status"})
	epochSyncProcessed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "epoch_sync",
		Name:      "last_processed_epochs",
		Help:      "Epochs upserted by the last walk.",
	})
)

// EpochSync tracks platform epoch walks.
type EpochSync struct{}

func NewEpochSync() *EpochSync {
	return &EpochSync{}
}

func (m EpochSync) ObserveSync(err error, processed int, started time.Time) {
	s := status(err)
	epochSyncRunsTotal.WithLabelValues(s).Inc()
	epochSyncDuration.WithLabelValues(s).Observe(time.Since(started).Seconds())
	epochSyncProcessed.Set(float64(processed))
}
