package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	forwardSyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "forward_sync",
		Name:      "runs_total",
		Help:      "Count of forward sync runs.",
	}, []string{"status"})
	forwardSyncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "forward_sync",
		Name:      "run_duration_seconds",
		Help:      "Duration of forward sync runs.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"status"})
	forwardSyncInsertedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "forward_sync",
		Name:      "inserted_blocks_total",
		Help:      "Count of blocks appended at the chain tip.",
	})
)

// ForwardSync tracks forward sync runs.
type ForwardSync struct{}

func NewForwardSync() *ForwardSync {
	return &ForwardSync{}
}

// ObserveSync records one run with the number of new rows.
func (m ForwardSync) ObserveSync(err error, inserted int, started time.Time) {
	s := status(err)
	forwardSyncRunsTotal.WithLabelValues(s).Inc()
	forwardSyncDuration.WithLabelValues(s).Observe(time.Since(started).Seconds())
	forwardSyncInsertedTotal.Add(float64(inserted))
}
