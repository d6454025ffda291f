package metrics

import (
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backfillBatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "batches_total",
		Help:      "Count of processed backfill batches.",
	}, []string{"status"})
	backfillBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "batch_duration_seconds",
		Help:      "Duration of a backfill batch.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
	backfillBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "batch_size",
		Help:      "Number of heights requested per batch.",
		Buckets:   prometheus.LinearBuckets(2, 2, 10),
	})
	backfillFailedHeightsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "failed_heights_total",
		Help:      "Count of heights that could not be fetched or stored.",
	})
	backfillBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "backoff_seconds",
		Help:      "Waits applied after fully failed batches.",
		Buckets:   []float64{1, 2, 4, 6, 8, 10, 12, 15, 30, 45, 60, 90},
	})
	backfillProgressHeights = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "progress_heights",
		Help:      "Backfill walk position.",
	}, []string{"kind"})
	backfillStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "status",
		Help:      "1 for the current backfill status.",
	}, []string{"status"})
)

var backfillStatuses = []model.BackfillStatus{
	model.BackfillIdle,
	model.BackfillRunning,
	model.BackfillComplete,
	model.BackfillPaused,
	model.BackfillError,
}

// Backfill tracks the backward walk.
type Backfill struct{}

func NewBackfill() *Backfill {
	return &Backfill{}
}

// ObserveBatch records one batch with the number of requested and failed heights.
func (m Backfill) ObserveBatch(err error, heights, failed int, started time.Time) {
	s := status(err)
	backfillBatchTotal.WithLabelValues(s).Inc()
	backfillBatchDuration.WithLabelValues(s).Observe(time.Since(started).Seconds())
	backfillBatchSize.Observe(float64(heights))
	backfillFailedHeightsTotal.Add(float64(failed))
}

func (m Backfill) ObserveBackoff(wait time.Duration) {
	backfillBackoffSeconds.Observe(wait.Seconds())
}

// ObserveProgress exports the latest progress snapshot.
func (m Backfill) ObserveProgress(p model.BackfillProgress) {
	backfillProgressHeights.WithLabelValues("oldest").Set(float64(p.OldestHeight))
	backfillProgressHeights.WithLabelValues("target").Set(float64(p.TargetHeight))
	backfillProgressHeights.WithLabelValues("needed").Set(float64(p.TotalNeeded))
	backfillProgressHeights.WithLabelValues("done").Set(float64(p.TotalDone))
	backfillProgressHeights.WithLabelValues("gaps").Set(float64(p.Gaps))
	for _, st := range backfillStatuses {
		v := 0.0
		if st == p.Status {
			v = 1
		}
		backfillStatus.WithLabelValues(string(st)).Set(v)
	}
}
