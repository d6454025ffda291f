package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpSourceRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http_source",
		Name:      "requests_total",
		Help:      "Count of public API requests.",
	}, []string{"source", "operation", "status"})
	httpSourceRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http_source",
		Name:      "request_duration_seconds",
		Help:      "Duration of public API requests.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30},
	}, []string{"source", "operation", "status"})
)

// HTTPSource tracks requests to public block explorers and platform APIs.
type HTTPSource struct{}

func NewHTTPSource() *HTTPSource {
	return &HTTPSource{}
}

// Observe records a single request outcome and duration.
func (m HTTPSource) Observe(source, operation string, err error, started time.Time) {
	s := status(err)
	httpSourceRequestsTotal.WithLabelValues(source, operation, s).Inc()
	httpSourceRequestDuration.WithLabelValues(source, operation, s).Observe(time.Since(started).Seconds())
}
