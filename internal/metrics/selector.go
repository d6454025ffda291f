package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	selectorVerdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "source_selector",
		Name:      "verdicts_total",
		Help:      "Count of fresh availability verdicts for the privileged source.",
	}, []string{"available"})
	selectorAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "source_selector",
		Name:      "privileged_available",
		Help:      "1 when the last verdict found the privileged source reachable.",
	})
)

// Selector tracks availability verdicts of the privileged source.
type Selector struct{}

func NewSelector() *Selector {
	return &Selector{}
}

func (m Selector) ObserveVerdict(available bool) {
	if available {
		selectorVerdictsTotal.WithLabelValues("true").Inc()
		selectorAvailable.Set(1)
		return
	}
	selectorVerdictsTotal.WithLabelValues("false").Inc()
	selectorAvailable.Set(0)
}
