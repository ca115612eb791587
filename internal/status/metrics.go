package status

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statuskite",
			Subsystem: "status",
			Name:      "recalculations_total",
			Help:      "Service status recalculations by outcome",
		},
		[]string{"outcome"},
	)

	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statuskite",
			Subsystem: "status",
			Name:      "transitions_total",
			Help:      "Derived service status transitions",
		},
		[]string{"from", "to"},
	)
)

func recordRecalculation(changed bool) {
	outcome := "unchanged"
	if changed {
		outcome = "changed"
	}
	recalculationsTotal.WithLabelValues(outcome).Inc()
}

func recordTransition(from, to string) {
	transitionsTotal.WithLabelValues(from, to).Inc()
}
