package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	enqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statuskite",
			Subsystem: "notify",
			Name:      "enqueued_total",
			Help:      "Webhook deliveries enqueued by event type",
		},
		[]string{"event"},
	)

	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statuskite",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Webhook delivery attempts by outcome",
		},
		[]string{"outcome"},
	)

	deliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "statuskite",
			Subsystem: "notify",
			Name:      "delivery_duration_seconds",
			Help:      "Time to deliver one webhook",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	queueFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "statuskite",
			Subsystem: "notify",
			Name:      "queue_fetched_total",
			Help:      "Deliveries fetched from the queue before the send attempt",
		},
	)

	queueSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "statuskite",
			Subsystem: "notify",
			Name:      "queue_size",
			Help:      "Deliveries in the queue by status",
		},
		[]string{"status"},
	)
)

func recordEnqueued(event string, count int) {
	enqueuedTotal.WithLabelValues(event).Add(float64(count))
}

func recordDelivery(outcome string) {
	deliveriesTotal.WithLabelValues(outcome).Inc()
}

func recordDeliveryDuration(duration time.Duration) {
	deliveryDuration.Observe(duration.Seconds())
}

func recordQueueFetched(count int) {
	queueFetched.Add(float64(count))
}

// RecordQueueStats updates queue size metrics.
func RecordQueueStats(stats *QueueStats) {
	queueSize.WithLabelValues("pending").Set(float64(stats.Pending))
	queueSize.WithLabelValues("processing").Set(float64(stats.Processing))
	queueSize.WithLabelValues("sent").Set(float64(stats.Sent))
	queueSize.WithLabelValues("failed").Set(float64(stats.Failed))
}
