package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barberia",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by handler.",
		},
		[]string{"handler"},
	)

	slotComputations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "barberia",
			Name:      "slot_computations_total",
			Help:      "Count of availability computations performed.",
		},
	)

	appointmentsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barberia",
			Name:      "appointments_submitted_total",
			Help:      "Count of appointment submissions by outcome.",
		},
		[]string{"outcome"},
	)

	snapshotRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barberia",
			Name:      "snapshot_refreshes_total",
			Help:      "Count of booking-data snapshot refreshes by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, slotComputations, appointmentsSubmitted, snapshotRefreshes)
	})
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}

func IncSlotComputation() {
	slotComputations.Inc()
}

// IncSubmission records an appointment submission outcome:
// "created", "conflict", "rejected" or "error".
func IncSubmission(outcome string) {
	appointmentsSubmitted.WithLabelValues(outcome).Inc()
}

// IncSnapshotRefresh records a snapshot refresh outcome: "ok" or "error".
func IncSnapshotRefresh(outcome string) {
	snapshotRefreshes.WithLabelValues(outcome).Inc()
}
