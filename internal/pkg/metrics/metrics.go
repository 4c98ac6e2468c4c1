// Package metrics declares the Prometheus collectors of the fulfillment
// service. Collectors are package globals registered once by Register.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DispatchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_dispatch_attempts_total",
			Help: "Driver reservations by outcome (reserved, no_capacity, error)",
		},
		[]string{"outcome"},
	)

	DriverClaimConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fulfillment_driver_claim_conflicts_total",
			Help: "Driver claims lost to a concurrent reservation",
		},
	)

	StatusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_status_transitions_total",
			Help: "Applied status transitions by entity and target status",
		},
		[]string{"entity", "status"},
	)

	NotificationsEnqueuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fulfillment_notifications_enqueued_total",
			Help: "Notifications accepted by the notification sink",
		},
	)

	NotificationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fulfillment_notification_failures_total",
			Help: "Notifications that could not be enqueued or stored",
		},
	)

	NotificationQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fulfillment_notification_queue_depth",
			Help: "Notifications waiting for a delivery worker",
		},
	)

	InconsistenciesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_inconsistencies_total",
			Help: "Order/delivery inconsistencies recorded, by source",
		},
		[]string{"source"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fulfillment_operation_duration_seconds",
			Help:    "Duration of orchestrator operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	JobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_job_runs_total",
			Help: "Background job runs by job and result",
		},
		[]string{"job", "result"},
	)
)

// Register registers all collectors with the default registry. It must be
// called once per process.
func Register() {
	prometheus.MustRegister(DispatchAttemptsTotal)
	prometheus.MustRegister(DriverClaimConflictsTotal)
	prometheus.MustRegister(StatusTransitionsTotal)
	prometheus.MustRegister(NotificationsEnqueuedTotal)
	prometheus.MustRegister(NotificationFailuresTotal)
	prometheus.MustRegister(NotificationQueueDepth)
	prometheus.MustRegister(InconsistenciesTotal)
	prometheus.MustRegister(OperationDuration)
	prometheus.MustRegister(JobRunsTotal)
}
