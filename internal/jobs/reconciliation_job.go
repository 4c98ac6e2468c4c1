package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// ReconciliationJob scans every order/delivery status pair and records the
// pairs the consistency rules do not allow. It never repairs data.
//
// A pair is recorded once per process: later scans that find it unchanged
// stay silent until it is fixed and breaks again.
type ReconciliationJob struct {
	uowFactory ports.UnitOfWorkFactory
	recorder   ports.InconsistencyRecorder
	rules      services.ConsistencyRules
	schedule   string
	clock      func() time.Time

	mu       sync.Mutex
	reported map[string]struct{}

	cron   *cron.Cron
	logger *slog.Logger
}

func NewReconciliationJob(
	uowFactory ports.UnitOfWorkFactory,
	recorder ports.InconsistencyRecorder,
	schedule string,
	logger *slog.Logger,
) *ReconciliationJob {
	return &ReconciliationJob{
		uowFactory: uowFactory,
		recorder:   recorder,
		rules:      services.NewConsistencyRules(),
		schedule:   schedule,
		clock:      time.Now,
		reported:   make(map[string]struct{}),
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "reconciliation_job"),
	}
}

// Start schedules the job.
func (j *ReconciliationJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if _, runErr := j.RunOnce(context.Background()); runErr != nil {
			j.logger.Error("Reconciliation run failed", "error", runErr)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Reconciliation job started", "schedule", j.schedule)
	return nil
}

// Stop stops scheduling and waits for a running scan to finish.
func (j *ReconciliationJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Reconciliation job stopped")
}

// RunOnce scans all pairs and returns the number of newly recorded
// inconsistencies.
func (j *ReconciliationJob) RunOnce(ctx context.Context) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	pairs, err := j.uowFactory.Create().DeliveryRepository().ListStatusPairs(ctx)
	if err != nil {
		metrics.JobRunsTotal.WithLabelValues("reconciliation", "error").Inc()
		return 0, err
	}

	current := make(map[string]struct{})
	recorded := 0
	for _, record := range pairs {
		if j.rules.IsConsistent(record.Pair) {
			continue
		}

		key := pairKey(record)
		if _, seen := j.reported[key]; seen {
			current[key] = struct{}{}
			continue
		}

		// A pair that failed to store is retried on the next scan.
		if err = j.record(ctx, record); err != nil {
			j.logger.ErrorContext(ctx, "Failed to store inconsistency record",
				"order_id", record.OrderID.String(), "error", err)
			continue
		}
		current[key] = struct{}{}
		recorded++
	}
	j.reported = current

	metrics.JobRunsTotal.WithLabelValues("reconciliation", "ok").Inc()
	if recorded > 0 {
		j.logger.WarnContext(ctx, "Reconciliation found inconsistent orders", "count", recorded)
	}
	return recorded, nil
}

func (j *ReconciliationJob) record(ctx context.Context, record ports.StatusPairRecord) error {
	deliveryStatus := ""
	if record.Pair.HasDelivery {
		deliveryStatus = record.Pair.Delivery.String()
	}

	metrics.InconsistenciesTotal.WithLabelValues("reconciliation").Inc()

	return j.recorder.Record(ctx, ports.Inconsistency{
		OrderID:        record.OrderID,
		DeliveryID:     record.DeliveryID,
		OrderStatus:    record.Pair.Order.String(),
		DeliveryStatus: deliveryStatus,
		Operation:      "reconciliation",
		Detail:         "status pair is not allowed by the consistency rules",
		DetectedAt:     j.clock().UTC(),
	})
}

func pairKey(record ports.StatusPairRecord) string {
	return fmt.Sprintf("%s|%s|%t|%s", record.OrderID, record.Pair.Order, record.Pair.HasDelivery, record.Pair.Delivery)
}
