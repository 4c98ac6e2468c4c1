package jobs

import (
	"context"
	"errors"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const defaultDispatchBatch = 20

// DeliveryDispatcher creates the delivery of one order.
type DeliveryDispatcher interface {
	Handle(ctx context.Context, cmd commands.CreateDeliveryCommand) (*delivery.Delivery, error)
}

// AutoDispatchJob periodically dispatches ready orders that have no delivery.
type AutoDispatchJob struct {
	uowFactory ports.UnitOfWorkFactory
	dispatcher DeliveryDispatcher
	schedule   string
	batch      int
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewAutoDispatchJob creates the job. schedule is a six-field cron
// expression; batch bounds the orders handled per run.
func NewAutoDispatchJob(
	uowFactory ports.UnitOfWorkFactory,
	dispatcher DeliveryDispatcher,
	schedule string,
	batch int,
	logger *slog.Logger,
) *AutoDispatchJob {
	if batch <= 0 {
		batch = defaultDispatchBatch
	}
	return &AutoDispatchJob{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		schedule:   schedule,
		batch:      batch,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "auto_dispatch_job"),
	}
}

// Start schedules the job.
func (j *AutoDispatchJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if _, runErr := j.RunOnce(context.Background()); runErr != nil {
			j.logger.Error("Auto dispatch run failed", "error", runErr)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Auto dispatch job started", "schedule", j.schedule, "batch", j.batch)
	return nil
}

// Stop stops scheduling and waits for a running dispatch to finish.
func (j *AutoDispatchJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Auto dispatch job stopped")
}

// RunOnce dispatches one batch and returns how many deliveries were created.
// Orders that cannot be dispatched right now are skipped: no driver nearby,
// an order changed by a concurrent request, or one already dispatched.
func (j *AutoDispatchJob) RunOnce(ctx context.Context) (int, error) {
	orders, err := j.uowFactory.Create().OrderRepository().FindReadyWithoutDelivery(ctx, j.batch)
	if err != nil {
		metrics.JobRunsTotal.WithLabelValues("auto_dispatch", "error").Inc()
		return 0, err
	}

	dispatched := 0
	for _, o := range orders {
		cmd, cmdErr := commands.NewCreateDeliveryCommand(o.ID(), nil)
		if cmdErr != nil {
			return dispatched, cmdErr
		}

		d, dispatchErr := j.dispatcher.Handle(ctx, cmd)
		switch {
		case dispatchErr == nil:
			dispatched++
			j.logger.InfoContext(ctx, "Order dispatched",
				"order_id", o.ID().String(),
				"delivery_id", d.ID().String(),
				"driver_id", d.DriverID().String())
		case errors.Is(dispatchErr, errs.ErrNoCapacity),
			errors.Is(dispatchErr, errs.ErrIllegalState),
			errors.Is(dispatchErr, errs.ErrConflict):
			j.logger.DebugContext(ctx, "Order skipped", "order_id", o.ID().String(), "reason", dispatchErr)
		default:
			j.logger.ErrorContext(ctx, "Order dispatch failed", "order_id", o.ID().String(), "error", dispatchErr)
		}
	}

	metrics.JobRunsTotal.WithLabelValues("auto_dispatch", "ok").Inc()
	return dispatched, nil
}
