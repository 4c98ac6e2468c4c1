package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"
)

// Config tunes dispatch and estimates. Zero values fall back to defaults;
// a negative CandidateLimit removes the limit.
type Config struct {
	MaxDistanceMeters float64
	CandidateLimit    int
	CourierSpeedKmh   float64
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// Orchestrator exposes the fulfillment operations. Each call runs in its own
// unit of work; notifications collected during the call are enqueued only
// after a successful commit, and their failures are logged and counted but
// never returned.
type Orchestrator struct {
	uowFactory ports.UnitOfWorkFactory
	sink       ports.NotificationSink

	dispatch   *DispatchEngine
	enforcer   *ConsistencyEnforcer
	deliveries DeliveryStateMachine
	orders     OrderStateMachine
	estimator  services.TravelEstimator

	clock  func() time.Time
	logger *slog.Logger
}

func NewOrchestrator(
	uowFactory ports.UnitOfWorkFactory,
	sink ports.NotificationSink,
	recorder ports.InconsistencyRecorder,
	config Config,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		uowFactory: uowFactory,
		sink:       sink,
		deliveries: NewDeliveryStateMachine(),
		orders:     NewOrderStateMachine(),
		estimator:  services.NewTravelEstimator(config.CourierSpeedKmh),
		clock:      time.Now,
		logger:     logger.With("component", "fulfillment_orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.dispatch = NewDispatchEngine(NewGeoIndex(), DispatchConfig{
		MaxDistanceMeters: config.MaxDistanceMeters,
		CandidateLimit:    config.CandidateLimit,
	}, logger)
	o.enforcer = NewConsistencyEnforcer(recorder, o.now, logger)

	return o
}

func (o *Orchestrator) now() time.Time {
	return o.clock().UTC()
}

// CreateDelivery dispatches a ready or confirmed order. driverID selects an
// explicit driver; nil lets the DispatchEngine choose around the vendor.
//
// Errors:
//   - *errs.ObjectNotFoundError: unknown order or explicit driver
//   - *errs.IllegalStateError (errs.ErrOrderNotReady): order not dispatchable
//   - *errs.NoCapacityError: no driver could be reserved
//   - *errs.ConflictError: a concurrent request changed the order first
func (o *Orchestrator) CreateDelivery(ctx context.Context, orderID kernel.UUID, driverID *kernel.UUID) (*delivery.Delivery, error) {
	var created *delivery.Delivery

	err := o.run(ctx, "create_delivery", func(s *Session) error {
		ord, err := s.uow.OrderRepository().Get(ctx, orderID)
		if err != nil {
			return err
		}
		s.track(ord, nil)

		if !ord.Dispatchable() {
			return errs.NewOrderNotReadyError(ord.ID(), ord.Status().String())
		}
		if _, err = s.uow.DeliveryRepository().FindByOrder(ctx, ord.ID()); err == nil {
			return errs.NewIllegalStateError("order", ord.ID(), ord.Status().String(), "create a second delivery")
		} else if !errors.Is(err, errs.ErrObjectNotFound) {
			return err
		}

		drivers := s.uow.DriverRepository()
		drv, err := o.resolveDriver(ctx, drivers, ord.PickupLocation(), ord.DeliveryAddress().AreaTag(), driverID)
		if err != nil {
			return err
		}

		now := o.now()
		eta, err := o.estimator.Estimate(drv.Location(), ord.PickupLocation(), ord.DeliveryAddress().Location())
		if err != nil {
			return err
		}

		created, err = delivery.NewDelivery(kernel.NewUUID(), ord.ID(), drv.ID(), delivery.Route{
			Pickup:  ord.PickupLocation(),
			Dropoff: ord.DeliveryAddress().Location(),
			Current: drv.Location(),
		}, now.Add(eta), now)
		if err != nil {
			return err
		}

		if err = o.enforcer.ApplyDeliveryCreation(ctx, s, ord, created, now); err != nil {
			return err
		}

		s.notify(o.deliveries.CreationNotifications(ord, created, now)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// AdvanceStatus moves a delivery to status and derives its order. reason is
// required when status is failed.
//
// Errors:
//   - *errs.ValueIsRequiredError: failed without reason
//   - *errs.InvalidTransitionError: rejected by the delivery machine,
//     including a second delivered
//   - *errs.ObjectNotFoundError: unknown delivery
func (o *Orchestrator) AdvanceStatus(
	ctx context.Context,
	deliveryID kernel.UUID,
	status delivery.Status,
	reason string,
) (*delivery.Delivery, error) {
	var result *delivery.Delivery

	err := o.run(ctx, "advance_status", func(s *Session) error {
		d, ord, err := o.loadDelivery(ctx, s, deliveryID)
		if err != nil {
			return err
		}

		now := o.now()
		if err = o.enforcer.ApplyDeliveryTransition(ctx, s, ord, d, status, reason, now); err != nil {
			return err
		}

		s.notify(o.deliveries.Notifications(ord, d, now)...)
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Cancel fails an active delivery as a cancellation, releases its driver and
// cancels and refunds the order. A terminal delivery yields
// errs.ErrAlreadyTerminal without any change.
func (o *Orchestrator) Cancel(ctx context.Context, deliveryID kernel.UUID, reason string) (*delivery.Delivery, error) {
	var result *delivery.Delivery

	err := o.run(ctx, "cancel", func(s *Session) error {
		d, ord, err := o.loadDelivery(ctx, s, deliveryID)
		if err != nil {
			return err
		}

		now := o.now()
		if err = o.enforcer.ApplyDeliveryCancellation(ctx, s, ord, d, reason, now); err != nil {
			return err
		}

		s.notify(o.deliveries.Notifications(ord, d, now)...)
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Reassign hands a delivery to another driver and resets it to picked up. A
// failed delivery can be dispatched again once, unless it was cancelled; its
// order is then reopened.
//
// Errors:
//   - *errs.NoCapacityError: no other driver could be reserved, or the
//     explicit driver is busy
//   - *errs.IllegalStateError: delivered, cancelled or already redispatched
//   - *errs.ObjectNotFoundError: unknown delivery or explicit driver
func (o *Orchestrator) Reassign(ctx context.Context, deliveryID kernel.UUID, driverID *kernel.UUID) (*delivery.Delivery, error) {
	var result *delivery.Delivery

	err := o.run(ctx, "reassign", func(s *Session) error {
		d, ord, err := o.loadDelivery(ctx, s, deliveryID)
		if err != nil {
			return err
		}
		if err = d.CheckReassign(); err != nil {
			return err
		}

		drv, err := o.dispatch.Reassign(ctx, s.uow.DriverRepository(), d, ord.DeliveryAddress().AreaTag(), driverID)
		if err != nil {
			return err
		}

		now := o.now()
		eta, err := o.estimator.Estimate(drv.Location(), d.PickupLocation(), d.DropoffLocation())
		if err != nil {
			return err
		}

		if err = o.enforcer.ApplyReassignment(ctx, s, ord, d, drv, now.Add(eta), now); err != nil {
			return err
		}

		s.notify(o.deliveries.ReassignmentNotifications(ord, d, now)...)
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ChangeOrderStatus applies a customer or vendor request on the order and
// derives the delivery status when a delivery exists.
func (o *Orchestrator) ChangeOrderStatus(
	ctx context.Context,
	orderID kernel.UUID,
	status order.Status,
	reason string,
) (*order.Order, error) {
	var result *order.Order

	err := o.run(ctx, "change_order_status", func(s *Session) error {
		ord, err := s.uow.OrderRepository().Get(ctx, orderID)
		if err != nil {
			return err
		}

		d, err := s.uow.DeliveryRepository().FindByOrder(ctx, orderID)
		if errors.Is(err, errs.ErrObjectNotFound) {
			d, err = nil, nil
		}
		if err != nil {
			return err
		}
		s.track(ord, d)

		now := o.now()
		if err = o.enforcer.ApplyOrderTransition(ctx, s, ord, d, status, reason, now); err != nil {
			return err
		}

		s.notify(o.orders.Notifications(ord, now)...)
		result = ord
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (o *Orchestrator) loadDelivery(ctx context.Context, s *Session, deliveryID kernel.UUID) (*delivery.Delivery, *order.Order, error) {
	d, err := s.uow.DeliveryRepository().Get(ctx, deliveryID)
	if err != nil {
		return nil, nil, err
	}
	ord, err := s.uow.OrderRepository().Get(ctx, d.OrderID())
	if err != nil {
		return nil, nil, err
	}
	s.track(ord, d)
	return d, ord, nil
}

func (o *Orchestrator) resolveDriver(
	ctx context.Context,
	drivers ports.DriverRepository,
	origin kernel.GeoPoint,
	areaTag string,
	explicit *kernel.UUID,
) (*driver.Driver, error) {
	if explicit != nil {
		return o.dispatch.ClaimDriver(ctx, drivers, *explicit)
	}
	return o.dispatch.ReserveDriver(ctx, drivers, origin, areaTag)
}

// run executes fn in a fresh unit of work and flushes the session after
// commit. When a rollback fails the touched pair is recorded as a potential
// inconsistency.
func (o *Orchestrator) run(ctx context.Context, operation string, fn func(s *Session) error) error {
	started := time.Now()
	defer func() {
		metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	}()

	uow := o.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin %s: %w", operation, err)
	}

	s := newSession(uow, operation)
	defer o.recordFlagged(ctx, s)

	if err := fn(s); err != nil {
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			o.flagRollbackFailure(s, err, rbErr)
		}
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", operation, err)
	}

	o.flush(ctx, s)
	return nil
}

func (o *Orchestrator) recordFlagged(ctx context.Context, s *Session) {
	for _, flagged := range s.inconsistencies {
		o.enforcer.Record(ctx, flagged.source, flagged.record)
	}
}

func (o *Orchestrator) flagRollbackFailure(s *Session, cause, rbErr error) {
	if s.order == nil {
		o.logger.Error("Rollback failed before any entity was loaded",
			"operation", s.operation, "error", rbErr, "cause", cause)
		return
	}

	record := ports.Inconsistency{
		OrderID:        s.order.ID(),
		OrderStatus:    s.orderBefore,
		DeliveryStatus: s.deliveryBefore,
		Operation:      s.operation,
		Detail:         fmt.Sprintf("rollback failed: %v (cause: %v)", rbErr, cause),
		DetectedAt:     o.now(),
	}
	if s.delivery != nil {
		id := s.delivery.ID()
		record.DeliveryID = &id
	}
	s.flag("rollback", record)
}

// flush enqueues the session's notifications and counts its transitions.
func (o *Orchestrator) flush(ctx context.Context, s *Session) {
	for _, t := range s.transitions {
		metrics.StatusTransitionsTotal.WithLabelValues(t.entity, t.status).Inc()
	}

	if o.sink == nil {
		return
	}
	for _, n := range s.notifications {
		if err := o.sink.Enqueue(ctx, n); err != nil {
			metrics.NotificationFailuresTotal.Inc()
			o.logger.WarnContext(ctx, "Failed to enqueue notification",
				"operation", s.operation,
				"recipient_id", n.RecipientID.String(),
				"category", string(n.Category),
				"error", err)
			continue
		}
		metrics.NotificationsEnqueuedTotal.Inc()
	}
}
