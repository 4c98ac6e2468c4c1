package fulfillment

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"
)

// ConsistencyEnforcer keeps every order/delivery pair inside the pairing
// table of services.ConsistencyRules.
//
// Each entry point follows the same steps:
//  1. the pair as loaded must already be consistent, otherwise the request is
//     rejected and an inconsistency is recorded
//  2. both state machines validate their change in memory; any rejection
//     returns before a single write
//  3. the delivery is written first, then the order, both with conditional
//     updates inside the session's unit of work
//  4. driver effects of the delivery status are applied
//
// Notifications are never produced here: only the machine that received the
// request notifies.
type ConsistencyEnforcer struct {
	rules      services.ConsistencyRules
	deliveries DeliveryStateMachine
	orders     OrderStateMachine
	recorder   ports.InconsistencyRecorder
	clock      func() time.Time
	logger     *slog.Logger
}

func NewConsistencyEnforcer(
	recorder ports.InconsistencyRecorder,
	clock func() time.Time,
	logger *slog.Logger,
) *ConsistencyEnforcer {
	return &ConsistencyEnforcer{
		rules:      services.NewConsistencyRules(),
		deliveries: NewDeliveryStateMachine(),
		orders:     NewOrderStateMachine(),
		recorder:   recorder,
		clock:      clock,
		logger:     logger.With("component", "consistency_enforcer"),
	}
}

// ApplyDeliveryTransition moves d to next and derives the order status.
func (e *ConsistencyEnforcer) ApplyDeliveryTransition(
	ctx context.Context,
	s *Session,
	o *order.Order,
	d *delivery.Delivery,
	next delivery.Status,
	reason string,
	now time.Time,
) error {
	return e.applyDeliveryChange(ctx, s, o, d, now, false, func() error {
		return e.deliveries.Transition(d, next, reason, now)
	})
}

// ApplyDeliveryCancellation forces d to failed as a cancellation and cancels
// the order.
func (e *ConsistencyEnforcer) ApplyDeliveryCancellation(
	ctx context.Context,
	s *Session,
	o *order.Order,
	d *delivery.Delivery,
	reason string,
	now time.Time,
) error {
	return e.applyDeliveryChange(ctx, s, o, d, now, false, func() error {
		return e.deliveries.Cancel(d, reason, now)
	})
}

// ApplyReassignment hands d to next and puts the order back out for delivery.
// Driver reservation and release are the DispatchEngine's job.
func (e *ConsistencyEnforcer) ApplyReassignment(
	ctx context.Context,
	s *Session,
	o *order.Order,
	d *delivery.Delivery,
	next *driver.Driver,
	estimatedTime time.Time,
	now time.Time,
) error {
	// The order is always written: its estimate moves even when its status
	// does not.
	return e.applyDeliveryChange(ctx, s, o, d, now, true, func() error {
		if err := d.Reassign(next.ID(), next.Location(), estimatedTime); err != nil {
			return err
		}
		o.ScheduleDelivery(estimatedTime)
		return nil
	})
}

// ApplyDeliveryCreation stores a new picked up delivery and moves its order
// out for delivery with the delivery's estimate.
func (e *ConsistencyEnforcer) ApplyDeliveryCreation(
	ctx context.Context,
	s *Session,
	o *order.Order,
	d *delivery.Delivery,
	now time.Time,
) error {
	if err := e.requireConsistent(s, o, nil); err != nil {
		return err
	}

	derived, _ := e.rules.OrderStatusFor(d.Status())
	changed, err := e.orders.Follow(o, derived, now)
	if err != nil {
		return err
	}
	o.ScheduleDelivery(d.EstimatedTime())

	if err = e.requirePairAllowed(o, d); err != nil {
		return err
	}

	if err = s.uow.DeliveryRepository().Add(ctx, d); err != nil {
		return err
	}
	s.transitioned("delivery", d.Status().String())

	if err = s.uow.OrderRepository().ConditionalUpdate(ctx, o); err != nil {
		return err
	}
	if changed {
		s.transitioned("order", o.Status().String())
	}

	return nil
}

// ApplyOrderTransition moves o to next and derives the delivery status when a
// delivery exists. d may be nil.
func (e *ConsistencyEnforcer) ApplyOrderTransition(
	ctx context.Context,
	s *Session,
	o *order.Order,
	d *delivery.Delivery,
	next order.Status,
	reason string,
	now time.Time,
) error {
	if err := e.requireConsistent(s, o, d); err != nil {
		return err
	}

	if err := e.orders.Transition(o, next, d != nil, now); err != nil {
		return err
	}

	deliveryChanged := false
	if d != nil {
		if derived, ok := e.rules.DeliveryStatusFor(next); ok {
			var err error
			deliveryChanged, err = d.FollowOrder(derived, reason, next == order.Cancelled, now)
			if err != nil {
				return err
			}
		}
	}

	if err := e.requirePairAllowed(o, d); err != nil {
		return err
	}

	if deliveryChanged {
		if err := s.uow.DeliveryRepository().ConditionalUpdate(ctx, d); err != nil {
			return err
		}
		s.transitioned("delivery", d.Status().String())
	}

	if err := s.uow.OrderRepository().ConditionalUpdate(ctx, o); err != nil {
		return err
	}
	s.transitioned("order", o.Status().String())

	if deliveryChanged {
		return e.applyDriverEffect(ctx, s, d, now)
	}
	return nil
}

func (e *ConsistencyEnforcer) applyDeliveryChange(
	ctx context.Context,
	s *Session,
	o *order.Order,
	d *delivery.Delivery,
	now time.Time,
	writeOrder bool,
	change func() error,
) error {
	if err := e.requireConsistent(s, o, d); err != nil {
		return err
	}

	if err := change(); err != nil {
		return err
	}

	derived, ok := e.rules.OrderStatusFor(d.Status())
	if !ok {
		return errs.NewIllegalStateError("delivery", d.ID(), d.Status().String(), "derive order status")
	}
	orderChanged, err := e.orders.Follow(o, derived, now)
	if err != nil {
		return err
	}

	if err = e.requirePairAllowed(o, d); err != nil {
		return err
	}

	if err = s.uow.DeliveryRepository().ConditionalUpdate(ctx, d); err != nil {
		return err
	}
	s.transitioned("delivery", d.Status().String())

	if orderChanged || writeOrder {
		if err = s.uow.OrderRepository().ConditionalUpdate(ctx, o); err != nil {
			return err
		}
	}
	if orderChanged {
		s.transitioned("order", o.Status().String())
	}

	return e.applyDriverEffect(ctx, s, d, now)
}

func (e *ConsistencyEnforcer) applyDriverEffect(ctx context.Context, s *Session, d *delivery.Delivery, now time.Time) error {
	drivers := s.uow.DriverRepository()

	switch e.deliveries.effectOf(d.Status()) {
	case completeDriver:
		return drivers.RecordCompletion(ctx, d.DriverID(), d.MinutesSinceCreation(now))
	case releaseDriver:
		return drivers.Release(ctx, d.DriverID())
	case keepDriver:
	}
	return nil
}

// requireConsistent rejects requests on a pair that is already outside the
// pairing table and flags it for recording.
func (e *ConsistencyEnforcer) requireConsistent(s *Session, o *order.Order, d *delivery.Delivery) error {
	if e.rules.IsConsistent(pairOf(o, d)) {
		return nil
	}

	record := ports.Inconsistency{
		OrderID:     o.ID(),
		OrderStatus: o.Status().String(),
		Operation:   s.operation,
		Detail:      "status pair outside the pairing table before the operation",
		DetectedAt:  e.clock(),
	}
	if d != nil {
		id := d.ID()
		record.DeliveryID = &id
		record.DeliveryStatus = d.Status().String()
	}
	s.flag("precondition", record)

	return errs.NewIllegalStateError("order", o.ID(), describePair(o, d), s.operation)
}

// requirePairAllowed guards the writes: the in-memory result must be a pair
// of the table.
func (e *ConsistencyEnforcer) requirePairAllowed(o *order.Order, d *delivery.Delivery) error {
	if e.rules.IsConsistent(pairOf(o, d)) {
		return nil
	}
	return errs.NewIllegalStateError("order", o.ID(), describePair(o, d), "apply paired transition")
}

// Record stores an inconsistency outside of the unit of work, logs it and
// counts it. Recorder failures are logged, never returned.
func (e *ConsistencyEnforcer) Record(ctx context.Context, source string, record ports.Inconsistency) {
	metrics.InconsistenciesTotal.WithLabelValues(source).Inc()

	attrs := []any{
		"source", source,
		"operation", record.Operation,
		"order_id", record.OrderID.String(),
		"order_status", record.OrderStatus,
		"delivery_status", record.DeliveryStatus,
		"detail", record.Detail,
	}
	if record.DeliveryID != nil {
		attrs = append(attrs, "delivery_id", record.DeliveryID.String())
	}
	e.logger.ErrorContext(ctx, "Order/delivery inconsistency detected", attrs...)

	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(context.WithoutCancel(ctx), record); err != nil {
		e.logger.ErrorContext(ctx, "Failed to store inconsistency record",
			"error", err, "order_id", record.OrderID.String())
	}
}

func pairOf(o *order.Order, d *delivery.Delivery) services.StatusPair {
	pair := services.StatusPair{Order: o.Status()}
	if d != nil {
		pair.Delivery = d.Status()
		pair.HasDelivery = true
	}
	return pair
}

func describePair(o *order.Order, d *delivery.Delivery) string {
	if d == nil {
		return o.Status().String() + "/none"
	}
	return o.Status().String() + "/" + d.Status().String()
}
