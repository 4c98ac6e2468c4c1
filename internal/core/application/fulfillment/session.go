package fulfillment

import (
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// Session is one orchestrator call in progress: its unit of work, the
// entities it touched and everything that must only happen after commit.
type Session struct {
	uow       ports.UnitOfWork
	operation string

	order          *order.Order
	delivery       *delivery.Delivery
	orderBefore    string
	deliveryBefore string

	notifications   []ports.Notification
	transitions     []appliedTransition
	inconsistencies []flaggedInconsistency
}

type flaggedInconsistency struct {
	source string
	record ports.Inconsistency
}

type appliedTransition struct {
	entity string
	status string
}

func newSession(uow ports.UnitOfWork, operation string) *Session {
	return &Session{uow: uow, operation: operation}
}

// track remembers the entities loaded by the operation and their initial
// statuses, used when an inconsistency has to be recorded.
func (s *Session) track(o *order.Order, d *delivery.Delivery) {
	if o != nil && s.order == nil {
		s.order = o
		s.orderBefore = o.Status().String()
	}
	if d != nil && s.delivery == nil {
		s.delivery = d
		s.deliveryBefore = d.Status().String()
	}
}

func (s *Session) notify(notifications ...ports.Notification) {
	s.notifications = append(s.notifications, notifications...)
}

func (s *Session) transitioned(entity, status string) {
	s.transitions = append(s.transitions, appliedTransition{entity: entity, status: status})
}

// flag queues an inconsistency to be recorded once the unit of work is closed,
// so the record never depends on the transaction's outcome.
func (s *Session) flag(source string, record ports.Inconsistency) {
	s.inconsistencies = append(s.inconsistencies, flaggedInconsistency{source: source, record: record})
}
