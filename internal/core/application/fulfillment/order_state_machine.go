package fulfillment

import (
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// OrderStateMachine validates order transitions requested by customers and
// vendors and describes their notifications. The customer hears about every
// transition; the vendor about confirmed, preparing, ready and delivered.
type OrderStateMachine struct{}

func NewOrderStateMachine() OrderStateMachine {
	return OrderStateMachine{}
}

// Transition applies a requested status change to o in memory. Moving an
// order out for delivery or to delivered needs an existing delivery.
func (OrderStateMachine) Transition(o *order.Order, next order.Status, hasDelivery bool, now time.Time) error {
	if (next == order.OutForDelivery || next == order.Delivered) && !hasDelivery {
		return errs.NewIllegalStateError("order", o.ID(), o.Status().String(), "move to "+next.String()+" without a delivery")
	}
	return o.TransitionTo(next, now)
}

// Follow applies a status derived from the paired delivery.
func (OrderStateMachine) Follow(o *order.Order, next order.Status, now time.Time) (bool, error) {
	return o.FollowDelivery(next, now)
}

func notifiesVendor(s order.Status) bool {
	switch s { //nolint:exhaustive // only these statuses concern the vendor
	case order.Confirmed, order.Preparing, order.Ready, order.Delivered:
		return true
	default:
		return false
	}
}

// Notifications returns what the customer and vendor hear about the status o
// just entered.
func (OrderStateMachine) Notifications(o *order.Order, now time.Time) []ports.Notification {
	notifications := []ports.Notification{
		toCustomer(o, ports.CategoryOrder, customerOrderMessage(o), now),
	}
	if notifiesVendor(o.Status()) {
		notifications = append(notifications, toVendor(o, ports.CategoryOrder, vendorOrderMessage(o), now))
	}
	return notifications
}
