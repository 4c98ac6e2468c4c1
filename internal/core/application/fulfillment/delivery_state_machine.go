package fulfillment

import (
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// driverEffect is what a delivery status change does to the driver.
type driverEffect int

const (
	keepDriver driverEffect = iota
	releaseDriver
	completeDriver
)

// DeliveryStateMachine validates delivery transitions and describes their
// effects. The transition table itself lives on delivery.Status.
//
// Entry effects:
//   - in_transit: customer notified
//   - delivered: driver released with completion stats, customer notified
//   - failed: driver released, customer and vendor notified with the reason
type DeliveryStateMachine struct{}

func NewDeliveryStateMachine() DeliveryStateMachine {
	return DeliveryStateMachine{}
}

// Transition applies a requested status change to d in memory.
func (DeliveryStateMachine) Transition(d *delivery.Delivery, next delivery.Status, reason string, now time.Time) error {
	return d.TransitionTo(next, reason, now)
}

// Cancel forces d to failed as a cancellation.
func (DeliveryStateMachine) Cancel(d *delivery.Delivery, reason string, now time.Time) error {
	return d.Cancel(reason, now)
}

func (DeliveryStateMachine) effectOf(status delivery.Status) driverEffect {
	switch status { //nolint:exhaustive // non-terminal statuses keep the driver
	case delivery.Delivered:
		return completeDriver
	case delivery.Failed:
		return releaseDriver
	default:
		return keepDriver
	}
}

// Notifications returns what the customer and vendor hear about the status d
// just entered.
func (DeliveryStateMachine) Notifications(o *order.Order, d *delivery.Delivery, now time.Time) []ports.Notification {
	id := shortID(o)

	switch d.Status() { //nolint:exhaustive // picked_up is announced by creation and reassignment
	case delivery.InTransit:
		return []ports.Notification{
			toCustomer(o, ports.CategoryDelivery, fmt.Sprintf("Your order %s is on the way. Estimated arrival %s", id, etaText(d)), now),
		}
	case delivery.Delivered:
		return []ports.Notification{
			toCustomer(o, ports.CategoryDelivery, fmt.Sprintf("Your order %s was delivered", id), now),
		}
	case delivery.Failed:
		verb := "failed"
		if d.Cancelled() {
			verb = "was cancelled"
		}
		return []ports.Notification{
			toCustomer(o, ports.CategoryDelivery, fmt.Sprintf("Delivery of your order %s %s: %s", id, verb, d.FailureReason()), now),
			toVendor(o, ports.CategoryDelivery, fmt.Sprintf("Delivery of order %s %s: %s", id, verb, d.FailureReason()), now),
		}
	default:
		return nil
	}
}

// CreationNotifications announces a new delivery to customer and vendor.
func (DeliveryStateMachine) CreationNotifications(o *order.Order, d *delivery.Delivery, now time.Time) []ports.Notification {
	id := shortID(o)
	return []ports.Notification{
		toCustomer(o, ports.CategoryDelivery, fmt.Sprintf("A driver picked up your order %s. Estimated arrival %s", id, etaText(d)), now),
		toVendor(o, ports.CategoryDelivery, fmt.Sprintf("Order %s was picked up by a driver", id), now),
	}
}

// ReassignmentNotifications tells the customer a new driver took over.
func (DeliveryStateMachine) ReassignmentNotifications(o *order.Order, d *delivery.Delivery, now time.Time) []ports.Notification {
	return []ports.Notification{
		toCustomer(o, ports.CategoryDelivery, fmt.Sprintf("A new driver is bringing your order %s. Estimated arrival %s", shortID(o), etaText(d)), now),
	}
}
