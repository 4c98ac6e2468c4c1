package services

import (
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/order"
)

// StatusPair is an observed order/delivery status combination. HasDelivery is
// false when the order has no delivery yet.
type StatusPair struct {
	Order       order.Status
	Delivery    delivery.Status
	HasDelivery bool
}

// ConsistencyRules holds the pairing table between order and delivery
// statuses.
//
//	Order status                       Delivery status
//	pending / confirmed / preparing    (none)
//	ready                              picked_up, or none
//	out_for_delivery                   picked_up, in_transit
//	delivered                          delivered
//	cancelled                          failed, or none
//
// out_for_delivery pairs with picked_up because a delivery is created picked
// up while its order is already out for delivery.
type ConsistencyRules struct{}

func NewConsistencyRules() ConsistencyRules {
	return ConsistencyRules{}
}

func pairingTable() map[order.Status][]delivery.Status {
	//nolint:exhaustive // statuses without a delivery map to nothing
	return map[order.Status][]delivery.Status{
		order.Ready:          {delivery.PickedUp},
		order.OutForDelivery: {delivery.PickedUp, delivery.InTransit},
		order.Delivered:      {delivery.Delivered},
		order.Cancelled:      {delivery.Failed},
	}
}

// IsConsistent reports whether the pair appears in the pairing table.
func (ConsistencyRules) IsConsistent(pair StatusPair) bool {
	if !pair.HasDelivery {
		switch pair.Order { //nolint:exhaustive // remaining statuses require a delivery
		case order.Pending, order.Confirmed, order.Preparing, order.Ready, order.Cancelled:
			return true
		default:
			return false
		}
	}

	for _, allowed := range pairingTable()[pair.Order] {
		if allowed == pair.Delivery {
			return true
		}
	}
	return false
}

// DeliveryStatusFor derives the delivery status implied by an order status.
// It reports false for statuses that do not involve a delivery.
func (ConsistencyRules) DeliveryStatusFor(s order.Status) (delivery.Status, bool) {
	switch s { //nolint:exhaustive // statuses before ready have no delivery
	case order.Ready:
		return delivery.PickedUp, true
	case order.OutForDelivery:
		return delivery.InTransit, true
	case order.Delivered:
		return delivery.Delivered, true
	case order.Cancelled:
		return delivery.Failed, true
	default:
		return delivery.Unknown, false
	}
}

// OrderStatusFor derives the order status implied by a delivery status.
func (ConsistencyRules) OrderStatusFor(s delivery.Status) (order.Status, bool) {
	switch s {
	case delivery.PickedUp, delivery.InTransit:
		return order.OutForDelivery, true
	case delivery.Delivered:
		return order.Delivered, true
	case delivery.Failed:
		return order.Cancelled, true
	default:
		return order.Unknown, false
	}
}
