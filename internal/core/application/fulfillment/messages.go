package fulfillment

import (
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

func shortID(o *order.Order) string {
	return o.ID().String()[:8]
}

func customerOrderMessage(o *order.Order) string {
	id := shortID(o)
	switch o.Status() { //nolint:exhaustive // unknown statuses fall back to a generic message
	case order.Confirmed:
		return fmt.Sprintf("Your order %s was confirmed by the vendor", id)
	case order.Preparing:
		return fmt.Sprintf("Your order %s is being prepared", id)
	case order.Ready:
		return fmt.Sprintf("Your order %s is ready and waiting for a driver", id)
	case order.OutForDelivery:
		return fmt.Sprintf("Your order %s is out for delivery", id)
	case order.Delivered:
		return fmt.Sprintf("Your order %s was delivered. Enjoy!", id)
	case order.Cancelled:
		return fmt.Sprintf("Your order %s was cancelled and your payment will be refunded", id)
	default:
		return fmt.Sprintf("Your order %s is now %s", id, o.Status())
	}
}

func vendorOrderMessage(o *order.Order) string {
	return fmt.Sprintf("Order %s is now %s", shortID(o), o.Status())
}

func etaText(d *delivery.Delivery) string {
	return d.EstimatedTime().Format(time.Kitchen)
}

func toCustomer(o *order.Order, category ports.Category, message string, now time.Time) ports.Notification {
	return ports.Notification{RecipientID: o.CustomerID(), Category: category, Message: message, SentAt: now}
}

func toVendor(o *order.Order, category ports.Category, message string, now time.Time) ports.Notification {
	return ports.Notification{RecipientID: o.VendorID(), Category: category, Message: message, SentAt: now}
}
