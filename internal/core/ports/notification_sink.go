package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// Category groups notifications for the recipient's inbox.
type Category string

const (
	CategoryOrder    Category = "order"
	CategoryDelivery Category = "delivery"
)

// Notification is a message for a customer or vendor.
type Notification struct {
	RecipientID kernel.UUID
	Category    Category
	Message     string
	SentAt      time.Time
}

// NotificationSink accepts notifications for asynchronous delivery. Enqueue
// must not block on the actual delivery.
type NotificationSink interface {
	Enqueue(ctx context.Context, notification Notification) error
}

// NotificationStore persists notifications drained from a sink.
type NotificationStore interface {
	Save(ctx context.Context, notification Notification) error
}
