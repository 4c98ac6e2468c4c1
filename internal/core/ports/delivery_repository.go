package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
)

// StatusPairRecord is one order with the status of its delivery, if any.
type StatusPairRecord struct {
	OrderID    kernel.UUID
	DeliveryID *kernel.UUID
	Pair       services.StatusPair
}

// DeliveryRepository defines the persistence contract for delivery aggregates.
type DeliveryRepository interface {
	// Add persists a new delivery. A second delivery for the same order yields
	// *errs.ConflictError.
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Get retrieves a delivery by id. Unknown ids yield *errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// FindByOrder retrieves the delivery of an order, or *errs.ObjectNotFoundError
	// when the order has none.
	FindByOrder(ctx context.Context, orderID kernel.UUID) (*delivery.Delivery, error)

	// FindActiveByDriver returns the non-terminal deliveries held by a driver.
	FindActiveByDriver(ctx context.Context, driverID kernel.UUID) ([]*delivery.Delivery, error)

	// ConditionalUpdate follows the same versioning contract as
	// OrderRepository.ConditionalUpdate.
	ConditionalUpdate(ctx context.Context, aggregate *delivery.Delivery) error

	// ListStatusPairs returns every order that left the pending status together
	// with the status of its delivery.
	ListStatusPairs(ctx context.Context) ([]StatusPairRecord, error)
}
