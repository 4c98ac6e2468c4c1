// Package ports defines the contracts between the fulfillment core and its
// adapters: repositories, the unit of work, the notification sink and the
// inconsistency recorder.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order with its items.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id. Unknown ids yield *errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ConditionalUpdate writes the mutable state of the order only if the
	// stored version still equals aggregate.Version(). On success the stored
	// version is incremented and aggregate.MarkPersisted is called; a version
	// mismatch yields *errs.ConflictError and nothing is written.
	ConditionalUpdate(ctx context.Context, aggregate *order.Order) error

	// FindReadyWithoutDelivery returns up to limit orders in ready status that
	// have no delivery, oldest first.
	FindReadyWithoutDelivery(ctx context.Context, limit int) ([]*order.Order, error)
}
