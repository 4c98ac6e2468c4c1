package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
)

// DriverRepository defines the persistence contract for driver aggregates.
//
// Availability is never written through a read-modify-write cycle: Claim,
// Release and RecordCompletion are single conditional statements keyed by the
// driver id.
type DriverRepository interface {
	Add(ctx context.Context, aggregate *driver.Driver) error

	// Get retrieves a driver by id. Unknown ids yield *errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// FindAvailableWithin returns available, verified drivers whose last
	// position lies inside box.
	FindAvailableWithin(ctx context.Context, box kernel.BoundingBox) ([]*driver.Driver, error)

	// Claim atomically flips isAvailable from true to false and increments
	// totalDeliveries. A driver that is unavailable or unverified yields
	// *errs.NoCapacityError naming it; an unknown driver yields
	// *errs.ObjectNotFoundError.
	Claim(ctx context.Context, id kernel.UUID) error

	// Release makes the driver available. Releasing an available driver is a
	// no-op.
	Release(ctx context.Context, id kernel.UUID) error

	// RecordCompletion releases the driver, increments completedDeliveries and
	// folds minutes into averageDeliveryMinutes in one statement.
	RecordCompletion(ctx context.Context, id kernel.UUID, minutes float64) error

	// UpdateLocation stores the driver's last reported position.
	UpdateLocation(ctx context.Context, aggregate *driver.Driver) error
}
