// Package memory keeps orders, deliveries and drivers in process memory. It
// backs DB_DRIVER=memory and the orchestrator tests.
//
// Aggregates are copied on every read and write, so callers never share state
// with the store. Writes are applied immediately and undone from a journal on
// rollback; a concurrent writer can therefore observe uncommitted changes, and
// an undo that would overwrite such a writer fails instead.
package memory

import (
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// Store is the shared state behind every unit of work created by a
// UnitOfWorkFactory.
type Store struct {
	mu sync.Mutex

	orders          map[kernel.UUID]*order.Order
	deliveries      map[kernel.UUID]*delivery.Delivery
	deliveryByOrder map[kernel.UUID]kernel.UUID
	drivers         map[kernel.UUID]*driver.Driver

	// driverRevisions counts writes per driver; drivers carry no version of
	// their own.
	driverRevisions map[kernel.UUID]int64
}

func NewStore() *Store {
	return &Store{
		orders:          make(map[kernel.UUID]*order.Order),
		deliveries:      make(map[kernel.UUID]*delivery.Delivery),
		deliveryByOrder: make(map[kernel.UUID]kernel.UUID),
		drivers:         make(map[kernel.UUID]*driver.Driver),
		driverRevisions: make(map[kernel.UUID]int64),
	}
}

func cloneOrder(o *order.Order, version int64) (*order.Order, error) {
	return order.RestoreOrder(
		o.ID(), o.CustomerID(), o.VendorID(),
		o.Items(), o.DeliveryAddress(), o.PickupLocation(), o.Totals(),
		o.Status(), o.Payment(),
		order.Timeline{
			CreatedAt:             o.CreatedAt(),
			EstimatedDeliveryTime: copyTime(o.EstimatedDeliveryTime()),
			ActualDeliveryTime:    copyTime(o.ActualDeliveryTime()),
		},
		version,
	)
}

func cloneDelivery(d *delivery.Delivery, version int64) (*delivery.Delivery, error) {
	return delivery.RestoreDelivery(
		d.ID(), d.OrderID(), d.DriverID(),
		delivery.Route{Pickup: d.PickupLocation(), Dropoff: d.DropoffLocation(), Current: d.CurrentLocation()},
		d.Status(),
		delivery.Outcome{FailureReason: d.FailureReason(), Cancelled: d.Cancelled(), RedispatchCount: d.RedispatchCount()},
		delivery.Timeline{CreatedAt: d.CreatedAt(), EstimatedTime: d.EstimatedTime(), DeliveredAt: copyTime(d.DeliveredAt())},
		version,
	)
}

func cloneDriver(d *driver.Driver) (*driver.Driver, error) {
	return driver.RestoreDriver(
		d.ID(), d.UserID(),
		driver.Position{Location: d.Location(), UpdatedAt: d.LocationUpdatedAt()},
		driver.Availability{IsAvailable: d.IsAvailable(), IsVerified: d.IsVerified()},
		driver.Stats{
			Rating:                 d.Rating(),
			ReviewCount:            d.ReviewCount(),
			TotalDeliveries:        d.TotalDeliveries(),
			CompletedDeliveries:    d.CompletedDeliveries(),
			AverageDeliveryMinutes: d.AverageDeliveryMinutes(),
		},
		d.DeliveryAreas(), d.AcceptedPaymentMethods(),
	)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
