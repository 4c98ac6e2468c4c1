// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// Commands are validated on construction; handlers either persist a single
// aggregate through a unit of work or delegate to the fulfillment
// orchestrator when orders, deliveries and drivers change together.
package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// DeliveryRepoFactory provides access to delivery repository within a transaction.
	DeliveryRepoFactory interface {
		DeliveryRepository() ports.DeliveryRepository
	}

	// DriverRepoFactory provides access to driver repository within a transaction.
	DriverRepoFactory interface {
		DriverRepository() ports.DriverRepository
	}

	// OrderUoW manages transactions for order-only operations such as checkout.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// DriverUoW manages transactions for driver operations. Location updates
	// also move the driver's active delivery, hence the delivery repository.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   driverRepo := uow.DriverRepository()
	//   deliveryRepo := uow.DeliveryRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	DriverUoW interface {
		TxManager
		DriverRepoFactory
		DeliveryRepoFactory
	}

	// DriverUoWFactory creates new driver unit of work instances.
	DriverUoWFactory interface {
		Create() DriverUoW
	}
)

// Fulfillment is the part of the fulfillment orchestrator used by the
// delivery and order status commands. Each call is its own transaction.
type Fulfillment interface {
	CreateDelivery(ctx context.Context, orderID kernel.UUID, driverID *kernel.UUID) (*delivery.Delivery, error)
	AdvanceStatus(ctx context.Context, deliveryID kernel.UUID, status delivery.Status, reason string) (*delivery.Delivery, error)
	Cancel(ctx context.Context, deliveryID kernel.UUID, reason string) (*delivery.Delivery, error)
	Reassign(ctx context.Context, deliveryID kernel.UUID, driverID *kernel.UUID) (*delivery.Delivery, error)
	ChangeOrderStatus(ctx context.Context, orderID kernel.UUID, status order.Status, reason string) (*order.Order, error)
}
