package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"
)

// CreateOrderCommandHandler stores a checkout as a pending order.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	// The order waits for the vendor to confirm it
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      func() time.Time
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
// Requires an OrderUoWFactory for transactional persistence.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      time.Now,
	}
}

// Handle builds the order aggregate, computing line and order totals, and
// persists it in pending status.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	aggregate, err := h.buildOrder(cmd)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (h CreateOrderCommandHandler) buildOrder(cmd CreateOrderCommand) (*order.Order, error) {
	items := make([]order.Item, 0, len(cmd.Lines()))
	for _, line := range cmd.Lines() {
		item, err := order.NewItem(line.ProductID, line.Quantity, line.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	totals, err := order.NewTotals(items, cmd.Fee(), cmd.Tax())
	if err != nil {
		return nil, err
	}

	address := cmd.Address()
	destination, err := order.NewAddress(address.Street, address.Neighborhood, address.City, address.Location)
	if err != nil {
		return nil, err
	}

	return order.NewOrder(
		cmd.OrderID(), cmd.CustomerID(), cmd.VendorID(),
		items, destination, cmd.Pickup(), totals,
		h.clock(),
	)
}
