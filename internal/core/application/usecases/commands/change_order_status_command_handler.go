package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
)

// ChangeOrderStatusCommandHandler applies order status requests. When the
// order has a delivery, the delivery follows in the same transaction.
type ChangeOrderStatusCommandHandler struct {
	fulfillment Fulfillment
}

func NewChangeOrderStatusCommandHandler(fulfillment Fulfillment) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{fulfillment: fulfillment}
}

func (h ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.fulfillment.ChangeOrderStatus(ctx, cmd.OrderID(), cmd.Status(), cmd.Reason())
}
