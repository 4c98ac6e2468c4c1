package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
)

// CreateDeliveryCommandHandler dispatches orders through the fulfillment
// orchestrator.
//
// Example:
//
//	handler := NewCreateDeliveryCommandHandler(orchestrator)
//	d, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrOrderNotReady):
//	    // the vendor has not confirmed the order yet
//	case errors.Is(err, errs.ErrNoCapacity):
//	    // no driver nearby, retry later
//	}
type CreateDeliveryCommandHandler struct {
	fulfillment Fulfillment
}

func NewCreateDeliveryCommandHandler(fulfillment Fulfillment) CreateDeliveryCommandHandler {
	return CreateDeliveryCommandHandler{fulfillment: fulfillment}
}

func (h CreateDeliveryCommandHandler) Handle(ctx context.Context, cmd CreateDeliveryCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.fulfillment.CreateDelivery(ctx, cmd.OrderID(), cmd.DriverID())
}
