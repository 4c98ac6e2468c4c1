package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
)

// AdvanceDeliveryStatusCommandHandler applies driver status reports. The
// paired order follows the delivery and the driver is released once the
// delivery is delivered or failed.
type AdvanceDeliveryStatusCommandHandler struct {
	fulfillment Fulfillment
}

func NewAdvanceDeliveryStatusCommandHandler(fulfillment Fulfillment) AdvanceDeliveryStatusCommandHandler {
	return AdvanceDeliveryStatusCommandHandler{fulfillment: fulfillment}
}

func (h AdvanceDeliveryStatusCommandHandler) Handle(
	ctx context.Context,
	cmd AdvanceDeliveryStatusCommand,
) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.fulfillment.AdvanceStatus(ctx, cmd.DeliveryID(), cmd.Status(), cmd.Reason())
}
