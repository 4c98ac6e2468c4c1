package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
)

// CancelDeliveryCommandHandler cancels deliveries through the fulfillment
// orchestrator. A delivered or failed delivery yields errs.ErrAlreadyTerminal.
type CancelDeliveryCommandHandler struct {
	fulfillment Fulfillment
}

func NewCancelDeliveryCommandHandler(fulfillment Fulfillment) CancelDeliveryCommandHandler {
	return CancelDeliveryCommandHandler{fulfillment: fulfillment}
}

func (h CancelDeliveryCommandHandler) Handle(ctx context.Context, cmd CancelDeliveryCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.fulfillment.Cancel(ctx, cmd.DeliveryID(), cmd.Reason())
}
