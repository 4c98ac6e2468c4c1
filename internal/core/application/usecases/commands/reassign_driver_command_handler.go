package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
)

// ReassignDriverCommandHandler swaps the driver of a delivery through the
// fulfillment orchestrator.
type ReassignDriverCommandHandler struct {
	fulfillment Fulfillment
}

func NewReassignDriverCommandHandler(fulfillment Fulfillment) ReassignDriverCommandHandler {
	return ReassignDriverCommandHandler{fulfillment: fulfillment}
}

func (h ReassignDriverCommandHandler) Handle(ctx context.Context, cmd ReassignDriverCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.fulfillment.Reassign(ctx, cmd.DeliveryID(), cmd.DriverID())
}
