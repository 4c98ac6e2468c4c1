package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrAdvanceDeliveryStatusCommandIsNotConstructed = errors.New(
		"AdvanceDeliveryStatusCommand must be created via NewAdvanceDeliveryStatusCommand constructor",
	)
)

// AdvanceDeliveryStatusCommand moves a delivery along its lifecycle as
// reported by the driver. A failure needs a reason that is passed on to the
// customer and the vendor.
type AdvanceDeliveryStatusCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	status     delivery.Status
	reason     string

	guard guard.ConstructorGuard
}

func NewAdvanceDeliveryStatusCommand(
	deliveryID kernel.UUID,
	status delivery.Status,
	reason string,
) (AdvanceDeliveryStatusCommand, error) {
	cmd := AdvanceDeliveryStatusCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setUUID(&cmd.deliveryID, deliveryID),
		cmd.setStatus(status, reason),
	); err != nil {
		return AdvanceDeliveryStatusCommand{}, err
	}

	return cmd, nil
}

func (c AdvanceDeliveryStatusCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceDeliveryStatusCommandIsNotConstructed)
}

func (c AdvanceDeliveryStatusCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

func (c AdvanceDeliveryStatusCommand) Status() delivery.Status {
	return c.status
}

func (c AdvanceDeliveryStatusCommand) Reason() string {
	return c.reason
}

func (c *AdvanceDeliveryStatusCommand) setStatus(status delivery.Status, reason string) error {
	if err := status.Validate(); err != nil {
		return err
	}

	reason = strings.TrimSpace(reason)
	if status == delivery.Failed && reason == "" {
		return errs.NewValueIsRequiredError("failureReason")
	}

	c.status = status
	c.reason = reason
	return nil
}
