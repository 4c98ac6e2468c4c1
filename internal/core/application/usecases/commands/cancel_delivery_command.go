package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCancelDeliveryCommandIsNotConstructed = errors.New(
		"CancelDeliveryCommand must be created via NewCancelDeliveryCommand constructor",
	)
)

// CancelDeliveryCommand stops an active delivery. The order is cancelled and
// refunded with it.
type CancelDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	reason     string

	guard guard.ConstructorGuard
}

func NewCancelDeliveryCommand(deliveryID kernel.UUID, reason string) (CancelDeliveryCommand, error) {
	cmd := CancelDeliveryCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setUUID(&cmd.deliveryID, deliveryID),
		cmd.setReason(reason),
	); err != nil {
		return CancelDeliveryCommand{}, err
	}

	return cmd, nil
}

func (c CancelDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCancelDeliveryCommandIsNotConstructed)
}

func (c CancelDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

func (c CancelDeliveryCommand) Reason() string {
	return c.reason
}

func (c *CancelDeliveryCommand) setReason(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	c.reason = reason
	return nil
}
