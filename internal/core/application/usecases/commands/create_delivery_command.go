package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCreateDeliveryCommandIsNotConstructed = errors.New(
		"CreateDeliveryCommand must be created via NewCreateDeliveryCommand constructor",
	)
)

// CreateDeliveryCommand dispatches an order. Without a driver the nearest
// suitable available driver is reserved.
//
// Example:
//
//	cmd, err := NewCreateDeliveryCommand(orderID, nil)
//	if err != nil {
//	    return err
//	}
//	d, err := handler.Handle(ctx, cmd)
type CreateDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	driverID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewCreateDeliveryCommand(orderID kernel.UUID, driverID *kernel.UUID) (CreateDeliveryCommand, error) {
	cmd := CreateDeliveryCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setUUID(&cmd.orderID, orderID),
		cmd.setDriverID(driverID),
	); err != nil {
		return CreateDeliveryCommand{}, err
	}

	return cmd, nil
}

func (c CreateDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCreateDeliveryCommandIsNotConstructed)
}

func (c CreateDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

// DriverID returns the explicitly requested driver, or nil.
func (c CreateDeliveryCommand) DriverID() *kernel.UUID {
	return c.driverID
}

func (c *CreateDeliveryCommand) setDriverID(driverID *kernel.UUID) error {
	explicit, err := optionalUUID(driverID)
	if err != nil {
		return err
	}
	c.driverID = explicit
	return nil
}

func optionalUUID(id *kernel.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	if err := id.Validate(); err != nil {
		return nil, err
	}
	value := *id
	return &value, nil
}
