package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrReassignDriverCommandIsNotConstructed = errors.New(
		"ReassignDriverCommand must be created via NewReassignDriverCommand constructor",
	)
)

// ReassignDriverCommand hands a delivery over to another driver. A failed
// delivery can be dispatched again this way once.
type ReassignDriverCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	driverID   *kernel.UUID

	guard guard.ConstructorGuard
}

func NewReassignDriverCommand(deliveryID kernel.UUID, driverID *kernel.UUID) (ReassignDriverCommand, error) {
	cmd := ReassignDriverCommand{guard: guard.NewConstructorGuard()}

	explicit, driverErr := optionalUUID(driverID)
	if err := errors.Join(
		setUUID(&cmd.deliveryID, deliveryID),
		driverErr,
	); err != nil {
		return ReassignDriverCommand{}, err
	}
	cmd.driverID = explicit

	return cmd, nil
}

func (c ReassignDriverCommand) Validate() error {
	return c.guard.Validate(ErrReassignDriverCommandIsNotConstructed)
}

func (c ReassignDriverCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// DriverID returns the explicitly requested driver, or nil.
func (c ReassignDriverCommand) DriverID() *kernel.UUID {
	return c.driverID
}
