package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrUpdateDriverLocationCommandIsNotConstructed = errors.New(
		"UpdateDriverLocationCommand must be created via NewUpdateDriverLocationCommand constructor",
	)
)

// UpdateDriverLocationCommand records a position reported by a driver's
// device.
type UpdateDriverLocationCommand struct { //nolint:recvcheck //using for validation
	driverID kernel.UUID
	location kernel.GeoPoint

	guard guard.ConstructorGuard
}

func NewUpdateDriverLocationCommand(driverID kernel.UUID, location kernel.GeoPoint) (UpdateDriverLocationCommand, error) {
	cmd := UpdateDriverLocationCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setUUID(&cmd.driverID, driverID),
		location.Validate(),
	); err != nil {
		return UpdateDriverLocationCommand{}, err
	}
	cmd.location = location

	return cmd, nil
}

func (c UpdateDriverLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDriverLocationCommandIsNotConstructed)
}

func (c UpdateDriverLocationCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c UpdateDriverLocationCommand) Location() kernel.GeoPoint {
	return c.location
}
