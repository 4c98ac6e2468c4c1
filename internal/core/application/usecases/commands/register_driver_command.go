package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrRegisterDriverCommandIsNotConstructed = errors.New(
		"RegisterDriverCommand must be created via NewRegisterDriverCommand constructor",
	)
)

// RegisterDriverCommand adds a driver to the fleet. Unverified drivers are
// stored but never dispatched.
//
// Example:
//
//	cmd, err := NewRegisterDriverCommand(kernel.NewUUID(), userID, position, true,
//	    []string{"Baixa", "Polana Cimento"}, []string{"cash", "m-pesa"})
type RegisterDriverCommand struct { //nolint:recvcheck //using for validation
	driverID       kernel.UUID
	userID         kernel.UUID
	location       kernel.GeoPoint
	verified       bool
	areas          []string
	paymentMethods []string

	guard guard.ConstructorGuard
}

func NewRegisterDriverCommand(
	driverID, userID kernel.UUID,
	location kernel.GeoPoint,
	verified bool,
	areas, paymentMethods []string,
) (RegisterDriverCommand, error) {
	cmd := RegisterDriverCommand{
		verified:       verified,
		paymentMethods: append([]string(nil), paymentMethods...),
		guard:          guard.NewConstructorGuard(),
	}

	var areasErr error
	if len(areas) == 0 {
		areasErr = errs.NewValueIsRequiredError("deliveryAreas")
	}

	if err := errors.Join(
		setUUID(&cmd.driverID, driverID),
		setUUID(&cmd.userID, userID),
		location.Validate(),
		areasErr,
	); err != nil {
		return RegisterDriverCommand{}, err
	}
	cmd.location = location
	cmd.areas = append([]string(nil), areas...)

	return cmd, nil
}

func (c RegisterDriverCommand) Validate() error {
	return c.guard.Validate(ErrRegisterDriverCommandIsNotConstructed)
}

func (c RegisterDriverCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c RegisterDriverCommand) UserID() kernel.UUID {
	return c.userID
}

func (c RegisterDriverCommand) Location() kernel.GeoPoint {
	return c.location
}

func (c RegisterDriverCommand) Verified() bool {
	return c.verified
}

func (c RegisterDriverCommand) Areas() []string {
	return append([]string(nil), c.areas...)
}

func (c RegisterDriverCommand) PaymentMethods() []string {
	return append([]string(nil), c.paymentMethods...)
}
