package order

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when a zero value Address is used.
var ErrAddressIsNotConstructed = errors.New("address must be created via NewAddress constructor")

// Address is the customer's delivery destination. Neighborhood doubles as the
// delivery area tag used to match drivers.
type Address struct {
	street       string
	neighborhood string
	city         string
	location     kernel.GeoPoint
	guard        guard.ConstructorGuard
}

// NewAddress trims and validates the textual parts of the address. Street and
// neighborhood are required, city is optional.
func NewAddress(street, neighborhood, city string, location kernel.GeoPoint) (Address, error) {
	a := Address{
		street:       strings.TrimSpace(street),
		neighborhood: strings.TrimSpace(neighborhood),
		city:         strings.TrimSpace(city),
		guard:        guard.NewConstructorGuard(),
	}

	var streetErr, neighborhoodErr error
	if a.street == "" {
		streetErr = errs.NewValueIsRequiredError("street")
	}
	if a.neighborhood == "" {
		neighborhoodErr = errs.NewValueIsRequiredError("neighborhood")
	}

	if err := errors.Join(streetErr, neighborhoodErr, location.Validate()); err != nil {
		return Address{}, err
	}
	a.location = location

	return a, nil
}

func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

func (a Address) Street() string {
	return a.street
}

func (a Address) Neighborhood() string {
	return a.neighborhood
}

func (a Address) City() string {
	return a.city
}

func (a Address) Location() kernel.GeoPoint {
	return a.location
}

// AreaTag returns the delivery area drivers must serve to take this order.
func (a Address) AreaTag() string {
	return a.neighborhood
}
