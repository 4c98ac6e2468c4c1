package commands

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
)

// OrderLine is one product of a checkout.
type OrderLine struct {
	ProductID kernel.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// DeliveryAddress is where the customer receives the order. Neighborhood is
// the area tag used for dispatch.
type DeliveryAddress struct {
	Street       string
	Neighborhood string
	City         string
	Location     kernel.GeoPoint
}

// CreateOrderCommand represents a checkout: the customer's order at one
// vendor, priced and ready to be confirmed.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), customerID, vendorID,
//	    []OrderLine{{ProductID: productID, Quantity: 2, UnitPrice: decimal.RequireFromString("45.50")}},
//	    DeliveryAddress{Street: "Av. Julius Nyerere 300", Neighborhood: "Polana Cimento", City: "Maputo", Location: dropoff},
//	    vendorLocation, decimal.RequireFromString("50"), decimal.Zero)
//	if err != nil {
//	    return fmt.Errorf("invalid checkout: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	customerID kernel.UUID
	vendorID   kernel.UUID
	lines      []OrderLine
	address    DeliveryAddress
	pickup     kernel.GeoPoint
	fee        decimal.Decimal
	tax        decimal.Decimal

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates a checkout. Prices and quantities are
// checked again by the order aggregate.
func NewCreateOrderCommand(
	orderID, customerID, vendorID kernel.UUID,
	lines []OrderLine,
	address DeliveryAddress,
	pickup kernel.GeoPoint,
	fee, tax decimal.Decimal,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setUUID(&cmd.orderID, orderID),
		setUUID(&cmd.customerID, customerID),
		setUUID(&cmd.vendorID, vendorID),
		cmd.setLines(lines),
		cmd.setAddress(address),
		cmd.setPickup(pickup),
		cmd.setCharges(fee, tax),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

func (c CreateOrderCommand) VendorID() kernel.UUID {
	return c.vendorID
}

// Lines returns a copy of the product lines.
func (c CreateOrderCommand) Lines() []OrderLine {
	out := make([]OrderLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c CreateOrderCommand) Address() DeliveryAddress {
	return c.address
}

func (c CreateOrderCommand) Pickup() kernel.GeoPoint {
	return c.pickup
}

func (c CreateOrderCommand) Fee() decimal.Decimal {
	return c.fee
}

func (c CreateOrderCommand) Tax() decimal.Decimal {
	return c.tax
}

func (c *CreateOrderCommand) setLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, line := range lines {
		if err := line.ProductID.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("productId", err)
		}
		if line.Quantity <= 0 {
			return errs.NewValueIsOutOfRangeError("quantity", line.Quantity, 1, "+Inf")
		}
		if err := checkAmount("unitPrice", line.UnitPrice); err != nil {
			return err
		}
	}

	c.lines = make([]OrderLine, len(lines))
	copy(c.lines, lines)
	return nil
}

func (c *CreateOrderCommand) setAddress(address DeliveryAddress) error {
	address.Street = strings.TrimSpace(address.Street)
	address.Neighborhood = strings.TrimSpace(address.Neighborhood)
	address.City = strings.TrimSpace(address.City)

	if address.Street == "" {
		return errs.NewValueIsRequiredError("street")
	}
	if address.Neighborhood == "" {
		return errs.NewValueIsRequiredError("neighborhood")
	}
	if err := address.Location.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("deliveryLocation", err)
	}

	c.address = address
	return nil
}

func (c *CreateOrderCommand) setPickup(pickup kernel.GeoPoint) error {
	if err := pickup.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("pickupLocation", err)
	}

	c.pickup = pickup
	return nil
}

func (c *CreateOrderCommand) setCharges(fee, tax decimal.Decimal) error {
	if err := checkAmount("deliveryFee", fee); err != nil {
		return err
	}
	if err := checkAmount("tax", tax); err != nil {
		return err
	}

	c.fee = fee
	c.tax = tax
	return nil
}

func checkAmount(name string, value decimal.Decimal) error {
	if value.IsNegative() {
		return errs.NewValueIsOutOfRangeError(name, value.String(), 0, "+Inf")
	}
	if !value.Equal(value.Round(order.MoneyScale)) {
		return errs.NewValueIsInvalidErrorWithCause(name,
			fmt.Errorf("%s has more than %d decimal places", value, order.MoneyScale))
	}
	return nil
}

func setUUID(dst *kernel.UUID, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	*dst = id
	return nil
}
