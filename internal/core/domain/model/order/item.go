package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrItemIsNotConstructed is returned when a zero value Item is used.
var ErrItemIsNotConstructed = errors.New("item must be created via NewItem constructor")

// Item is one ordered product line. The line total is always derived from
// unit price and quantity and is never accepted from callers.
type Item struct {
	productID kernel.UUID
	quantity  int
	unitPrice decimal.Decimal
	guard     guard.ConstructorGuard
}

// NewItem validates a product line.
//
// Parameters:
//   - productID: reference to the vendor's product
//   - quantity: number of units, must be greater than 0
//   - unitPrice: price per unit, must not be negative or finer than a cent
//
// Example:
//
//	item, err := order.NewItem(productID, 2, decimal.RequireFromString("150.00"))
//	item.LineTotal() // 300.00
func NewItem(productID kernel.UUID, quantity int, unitPrice decimal.Decimal) (Item, error) {
	item := Item{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		item.setProductID(productID),
		item.setQuantity(quantity),
		item.setUnitPrice(unitPrice),
	); err != nil {
		return Item{}, err
	}

	return item, nil
}

func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i Item) ProductID() kernel.UUID {
	return i.productID
}

func (i Item) Quantity() int {
	return i.quantity
}

func (i Item) UnitPrice() decimal.Decimal {
	return i.unitPrice
}

// LineTotal returns unitPrice × quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.unitPrice.Mul(decimal.NewFromInt(int64(i.quantity)))
}

func (i *Item) setProductID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	i.productID = id
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	i.quantity = quantity
	return nil
}

func (i *Item) setUnitPrice(price decimal.Decimal) error {
	if err := validAmount("unitPrice", price); err != nil {
		return err
	}
	i.unitPrice = price
	return nil
}
