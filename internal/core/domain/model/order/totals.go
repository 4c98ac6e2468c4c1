package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrTotalsAreNotConstructed is returned when a zero value Totals is used.
var ErrTotalsAreNotConstructed = errors.New("totals must be created via NewTotals or RestoreTotals")

// Totals holds the monetary summary of an order. Invariant:
// total = subtotal + fee + tax, with no negative component.
type Totals struct {
	subtotal decimal.Decimal
	fee      decimal.Decimal
	tax      decimal.Decimal
	total    decimal.Decimal
	guard    guard.ConstructorGuard
}

// NewTotals computes the subtotal from the items and derives the total.
func NewTotals(items []Item, fee, tax decimal.Decimal) (Totals, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return RestoreTotals(subtotal, fee, tax, subtotal.Add(fee).Add(tax))
}

// RestoreTotals rebuilds persisted totals and re-checks the sum invariant.
func RestoreTotals(subtotal, fee, tax, total decimal.Decimal) (Totals, error) {
	if err := errors.Join(
		validAmount("subtotal", subtotal),
		validAmount("fee", fee),
		validAmount("tax", tax),
	); err != nil {
		return Totals{}, err
	}

	if expected := subtotal.Add(fee).Add(tax); !expected.Equal(total) {
		return Totals{}, errs.NewValueIsInvalidErrorWithCause(
			"total",
			fmt.Errorf("%s does not equal subtotal + fee + tax (%s)", total, expected),
		)
	}

	return Totals{
		subtotal: subtotal,
		fee:      fee,
		tax:      tax,
		total:    total,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (t Totals) Validate() error {
	return t.guard.Validate(ErrTotalsAreNotConstructed)
}

func (t Totals) Subtotal() decimal.Decimal {
	return t.subtotal
}

func (t Totals) Fee() decimal.Decimal {
	return t.fee
}

func (t Totals) Tax() decimal.Decimal {
	return t.tax
}

func (t Totals) Total() decimal.Decimal {
	return t.total
}

// MoneyScale is the number of decimal places a monetary amount may carry.
const MoneyScale = 2

// validAmount rejects negative amounts and amounts finer than a cent.
func validAmount(name string, value decimal.Decimal) error {
	if value.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%s is negative", value))
	}
	if !value.Equal(value.Round(MoneyScale)) {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%s has more than %d decimal places", value, MoneyScale))
	}
	return nil
}
