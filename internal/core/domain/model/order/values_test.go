package order_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	t.Run("line total is unit price times quantity", func(t *testing.T) {
		item, err := order.NewItem(kernel.NewUUID(), 3, decimal.RequireFromString("19.99"))

		require.NoError(t, err)
		assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("59.97")))
	})

	t.Run("quantity must be positive", func(t *testing.T) {
		_, err := order.NewItem(kernel.NewUUID(), 0, decimal.NewFromInt(1))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "0 is not greater than 0")
	})

	t.Run("unit price must not be negative", func(t *testing.T) {
		_, err := order.NewItem(kernel.NewUUID(), 1, decimal.NewFromInt(-1))

		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("unit price finer than a cent is rejected", func(t *testing.T) {
		_, err := order.NewItem(kernel.NewUUID(), 1, decimal.RequireFromString("19.999"))

		require.ErrorIs(t, err, errs.ErrValidation)
		assert.Contains(t, err.Error(), "more than 2 decimal places")
	})

	t.Run("trailing zeros beyond cents are accepted", func(t *testing.T) {
		item, err := order.NewItem(kernel.NewUUID(), 2, decimal.RequireFromString("19.9900"))

		require.NoError(t, err)
		assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("39.98")))
	})
}

func TestNewAddress(t *testing.T) {
	point, _ := kernel.NewGeoPoint(-25.9692, 32.5732)

	t.Run("trims text fields", func(t *testing.T) {
		a, err := order.NewAddress("  Rua da Mesquita 4 ", " Baixa ", "", point)

		require.NoError(t, err)
		assert.Equal(t, "Rua da Mesquita 4", a.Street())
		assert.Equal(t, "Baixa", a.AreaTag())
		assert.Empty(t, a.City())
	})

	t.Run("street and neighborhood are required", func(t *testing.T) {
		_, err := order.NewAddress(" ", "", "Maputo", point)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "street")
		assert.Contains(t, err.Error(), "neighborhood")
	})
}

func TestTotals(t *testing.T) {
	t.Run("restore rejects a broken sum", func(t *testing.T) {
		_, err := order.RestoreTotals(decimal.NewFromInt(10), decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(13))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not equal subtotal + fee + tax")
	})

	t.Run("negative fee is rejected", func(t *testing.T) {
		_, err := order.NewTotals(newTestItems(t), decimal.NewFromInt(-5), decimal.Zero)

		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("fee and tax finer than a cent are rejected", func(t *testing.T) {
		_, err := order.NewTotals(newTestItems(t), decimal.RequireFromString("0.005"), decimal.RequireFromString("1.255"))

		require.ErrorIs(t, err, errs.ErrValidation)
		assert.Contains(t, err.Error(), "fee")
		assert.Contains(t, err.Error(), "tax")
	})
}

func TestPaymentStatus(t *testing.T) {
	s, err := order.ParsePaymentStatus("refunded")

	require.NoError(t, err)
	assert.Equal(t, order.PaymentRefunded, s)
	assert.Equal(t, "refunded", s.String())

	_, err = order.ParsePaymentStatus("chargeback")
	assert.Error(t, err)
}

func TestPayment_Validate(t *testing.T) {
	t.Run("refunded from is optional", func(t *testing.T) {
		assert.NoError(t, order.Payment{Status: order.PaymentPending}.Validate())
	})

	t.Run("refunded from must be a status a refund can replace", func(t *testing.T) {
		err := order.Payment{Status: order.PaymentRefunded, RefundedFrom: order.PaymentRefunded}.Validate()

		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("status is required", func(t *testing.T) {
		err := order.Payment{RefundedFrom: order.PaymentPaid}.Validate()

		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}
