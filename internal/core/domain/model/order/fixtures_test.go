package order_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var checkoutTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestItems(t *testing.T) []order.Item {
	t.Helper()

	first, err := order.NewItem(kernel.NewUUID(), 2, decimal.RequireFromString("150.00"))
	require.NoError(t, err)
	second, err := order.NewItem(kernel.NewUUID(), 1, decimal.RequireFromString("75.50"))
	require.NoError(t, err)

	return []order.Item{first, second}
}

func newTestAddress(t *testing.T) order.Address {
	t.Helper()

	point, err := kernel.NewGeoPoint(-25.9692, 32.5732)
	require.NoError(t, err)
	address, err := order.NewAddress("Av. Samora Machel 11", "Baixa", "Maputo", point)
	require.NoError(t, err)

	return address
}

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()

	items := newTestItems(t)
	totals, err := order.NewTotals(items, decimal.RequireFromString("50"), decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	pickup, err := kernel.NewGeoPoint(-25.9655, 32.5802)
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), items, newTestAddress(t), pickup, totals, checkoutTime)
	require.NoError(t, err)

	return o
}

// orderIn walks a fresh order to the requested status through direct transitions.
func orderIn(t *testing.T, status order.Status) *order.Order {
	t.Helper()

	o := newTestOrder(t)
	path := []order.Status{order.Confirmed, order.Preparing, order.Ready, order.OutForDelivery, order.Delivered}
	if status == order.Cancelled {
		require.NoError(t, o.TransitionTo(order.Cancelled, checkoutTime))
		return o
	}
	for _, next := range path {
		if o.Status() == status {
			break
		}
		require.NoError(t, o.TransitionTo(next, checkoutTime))
	}
	require.Equal(t, status, o.Status())

	return o
}
