package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/memory"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func point(t *testing.T, lat, lng float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return p
}

func newOrder(t *testing.T) *order.Order {
	t.Helper()

	item, err := order.NewItem(kernel.NewUUID(), 1, decimal.RequireFromString("99.90"))
	require.NoError(t, err)
	items := []order.Item{item}
	totals, err := order.NewTotals(items, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	address, err := order.NewAddress("Rua da Mesquita 4", "Baixa", "Maputo", point(t, -25.9692, 32.5732))
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), items, address, point(t, -25.9655, 32.5802), totals, now)
	require.NoError(t, err)
	return o
}

func newDriver(t *testing.T, lat, lng float64) *driver.Driver {
	t.Helper()
	d, err := driver.NewDriver(kernel.NewUUID(), kernel.NewUUID(), point(t, lat, lng), true, []string{"Baixa"}, nil, now)
	require.NoError(t, err)
	return d
}

func TestOrderRepository_ConditionalUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("should write and advance the version", func(t *testing.T) {
		// Given
		repo := memory.NewOrderRepository(memory.NewStore())
		o := newOrder(t)
		require.NoError(t, repo.Add(ctx, o))
		require.NoError(t, o.TransitionTo(order.Confirmed, now))

		// When
		err := repo.ConditionalUpdate(ctx, o)

		// Then
		require.NoError(t, err)
		assert.Equal(t, int64(1), o.Version())
		stored, err := repo.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.Confirmed, stored.Status())
		assert.Equal(t, int64(1), stored.Version())
	})

	t.Run("should reject a stale version", func(t *testing.T) {
		// Given
		repo := memory.NewOrderRepository(memory.NewStore())
		o := newOrder(t)
		require.NoError(t, repo.Add(ctx, o))
		first, err := repo.Get(ctx, o.ID())
		require.NoError(t, err)
		second, err := repo.Get(ctx, o.ID())
		require.NoError(t, err)

		require.NoError(t, first.TransitionTo(order.Confirmed, now))
		require.NoError(t, repo.ConditionalUpdate(ctx, first))

		// When
		require.NoError(t, second.TransitionTo(order.Cancelled, now))
		err = repo.ConditionalUpdate(ctx, second)

		// Then
		require.ErrorIs(t, err, errs.ErrConflict)
		stored, err := repo.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.Confirmed, stored.Status())
	})

	t.Run("should not share state with callers", func(t *testing.T) {
		// Given
		repo := memory.NewOrderRepository(memory.NewStore())
		o := newOrder(t)
		require.NoError(t, repo.Add(ctx, o))

		// When
		require.NoError(t, o.TransitionTo(order.Confirmed, now))

		// Then
		stored, err := repo.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.Pending, stored.Status())
	})
}

func TestOrderRepository_FindReadyWithoutDelivery(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	orders := memory.NewOrderRepository(store)
	deliveries := memory.NewDeliveryRepository(store)

	ready := func() *order.Order {
		o := newOrder(t)
		for _, next := range []order.Status{order.Confirmed, order.Preparing, order.Ready} {
			require.NoError(t, o.TransitionTo(next, now))
		}
		require.NoError(t, orders.Add(ctx, o))
		return o
	}

	waiting := ready()
	dispatched := ready()
	require.NoError(t, orders.Add(ctx, newOrder(t)))

	d, err := delivery.NewDelivery(kernel.NewUUID(), dispatched.ID(), kernel.NewUUID(), delivery.Route{
		Pickup: dispatched.PickupLocation(), Dropoff: dispatched.DeliveryAddress().Location(), Current: dispatched.PickupLocation(),
	}, now.Add(20*time.Minute), now)
	require.NoError(t, err)
	require.NoError(t, deliveries.Add(ctx, d))

	found, err := orders.FindReadyWithoutDelivery(ctx, 10)

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, waiting.ID().IsEqual(found[0].ID()))
}

func TestDeliveryRepository_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("should allow a single delivery per order", func(t *testing.T) {
		// Given
		repo := memory.NewDeliveryRepository(memory.NewStore())
		orderID := kernel.NewUUID()
		route := delivery.Route{
			Pickup:  point(t, -25.9655, 32.5802),
			Dropoff: point(t, -25.9692, 32.5732),
			Current: point(t, -25.9655, 32.5802),
		}
		first, err := delivery.NewDelivery(kernel.NewUUID(), orderID, kernel.NewUUID(), route, now, now)
		require.NoError(t, err)
		second, err := delivery.NewDelivery(kernel.NewUUID(), orderID, kernel.NewUUID(), route, now, now)
		require.NoError(t, err)
		require.NoError(t, repo.Add(ctx, first))

		// When
		err = repo.Add(ctx, second)

		// Then
		require.ErrorIs(t, err, errs.ErrConflict)
		found, err := repo.FindByOrder(ctx, orderID)
		require.NoError(t, err)
		assert.True(t, first.ID().IsEqual(found.ID()))
	})

	t.Run("should report unknown orders as not found", func(t *testing.T) {
		repo := memory.NewDeliveryRepository(memory.NewStore())

		_, err := repo.FindByOrder(ctx, kernel.NewUUID())

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestDriverRepository_Claim(t *testing.T) {
	ctx := context.Background()

	t.Run("should let exactly one concurrent claim win", func(t *testing.T) {
		// Given
		repo := memory.NewDriverRepository(memory.NewStore())
		d := newDriver(t, -25.9660, 32.5790)
		require.NoError(t, repo.Add(ctx, d))

		// When
		const claimers = 16
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for range claimers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := repo.Claim(ctx, d.ID()); err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				} else {
					assert.ErrorIs(t, err, errs.ErrNoCapacity)
				}
			}()
		}
		wg.Wait()

		// Then
		assert.Equal(t, 1, wins)
		stored, err := repo.Get(ctx, d.ID())
		require.NoError(t, err)
		assert.False(t, stored.IsAvailable())
		assert.Equal(t, 1, stored.TotalDeliveries())
	})

	t.Run("should report unknown drivers as not found", func(t *testing.T) {
		repo := memory.NewDriverRepository(memory.NewStore())

		err := repo.Claim(ctx, kernel.NewUUID())

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should fold completions into the average", func(t *testing.T) {
		// Given
		repo := memory.NewDriverRepository(memory.NewStore())
		d := newDriver(t, -25.9660, 32.5790)
		require.NoError(t, repo.Add(ctx, d))

		// When
		require.NoError(t, repo.Claim(ctx, d.ID()))
		require.NoError(t, repo.RecordCompletion(ctx, d.ID(), 20))
		require.NoError(t, repo.Claim(ctx, d.ID()))
		require.NoError(t, repo.RecordCompletion(ctx, d.ID(), 40))

		// Then
		stored, err := repo.Get(ctx, d.ID())
		require.NoError(t, err)
		assert.True(t, stored.IsAvailable())
		assert.Equal(t, 2, stored.CompletedDeliveries())
		assert.InDelta(t, 30.0, stored.AverageDeliveryMinutes(), 0.0001)
	})
}

func TestDriverRepository_FindAvailableWithin(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewDriverRepository(memory.NewStore())

	near := newDriver(t, -25.9660, 32.5790)
	busy := newDriver(t, -25.9661, 32.5791)
	far := newDriver(t, -26.9, 33.5)
	for _, d := range []*driver.Driver{near, busy, far} {
		require.NoError(t, repo.Add(ctx, d))
	}
	require.NoError(t, repo.Claim(ctx, busy.ID()))

	found, err := repo.FindAvailableWithin(ctx, point(t, -25.9655, 32.5802).BoundingBox(5_000))

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, near.ID().IsEqual(found[0].ID()))
}
