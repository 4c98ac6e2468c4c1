package fulfillment_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"fulfillment/internal/adapters/out/memory"
	"fulfillment/internal/core/application/fulfillment"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	vendorPoint   = mustPoint(-25.9655, 32.5802)
	customerPoint = mustPoint(-25.9692, 32.5732)
)

func mustPoint(lat, lng float64) kernel.GeoPoint {
	p, err := kernel.NewGeoPoint(lat, lng)
	if err != nil {
		panic(err)
	}
	return p
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// harness wires an Orchestrator to an in-memory store.
type harness struct {
	store           *memory.Store
	factory         ports.UnitOfWorkFactory
	notifications   *memory.NotificationLog
	inconsistencies *memory.InconsistencyLog
	orchestrator    *fulfillment.Orchestrator
	now             time.Time
}

func newHarness() *harness {
	return newHarnessWith(nil, nil)
}

// newHarnessWith lets a test replace the unit of work factory or the sink.
func newHarnessWith(wrap func(ports.UnitOfWorkFactory) ports.UnitOfWorkFactory, sink ports.NotificationSink) *harness {
	h := &harness{
		store:           memory.NewStore(),
		notifications:   memory.NewNotificationLog(),
		inconsistencies: memory.NewInconsistencyLog(),
		now:             time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	h.factory = memory.NewUnitOfWorkFactory(h.store)
	if wrap != nil {
		h.factory = wrap(h.factory)
	}
	if sink == nil {
		sink = h.notifications
	}

	h.orchestrator = fulfillment.NewOrchestrator(
		h.factory,
		sink,
		h.inconsistencies,
		fulfillment.Config{},
		discardLogger(),
		fulfillment.WithClock(func() time.Time { return h.now }),
	)
	return h
}

func (h *harness) addOrder(t require.TestingT, status order.Status) *order.Order {
	item, err := order.NewItem(kernel.NewUUID(), 2, decimal.RequireFromString("150.00"))
	require.NoError(t, err)
	items := []order.Item{item}

	totals, err := order.NewTotals(items, decimal.RequireFromString("50"), decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	address, err := order.NewAddress("Av. Samora Machel 11", "Baixa", "Maputo", customerPoint)
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), items, address, vendorPoint, totals, h.now)
	require.NoError(t, err)

	for _, next := range []order.Status{order.Confirmed, order.Preparing, order.Ready} {
		if o.Status() == status {
			break
		}
		require.NoError(t, o.TransitionTo(next, h.now))
	}
	require.Equal(t, status, o.Status())

	require.NoError(t, memory.NewOrderRepository(h.store).Add(context.Background(), o))
	return o
}

func (h *harness) addDriver(t require.TestingT, rating float64, location kernel.GeoPoint, areas ...string) *driver.Driver {
	if len(areas) == 0 {
		areas = []string{"Baixa"}
	}

	d, err := driver.RestoreDriver(
		kernel.NewUUID(), kernel.NewUUID(),
		driver.Position{Location: location, UpdatedAt: h.now},
		driver.Availability{IsAvailable: true, IsVerified: true},
		driver.Stats{Rating: rating},
		areas, []string{"cash"},
	)
	require.NoError(t, err)

	require.NoError(t, memory.NewDriverRepository(h.store).Add(context.Background(), d))
	return d
}

func (h *harness) order(t require.TestingT, id kernel.UUID) *order.Order {
	o, err := memory.NewOrderRepository(h.store).Get(context.Background(), id)
	require.NoError(t, err)
	return o
}

func (h *harness) driver(t require.TestingT, id kernel.UUID) *driver.Driver {
	d, err := memory.NewDriverRepository(h.store).Get(context.Background(), id)
	require.NoError(t, err)
	return d
}

// sent returns the notifications enqueued after the first skip ones.
func (h *harness) sent(skip int) []ports.Notification {
	return h.notifications.Notifications()[skip:]
}

// failingRollbackFactory hands out units of work whose Rollback always fails
// after reverting the journal.
type failingRollbackFactory struct {
	ports.UnitOfWorkFactory
}

func (f failingRollbackFactory) Create() ports.UnitOfWork {
	return failingRollbackUoW{UnitOfWork: f.UnitOfWorkFactory.Create()}
}

type failingRollbackUoW struct {
	ports.UnitOfWork
}

func (u failingRollbackUoW) Rollback(ctx context.Context) error {
	_ = u.UnitOfWork.Rollback(ctx)
	return errRollback
}

var errRollback = errors.New("connection reset during rollback")

type failingSink struct{}

func (failingSink) Enqueue(context.Context, ports.Notification) error {
	return errors.New("queue full")
}
