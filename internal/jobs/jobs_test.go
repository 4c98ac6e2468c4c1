package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/memory"
	"fulfillment/internal/core/application/fulfillment"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func point(t *testing.T, lat, lng float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return p
}

func addOrder(t *testing.T, factory ports.UnitOfWorkFactory, path ...order.Status) *order.Order {
	t.Helper()
	item, err := order.NewItem(kernel.NewUUID(), 1, decimal.RequireFromString("80.00"))
	require.NoError(t, err)
	totals, err := order.NewTotals([]order.Item{item}, decimal.RequireFromString("30"), decimal.Zero)
	require.NoError(t, err)
	address, err := order.NewAddress("Av. 24 de Julho 1500", "Baixa", "Maputo", point(t, -25.9692, 32.5732))
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		[]order.Item{item}, address, point(t, -25.9655, 32.5802), totals, testNow)
	require.NoError(t, err)

	for _, next := range path {
		require.NoError(t, o.TransitionTo(next, testNow))
	}
	require.NoError(t, factory.Create().OrderRepository().Add(t.Context(), o))
	return o
}

func addDriver(t *testing.T, factory ports.UnitOfWorkFactory) *driver.Driver {
	t.Helper()
	d, err := driver.NewDriver(kernel.NewUUID(), kernel.NewUUID(), point(t, -25.9660, 32.5795), true,
		[]string{"Baixa"}, nil, testNow)
	require.NoError(t, err)
	require.NoError(t, factory.Create().DriverRepository().Add(t.Context(), d))
	return d
}

var ready = []order.Status{order.Confirmed, order.Preparing, order.Ready}

func TestAutoDispatchJob_DispatchesReadyOrdersUntilDriversRunOut(t *testing.T) {
	// Given
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	orchestrator := fulfillment.NewOrchestrator(factory, memory.NewNotificationLog(), memory.NewInconsistencyLog(),
		fulfillment.Config{MaxDistanceMeters: 5000}, discardLogger())
	first := addOrder(t, factory, ready...)
	second := addOrder(t, factory, ready...)
	addOrder(t, factory, order.Confirmed)
	addDriver(t, factory)

	job := jobs.NewAutoDispatchJob(factory, commands.NewCreateDeliveryCommandHandler(orchestrator),
		"*/5 * * * * *", 10, discardLogger())

	// When
	dispatched, err := job.RunOnce(t.Context())

	// Then
	require.NoError(t, err)
	assert.Equal(t, 1, dispatched, "one driver serves one order, the other waits")

	deliveries := factory.Create().DeliveryRepository()
	_, firstErr := deliveries.FindByOrder(t.Context(), first.ID())
	_, secondErr := deliveries.FindByOrder(t.Context(), second.ID())
	assert.True(t, (firstErr == nil) != (secondErr == nil))

	// When a second driver shows up
	addDriver(t, factory)
	dispatched, err = job.RunOnce(t.Context())

	// Then
	require.NoError(t, err)
	assert.Equal(t, 1, dispatched)
	remaining, err := factory.Create().OrderRepository().FindReadyWithoutDelivery(t.Context(), 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

type MockDispatcher struct{ mock.Mock }

func (m *MockDispatcher) Handle(ctx context.Context, cmd commands.CreateDeliveryCommand) (*delivery.Delivery, error) {
	args := m.Called(ctx, cmd)
	d, _ := args.Get(0).(*delivery.Delivery)
	return d, args.Error(1)
}

func TestAutoDispatchJob_UnexpectedErrorDoesNotStopBatch(t *testing.T) {
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	addOrder(t, factory, ready...)
	addOrder(t, factory, ready...)

	dispatcher := new(MockDispatcher)
	dispatcher.On("Handle", mock.Anything, mock.Anything).Return(nil, errors.New("database unavailable")).Twice()

	job := jobs.NewAutoDispatchJob(factory, dispatcher, "@every 1s", 0, discardLogger())
	dispatched, err := job.RunOnce(t.Context())

	require.NoError(t, err)
	assert.Zero(t, dispatched)
	dispatcher.AssertNumberOfCalls(t, "Handle", 2)
}

func TestReconciliationJob_RecordsEachInconsistentPairOnce(t *testing.T) {
	// Given
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	recorder := memory.NewInconsistencyLog()
	courier := addDriver(t, factory)

	consistent := addOrder(t, factory, ready...)
	orphaned := addOrder(t, factory, ready...)
	_, err := orphaned.FollowDelivery(order.OutForDelivery, testNow)
	require.NoError(t, err)
	require.NoError(t, factory.Create().OrderRepository().ConditionalUpdate(t.Context(), orphaned))

	mismatched := addOrder(t, factory, order.Confirmed)
	d, err := delivery.NewDelivery(kernel.NewUUID(), mismatched.ID(), courier.ID(), delivery.Route{
		Pickup: mismatched.PickupLocation(), Dropoff: mismatched.DeliveryAddress().Location(), Current: courier.Location(),
	}, testNow.Add(20*time.Minute), testNow)
	require.NoError(t, err)
	require.NoError(t, factory.Create().DeliveryRepository().Add(t.Context(), d))

	job := jobs.NewReconciliationJob(factory, recorder, "0 * * * * *", discardLogger())

	// When
	found, err := job.RunOnce(t.Context())

	// Then
	require.NoError(t, err)
	assert.Equal(t, 2, found)
	records := recorder.Records()
	require.Len(t, records, 2)
	byOrder := map[kernel.UUID]ports.Inconsistency{}
	for _, r := range records {
		byOrder[r.OrderID] = r
	}
	assert.NotContains(t, byOrder, consistent.ID())
	assert.Equal(t, "out_for_delivery", byOrder[orphaned.ID()].OrderStatus)
	assert.Empty(t, byOrder[orphaned.ID()].DeliveryStatus)
	assert.Equal(t, "picked_up", byOrder[mismatched.ID()].DeliveryStatus)
	assert.Equal(t, "reconciliation", byOrder[mismatched.ID()].Operation)

	// When scanned again
	found, err = job.RunOnce(t.Context())

	// Then
	require.NoError(t, err)
	assert.Zero(t, found)
	assert.Len(t, recorder.Records(), 2)
}

type failingOnceRecorder struct {
	*memory.InconsistencyLog
	failed bool
}

func (r *failingOnceRecorder) Record(ctx context.Context, record ports.Inconsistency) error {
	if !r.failed {
		r.failed = true
		return errors.New("journal unavailable")
	}
	return r.InconsistencyLog.Record(ctx, record)
}

func TestReconciliationJob_RetriesPairThatFailedToStore(t *testing.T) {
	// Given
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	recorder := &failingOnceRecorder{InconsistencyLog: memory.NewInconsistencyLog()}
	orphaned := addOrder(t, factory, ready...)
	_, err := orphaned.FollowDelivery(order.OutForDelivery, testNow)
	require.NoError(t, err)
	require.NoError(t, factory.Create().OrderRepository().ConditionalUpdate(t.Context(), orphaned))
	job := jobs.NewReconciliationJob(factory, recorder, "0 * * * * *", discardLogger())

	// When
	found, err := job.RunOnce(t.Context())

	// Then
	require.NoError(t, err)
	assert.Zero(t, found)
	assert.Empty(t, recorder.Records())

	// When scanned again
	found, err = job.RunOnce(t.Context())

	// Then
	require.NoError(t, err)
	assert.Equal(t, 1, found)
	records := recorder.Records()
	require.Len(t, records, 1)
	assert.Equal(t, orphaned.ID(), records[0].OrderID)

	// When scanned a third time
	found, err = job.RunOnce(t.Context())

	// Then
	require.NoError(t, err)
	assert.Zero(t, found)
	assert.Len(t, recorder.Records(), 1)
}

func TestJobManager_StartAndStop(t *testing.T) {
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())

	manager := jobs.NewJobManager(factory, new(MockDispatcher), memory.NewInconsistencyLog(), jobs.Config{
		AutoDispatchSchedule:   "*/5 * * * * *",
		ReconciliationSchedule: "0 * * * * *",
	}, discardLogger())

	require.NoError(t, manager.StartAll())
	manager.StopAll()
}

func TestJobManager_InvalidScheduleStopsStartedJobs(t *testing.T) {
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())

	manager := jobs.NewJobManager(factory, new(MockDispatcher), memory.NewInconsistencyLog(), jobs.Config{
		AutoDispatchSchedule:   "*/5 * * * * *",
		ReconciliationSchedule: "every now and then",
	}, discardLogger())

	err := manager.StartAll()

	require.Error(t, err)
	manager.StopAll()
}

func TestJobManager_EmptySchedulesDisableJobs(t *testing.T) {
	manager := jobs.NewJobManager(memory.NewUnitOfWorkFactory(memory.NewStore()), new(MockDispatcher),
		memory.NewInconsistencyLog(), jobs.Config{}, discardLogger())

	require.NoError(t, manager.StartAll())
	manager.StopAll()
}
