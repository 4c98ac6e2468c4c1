package fulfillment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/memory"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctx context.Context
	h   *harness
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (suite *OrchestratorTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.h = newHarness()
}

// dispatched creates a ready order, one driver and its delivery.
func (suite *OrchestratorTestSuite) dispatched() (*order.Order, *delivery.Delivery) {
	o := suite.h.addOrder(suite.T(), order.Ready)
	suite.h.addDriver(suite.T(), 4.0, mustPoint(-25.9660, 32.5790))

	d, err := suite.h.orchestrator.CreateDelivery(suite.ctx, o.ID(), nil)
	suite.Require().NoError(err)
	return o, d
}

// deliver walks d through in_transit to delivered.
func (suite *OrchestratorTestSuite) deliver(d *delivery.Delivery) *delivery.Delivery {
	_, err := suite.h.orchestrator.AdvanceStatus(suite.ctx, d.ID(), delivery.InTransit, "")
	suite.Require().NoError(err)
	delivered, err := suite.h.orchestrator.AdvanceStatus(suite.ctx, d.ID(), delivery.Delivered, "")
	suite.Require().NoError(err)
	return delivered
}

func (suite *OrchestratorTestSuite) TestCreateDelivery_SelectsHighestRatedDriverInArea() {
	// Given
	o := suite.h.addOrder(suite.T(), order.Ready)
	suite.h.addDriver(suite.T(), 3.0, mustPoint(-25.9660, 32.5790))
	suite.h.addDriver(suite.T(), 4.5, mustPoint(-25.9650, 32.5810))
	best := suite.h.addDriver(suite.T(), 5.0, mustPoint(-25.9670, 32.5780))
	suite.h.addDriver(suite.T(), 5.0, mustPoint(-25.9656, 32.5801), "Polana")

	// When
	d, err := suite.h.orchestrator.CreateDelivery(suite.ctx, o.ID(), nil)

	// Then
	suite.Require().NoError(err)
	suite.True(best.ID().IsEqual(d.DriverID()))
	suite.Equal(delivery.PickedUp, d.Status())

	stored := suite.h.order(suite.T(), o.ID())
	suite.Equal(order.OutForDelivery, stored.Status())
	suite.Require().NotNil(stored.EstimatedDeliveryTime())
	suite.True(stored.EstimatedDeliveryTime().Equal(d.EstimatedTime()))

	claimed := suite.h.driver(suite.T(), best.ID())
	suite.False(claimed.IsAvailable())
	suite.Equal(1, claimed.TotalDeliveries())

	sent := suite.h.sent(0)
	suite.Require().Len(sent, 2)
	suite.True(o.CustomerID().IsEqual(sent[0].RecipientID))
	suite.True(o.VendorID().IsEqual(sent[1].RecipientID))
	suite.Equal(ports.CategoryDelivery, sent[0].Category)
}

func (suite *OrchestratorTestSuite) TestCreateDelivery_ConfirmedOrderIsDispatchable() {
	// Given
	o := suite.h.addOrder(suite.T(), order.Confirmed)
	suite.h.addDriver(suite.T(), 4.0, mustPoint(-25.9660, 32.5790))

	// When
	_, err := suite.h.orchestrator.CreateDelivery(suite.ctx, o.ID(), nil)

	// Then
	suite.Require().NoError(err)
	suite.Equal(order.OutForDelivery, suite.h.order(suite.T(), o.ID()).Status())
}

func (suite *OrchestratorTestSuite) TestCreateDelivery_OrderNotReady() {
	// Given
	o := suite.h.addOrder(suite.T(), order.Pending)
	drv := suite.h.addDriver(suite.T(), 4.0, mustPoint(-25.9660, 32.5790))

	// When
	_, err := suite.h.orchestrator.CreateDelivery(suite.ctx, o.ID(), nil)

	// Then
	suite.Require().ErrorIs(err, errs.ErrOrderNotReady)
	suite.Require().ErrorIs(err, errs.ErrIllegalState)
	suite.True(suite.h.driver(suite.T(), drv.ID()).IsAvailable())
	suite.Empty(suite.h.sent(0))
}

func (suite *OrchestratorTestSuite) TestCreateDelivery_SecondDeliveryRejected() {
	// Given
	o, _ := suite.dispatched()
	suite.h.addDriver(suite.T(), 4.0, mustPoint(-25.9660, 32.5790))

	// When
	_, err := suite.h.orchestrator.CreateDelivery(suite.ctx, o.ID(), nil)

	// Then
	suite.Require().ErrorIs(err, errs.ErrIllegalState)
}

func (suite *OrchestratorTestSuite) TestCreateDelivery_NoCapacityLeavesOrderUntouched() {
	// Given
	o := suite.h.addOrder(suite.T(), order.Ready)
	suite.h.addDriver(suite.T(), 4.0, mustPoint(-25.9660, 32.5790), "Polana")
	suite.h.addDriver(suite.T(), 4.0, mustPoint(-26.5, 32.9))

	// When
	_, err := suite.h.orchestrator.CreateDelivery(suite.ctx, o.ID(), nil)

	// Then
	var noCapacity *errs.NoCapacityError
	suite.Require().ErrorAs(err, &noCapacity)
	suite.Equal("Baixa", noCapacity.AreaTag)

	stored := suite.h.order(suite.T(), o.ID())
	suite.Equal(order.Ready, stored.Status())
	suite.Equal(o.Version(), stored.Version())
}

func (suite *OrchestratorTestSuite) TestCreateDelivery_ExplicitDriver() {
	// Given
	o := suite.h.addOrder(suite.T(), order.Ready)
	suite.h.addDriver(suite.T(), 5.0, mustPoint(-25.9660, 32.5790))
	chosen := suite.h.addDriver(suite.T(), 2.0, mustPoint(-25.9700, 32.5900), "Polana")
	id := chosen.ID()

	// When
	d, err := suite.h.orchestrator.CreateDelivery(suite.ctx, o.ID(), &id)

	// Then
	suite.Require().NoError(err)
	suite.True(id.IsEqual(d.DriverID()))
}

func (suite *OrchestratorTestSuite) TestCreateDelivery_ExplicitDriverBusy() {
	// Given
	_, first := suite.dispatched()
	other := suite.h.addOrder(suite.T(), order.Ready)
	busy := first.DriverID()

	// When
	_, err := suite.h.orchestrator.CreateDelivery(suite.ctx, other.ID(), &busy)

	// Then
	var noCapacity *errs.NoCapacityError
	suite.Require().ErrorAs(err, &noCapacity)
	suite.Equal(busy.String(), noCapacity.DriverID)
	suite.Equal(order.Ready, suite.h.order(suite.T(), other.ID()).Status())
}

func (suite *OrchestratorTestSuite) TestAdvanceStatus_FailedReleasesDriverAndRefunds() {
	// Given
	o, d := suite.dispatched()
	before := len(suite.h.sent(0))

	// When
	updated, err := suite.h.orchestrator.AdvanceStatus(suite.ctx, d.ID(), delivery.Failed, "traffic accident")

	// Then
	suite.Require().NoError(err)
	suite.Equal(delivery.Failed, updated.Status())
	suite.Equal("traffic accident", updated.FailureReason())
	suite.True(suite.h.driver(suite.T(), d.DriverID()).IsAvailable())

	stored := suite.h.order(suite.T(), o.ID())
	suite.Equal(order.Cancelled, stored.Status())
	suite.Equal(order.PaymentRefunded, stored.PaymentStatus())

	sent := suite.h.sent(before)
	suite.Require().Len(sent, 2)
	suite.True(o.CustomerID().IsEqual(sent[0].RecipientID))
	suite.True(o.VendorID().IsEqual(sent[1].RecipientID))
	suite.Contains(sent[0].Message, "traffic accident")
}

func (suite *OrchestratorTestSuite) TestAdvanceStatus_FailedWithoutReason() {
	// Given
	o, d := suite.dispatched()

	// When
	_, err := suite.h.orchestrator.AdvanceStatus(suite.ctx, d.ID(), delivery.Failed, "  ")

	// Then
	suite.Require().ErrorIs(err, errs.ErrValidation)
	suite.Equal(order.OutForDelivery, suite.h.order(suite.T(), o.ID()).Status())
}

func (suite *OrchestratorTestSuite) TestAdvanceStatus_DeliveredRecordsCompletion() {
	// Given
	o, d := suite.dispatched()
	_, err := suite.h.orchestrator.AdvanceStatus(suite.ctx, d.ID(), delivery.InTransit, "")
	suite.Require().NoError(err)
	suite.h.now = suite.h.now.Add(30 * time.Minute)

	// When
	updated, err := suite.h.orchestrator.AdvanceStatus(suite.ctx, d.ID(), delivery.Delivered, "")

	// Then
	suite.Require().NoError(err)
	suite.Equal(delivery.Delivered, updated.Status())
	suite.Require().NotNil(updated.DeliveredAt())

	stored := suite.h.order(suite.T(), o.ID())
	suite.Equal(order.Delivered, stored.Status())
	suite.Require().NotNil(stored.ActualDeliveryTime())

	drv := suite.h.driver(suite.T(), d.DriverID())
	suite.True(drv.IsAvailable())
	suite.Equal(1, drv.CompletedDeliveries())
	suite.InDelta(30.0, drv.AverageDeliveryMinutes(), 0.001)
}

func (suite *OrchestratorTestSuite) TestAdvanceStatus_DeliveredTwice() {
	// Given
	o, d := suite.dispatched()
	suite.deliver(d)
	before := suite.h.order(suite.T(), o.ID()).Version()

	// When
	_, err := suite.h.orchestrator.AdvanceStatus(suite.ctx, d.ID(), delivery.Delivered, "")

	// Then
	suite.Require().ErrorIs(err, errs.ErrInvalidTransition)
	suite.Equal(1, suite.h.driver(suite.T(), d.DriverID()).CompletedDeliveries())
	suite.Equal(before, suite.h.order(suite.T(), o.ID()).Version())
}

func (suite *OrchestratorTestSuite) TestCancel_ActiveDelivery() {
	// Given
	o, d := suite.dispatched()
	before := len(suite.h.sent(0))

	// When
	updated, err := suite.h.orchestrator.Cancel(suite.ctx, d.ID(), "customer changed their mind")

	// Then
	suite.Require().NoError(err)
	suite.Equal(delivery.Failed, updated.Status())
	suite.True(updated.Cancelled())
	suite.True(suite.h.driver(suite.T(), d.DriverID()).IsAvailable())

	stored := suite.h.order(suite.T(), o.ID())
	suite.Equal(order.Cancelled, stored.Status())
	suite.Equal(order.PaymentRefunded, stored.PaymentStatus())
	suite.Len(suite.h.sent(before), 2)
}

func (suite *OrchestratorTestSuite) TestCancel_DeliveredIsAlreadyTerminal() {
	// Given
	o, d := suite.dispatched()
	delivered := suite.deliver(d)
	orderVersion := suite.h.order(suite.T(), o.ID()).Version()
	before := len(suite.h.sent(0))

	// When
	_, err := suite.h.orchestrator.Cancel(suite.ctx, d.ID(), "too late")

	// Then
	suite.Require().ErrorIs(err, errs.ErrAlreadyTerminal)

	stored, getErr := suite.h.factory.Create().DeliveryRepository().Get(suite.ctx, d.ID())
	suite.Require().NoError(getErr)
	suite.Equal(delivery.Delivered, stored.Status())
	suite.Equal(delivered.Version(), stored.Version())
	suite.Equal(orderVersion, suite.h.order(suite.T(), o.ID()).Version())
	suite.Empty(suite.h.sent(before))
}

func (suite *OrchestratorTestSuite) TestReassign_InTransitMovesToAnotherDriver() {
	// Given
	o, d := suite.dispatched()
	_, err := suite.h.orchestrator.AdvanceStatus(suite.ctx, d.ID(), delivery.InTransit, "")
	suite.Require().NoError(err)
	replacement := suite.h.addDriver(suite.T(), 3.5, mustPoint(-25.9650, 32.5810))
	before := len(suite.h.sent(0))

	// When
	updated, err := suite.h.orchestrator.Reassign(suite.ctx, d.ID(), nil)

	// Then
	suite.Require().NoError(err)
	suite.True(replacement.ID().IsEqual(updated.DriverID()))
	suite.Equal(delivery.PickedUp, updated.Status())
	suite.True(suite.h.driver(suite.T(), d.DriverID()).IsAvailable())
	suite.False(suite.h.driver(suite.T(), replacement.ID()).IsAvailable())
	suite.Equal(order.OutForDelivery, suite.h.order(suite.T(), o.ID()).Status())

	sent := suite.h.sent(before)
	suite.Require().Len(sent, 1)
	suite.True(o.CustomerID().IsEqual(sent[0].RecipientID))
}

func (suite *OrchestratorTestSuite) TestReassign_NoOtherDriver() {
	// Given
	o, d := suite.dispatched()

	// When
	_, err := suite.h.orchestrator.Reassign(suite.ctx, d.ID(), nil)

	// Then
	suite.Require().ErrorIs(err, errs.ErrNoCapacity)
	suite.False(suite.h.driver(suite.T(), d.DriverID()).IsAvailable())
	suite.Equal(order.OutForDelivery, suite.h.order(suite.T(), o.ID()).Status())
}

func (suite *OrchestratorTestSuite) TestReassign_RedispatchesFailedDeliveryOnce() {
	// Given
	o, d := suite.dispatched()
	_, err := suite.h.orchestrator.AdvanceStatus(suite.ctx, d.ID(), delivery.Failed, "flat tyre")
	suite.Require().NoError(err)
	replacement := suite.h.addDriver(suite.T(), 3.5, mustPoint(-25.9650, 32.5810))

	// When
	updated, err := suite.h.orchestrator.Reassign(suite.ctx, d.ID(), nil)

	// Then
	suite.Require().NoError(err)
	suite.Equal(delivery.PickedUp, updated.Status())
	suite.Equal(1, updated.RedispatchCount())
	suite.Empty(updated.FailureReason())
	suite.True(replacement.ID().IsEqual(updated.DriverID()))
	suite.False(suite.h.driver(suite.T(), replacement.ID()).IsAvailable())
	suite.True(suite.h.driver(suite.T(), d.DriverID()).IsAvailable())

	stored := suite.h.order(suite.T(), o.ID())
	suite.Equal(order.OutForDelivery, stored.Status())
	suite.Equal(order.PaymentPending, stored.PaymentStatus())

	// And a second failure cannot be dispatched again
	_, err = suite.h.orchestrator.AdvanceStatus(suite.ctx, d.ID(), delivery.Failed, "flat tyre again")
	suite.Require().NoError(err)
	_, err = suite.h.orchestrator.Reassign(suite.ctx, d.ID(), nil)
	suite.Require().ErrorIs(err, errs.ErrIllegalState)
}

func (suite *OrchestratorTestSuite) TestReassign_CancelledDeliveryIsFinal() {
	// Given
	_, d := suite.dispatched()
	_, err := suite.h.orchestrator.Cancel(suite.ctx, d.ID(), "vendor closed")
	suite.Require().NoError(err)

	// When
	_, err = suite.h.orchestrator.Reassign(suite.ctx, d.ID(), nil)

	// Then
	suite.Require().ErrorIs(err, errs.ErrIllegalState)
}

func (suite *OrchestratorTestSuite) TestChangeOrderStatus_NotifiesCustomerAndVendor() {
	// Given
	o := suite.h.addOrder(suite.T(), order.Pending)

	// When
	updated, err := suite.h.orchestrator.ChangeOrderStatus(suite.ctx, o.ID(), order.Confirmed, "")

	// Then
	suite.Require().NoError(err)
	suite.Equal(order.Confirmed, updated.Status())

	sent := suite.h.sent(0)
	suite.Require().Len(sent, 2)
	suite.Equal(ports.CategoryOrder, sent[0].Category)
	suite.True(o.VendorID().IsEqual(sent[1].RecipientID))
}

func (suite *OrchestratorTestSuite) TestChangeOrderStatus_OutForDeliveryNeedsDelivery() {
	// Given
	o := suite.h.addOrder(suite.T(), order.Ready)

	// When
	_, err := suite.h.orchestrator.ChangeOrderStatus(suite.ctx, o.ID(), order.OutForDelivery, "")

	// Then
	suite.Require().ErrorIs(err, errs.ErrIllegalState)
	suite.Equal(order.Ready, suite.h.order(suite.T(), o.ID()).Status())
}

func (suite *OrchestratorTestSuite) TestChangeOrderStatus_CancelFailsDelivery() {
	// Given
	o, d := suite.dispatched()
	before := len(suite.h.sent(0))

	// When
	updated, err := suite.h.orchestrator.ChangeOrderStatus(suite.ctx, o.ID(), order.Cancelled, "")

	// Then
	suite.Require().NoError(err)
	suite.Equal(order.Cancelled, updated.Status())
	suite.Equal(order.PaymentRefunded, updated.PaymentStatus())

	stored, getErr := suite.h.factory.Create().DeliveryRepository().Get(suite.ctx, d.ID())
	suite.Require().NoError(getErr)
	suite.Equal(delivery.Failed, stored.Status())
	suite.True(stored.Cancelled())
	suite.Equal("order cancelled", stored.FailureReason())
	suite.True(suite.h.driver(suite.T(), d.DriverID()).IsAvailable())

	// Only the order machine notifies
	sent := suite.h.sent(before)
	suite.Require().Len(sent, 1)
	suite.Equal(ports.CategoryOrder, sent[0].Category)
}

func (suite *OrchestratorTestSuite) TestChangeOrderStatus_DeliveredRejectedWhilePickedUp() {
	// Given
	o, d := suite.dispatched()
	before := len(suite.h.sent(0))

	// When
	_, err := suite.h.orchestrator.ChangeOrderStatus(suite.ctx, o.ID(), order.Delivered, "")

	// Then
	suite.Require().ErrorIs(err, errs.ErrInvalidTransition)
	suite.Equal(order.OutForDelivery, suite.h.order(suite.T(), o.ID()).Status())
	stored, getErr := suite.h.factory.Create().DeliveryRepository().Get(suite.ctx, d.ID())
	suite.Require().NoError(getErr)
	suite.Equal(delivery.PickedUp, stored.Status())
	suite.Nil(stored.DeliveredAt())
	suite.Zero(suite.h.driver(suite.T(), d.DriverID()).CompletedDeliveries())
	suite.False(suite.h.driver(suite.T(), d.DriverID()).IsAvailable())
	suite.Len(suite.h.sent(before), 0)
}

func (suite *OrchestratorTestSuite) TestChangeOrderStatus_DeliveredCompletesInTransitDelivery() {
	// Given
	o, d := suite.dispatched()
	_, err := suite.h.orchestrator.AdvanceStatus(suite.ctx, d.ID(), delivery.InTransit, "")
	suite.Require().NoError(err)

	// When
	updated, err := suite.h.orchestrator.ChangeOrderStatus(suite.ctx, o.ID(), order.Delivered, "")

	// Then
	suite.Require().NoError(err)
	suite.Equal(order.Delivered, updated.Status())
	stored, getErr := suite.h.factory.Create().DeliveryRepository().Get(suite.ctx, d.ID())
	suite.Require().NoError(getErr)
	suite.Equal(delivery.Delivered, stored.Status())
	suite.NotNil(stored.DeliveredAt())
	suite.Equal(1, suite.h.driver(suite.T(), d.DriverID()).CompletedDeliveries())
	suite.True(suite.h.driver(suite.T(), d.DriverID()).IsAvailable())
}

func (suite *OrchestratorTestSuite) TestConcurrentCreateDelivery_OneDriverPerDelivery() {
	// Given
	const orders = 8
	ids := make([]kernel.UUID, 0, orders)
	for range orders {
		ids = append(ids, suite.h.addOrder(suite.T(), order.Ready).ID())
	}
	drivers := make([]kernel.UUID, 0, orders-1)
	for i := range orders - 1 {
		lat := -25.9660 + float64(i)*0.0005
		drivers = append(drivers, suite.h.addDriver(suite.T(), 4.0, mustPoint(lat, 32.5790)).ID())
	}

	// When
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []error
	)
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.h.orchestrator.CreateDelivery(suite.ctx, id, nil)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			succeeded++
		}()
	}
	wg.Wait()

	// Then
	suite.Equal(orders-1, succeeded)
	suite.Require().Len(failures, 1)
	suite.Require().ErrorIs(failures[0], errs.ErrNoCapacity)

	deliveries := suite.h.factory.Create().DeliveryRepository()
	for _, id := range drivers {
		active, err := deliveries.FindActiveByDriver(suite.ctx, id)
		suite.Require().NoError(err)
		suite.Len(active, 1)
		suite.False(suite.h.driver(suite.T(), id).IsAvailable())
	}

	pairs, err := deliveries.ListStatusPairs(suite.ctx)
	suite.Require().NoError(err)
	rules := services.NewConsistencyRules()
	for _, record := range pairs {
		suite.True(rules.IsConsistent(record.Pair), "pair of order %s", record.OrderID)
	}
}

func (suite *OrchestratorTestSuite) TestRollbackFailure_IsRecorded() {
	// Given
	h := newHarnessWith(func(f ports.UnitOfWorkFactory) ports.UnitOfWorkFactory {
		return failingRollbackFactory{UnitOfWorkFactory: f}
	}, nil)
	o := h.addOrder(suite.T(), order.Ready)
	h.addDriver(suite.T(), 4.0, mustPoint(-25.9660, 32.5790))
	d, err := h.orchestrator.CreateDelivery(suite.ctx, o.ID(), nil)
	suite.Require().NoError(err)

	// When
	_, err = h.orchestrator.AdvanceStatus(suite.ctx, d.ID(), delivery.PickedUp, "")

	// Then
	suite.Require().ErrorIs(err, errs.ErrInvalidTransition)

	records := h.inconsistencies.Records()
	suite.Require().Len(records, 1)
	suite.Equal("advance_status", records[0].Operation)
	suite.True(o.ID().IsEqual(records[0].OrderID))
	suite.Require().NotNil(records[0].DeliveryID)
	suite.True(d.ID().IsEqual(*records[0].DeliveryID))
	suite.Equal("out_for_delivery", records[0].OrderStatus)
	suite.Equal("picked_up", records[0].DeliveryStatus)
}

func (suite *OrchestratorTestSuite) TestInconsistentPair_IsRejectedAndRecorded() {
	// Given
	o, d := suite.dispatched()
	stale := suite.h.order(suite.T(), o.ID())
	_, err := stale.FollowDelivery(order.Delivered, suite.h.now)
	suite.Require().NoError(err)
	suite.Require().NoError(memory.NewOrderRepository(suite.h.store).ConditionalUpdate(suite.ctx, stale))

	// When
	_, err = suite.h.orchestrator.AdvanceStatus(suite.ctx, d.ID(), delivery.InTransit, "")

	// Then
	suite.Require().ErrorIs(err, errs.ErrIllegalState)
	records := suite.h.inconsistencies.Records()
	suite.Require().Len(records, 1)
	suite.Equal("delivered", records[0].OrderStatus)
	suite.Equal("picked_up", records[0].DeliveryStatus)
}

func (suite *OrchestratorTestSuite) TestNotificationFailure_DoesNotFailOperation() {
	// Given
	h := newHarnessWith(nil, failingSink{})
	o := h.addOrder(suite.T(), order.Ready)
	h.addDriver(suite.T(), 4.0, mustPoint(-25.9660, 32.5790))

	// When
	d, err := h.orchestrator.CreateDelivery(suite.ctx, o.ID(), nil)

	// Then
	suite.Require().NoError(err)
	suite.Equal(delivery.PickedUp, d.Status())
	suite.Equal(order.OutForDelivery, h.order(suite.T(), o.ID()).Status())
}
