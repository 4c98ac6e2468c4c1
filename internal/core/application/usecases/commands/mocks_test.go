package commands_test

import (
	"context"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ConditionalUpdate(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) FindReadyWithoutDelivery(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

type MockDeliveryRepository struct{ mock.Mock }

func (m *MockDeliveryRepository) Add(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*delivery.Delivery)
	return d, args.Error(1)
}

func (m *MockDeliveryRepository) FindByOrder(ctx context.Context, orderID kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, orderID)
	d, _ := args.Get(0).(*delivery.Delivery)
	return d, args.Error(1)
}

func (m *MockDeliveryRepository) FindActiveByDriver(ctx context.Context, driverID kernel.UUID) ([]*delivery.Delivery, error) {
	args := m.Called(ctx, driverID)
	deliveries, _ := args.Get(0).([]*delivery.Delivery)
	return deliveries, args.Error(1)
}

func (m *MockDeliveryRepository) ConditionalUpdate(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) ListStatusPairs(ctx context.Context) ([]ports.StatusPairRecord, error) {
	args := m.Called(ctx)
	pairs, _ := args.Get(0).([]ports.StatusPairRecord)
	return pairs, args.Error(1)
}

type MockDriverRepository struct{ mock.Mock }

func (m *MockDriverRepository) Add(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*driver.Driver)
	return d, args.Error(1)
}

func (m *MockDriverRepository) FindAvailableWithin(ctx context.Context, box kernel.BoundingBox) ([]*driver.Driver, error) {
	args := m.Called(ctx, box)
	drivers, _ := args.Get(0).([]*driver.Driver)
	return drivers, args.Error(1)
}

func (m *MockDriverRepository) Claim(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDriverRepository) Release(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDriverRepository) RecordCompletion(ctx context.Context, id kernel.UUID, minutes float64) error {
	args := m.Called(ctx, id, minutes)
	return args.Error(0)
}

func (m *MockDriverRepository) UpdateLocation(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockDriverUoW struct{ mock.Mock }

func (m *MockDriverUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDriverUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDriverUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDriverUoW) DriverRepository() ports.DriverRepository {
	args := m.Called()
	return args.Get(0).(ports.DriverRepository)
}

func (m *MockDriverUoW) DeliveryRepository() ports.DeliveryRepository {
	args := m.Called()
	return args.Get(0).(ports.DeliveryRepository)
}

type MockDriverUoWFactory struct{ mock.Mock }

func (m *MockDriverUoWFactory) Create() commands.DriverUoW {
	args := m.Called()
	return args.Get(0).(commands.DriverUoW)
}

type MockFulfillment struct{ mock.Mock }

func (m *MockFulfillment) CreateDelivery(ctx context.Context, orderID kernel.UUID, driverID *kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, orderID, driverID)
	d, _ := args.Get(0).(*delivery.Delivery)
	return d, args.Error(1)
}

func (m *MockFulfillment) AdvanceStatus(
	ctx context.Context, deliveryID kernel.UUID, status delivery.Status, reason string,
) (*delivery.Delivery, error) {
	args := m.Called(ctx, deliveryID, status, reason)
	d, _ := args.Get(0).(*delivery.Delivery)
	return d, args.Error(1)
}

func (m *MockFulfillment) Cancel(ctx context.Context, deliveryID kernel.UUID, reason string) (*delivery.Delivery, error) {
	args := m.Called(ctx, deliveryID, reason)
	d, _ := args.Get(0).(*delivery.Delivery)
	return d, args.Error(1)
}

func (m *MockFulfillment) Reassign(ctx context.Context, deliveryID kernel.UUID, driverID *kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, deliveryID, driverID)
	d, _ := args.Get(0).(*delivery.Delivery)
	return d, args.Error(1)
}

func (m *MockFulfillment) ChangeOrderStatus(
	ctx context.Context, orderID kernel.UUID, status order.Status, reason string,
) (*order.Order, error) {
	args := m.Called(ctx, orderID, status, reason)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func point(lat, lng float64) kernel.GeoPoint {
	p, err := kernel.NewGeoPoint(lat, lng)
	if err != nil {
		panic(err)
	}
	return p
}
