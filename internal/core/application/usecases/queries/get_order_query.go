package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
)

// GetOrderQuery retrieves one order together with the summary of its
// delivery.
//
// Example:
//
//	query, err := NewGetOrderQuery(orderID)
//	if err != nil {
//	    return err
//	}
//	view, err := NewGetOrderQueryHandler(uowFactory).Handle(ctx, query)
type GetOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// OrderItemView is one product line of an order.
type OrderItemView struct {
	ProductID kernel.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// AddressView is the delivery address of an order.
type AddressView struct {
	Street       string
	Neighborhood string
	City         string
	Location     Point
}

// DeliverySummary is the part of a delivery shown with its order.
type DeliverySummary struct {
	ID            kernel.UUID
	DriverID      kernel.UUID
	Status        string
	EstimatedTime time.Time
}

// GetOrderQueryResponse is the read model of an order. Delivery is nil until
// the order has been dispatched.
type GetOrderQueryResponse struct {
	ID                    kernel.UUID
	CustomerID            kernel.UUID
	VendorID              kernel.UUID
	Status                string
	PaymentStatus         string
	Items                 []OrderItemView
	DeliveryAddress       AddressView
	PickupLocation        Point
	Subtotal              decimal.Decimal
	DeliveryFee           decimal.Decimal
	Tax                   decimal.Decimal
	Total                 decimal.Decimal
	EstimatedDeliveryTime *time.Time
	ActualDeliveryTime    *time.Time
	CreatedAt             time.Time
	Delivery              *DeliverySummary
}
