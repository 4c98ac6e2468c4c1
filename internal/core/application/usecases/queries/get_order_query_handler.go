package queries

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

type GetOrderQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetOrderQueryHandler(uowFactory ports.UnitOfWorkFactory) GetOrderQueryHandler {
	return GetOrderQueryHandler{uowFactory: uowFactory}
}

// Handle returns *errs.ObjectNotFoundError for unknown orders.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	uow := h.uowFactory.Create()

	o, err := uow.OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	response := newOrderResponse(o)

	d, err := uow.DeliveryRepository().FindByOrder(ctx, o.ID())
	switch {
	case err == nil:
		response.Delivery = newDeliverySummary(d)
	case errors.Is(err, errs.ErrObjectNotFound):
	default:
		return GetOrderQueryResponse{}, err
	}

	return response, nil
}

func newOrderResponse(o *order.Order) GetOrderQueryResponse {
	items := make([]OrderItemView, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, OrderItemView{
			ProductID: item.ProductID(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice(),
			LineTotal: item.LineTotal(),
		})
	}

	address := o.DeliveryAddress()
	totals := o.Totals()

	return GetOrderQueryResponse{
		ID:            o.ID(),
		CustomerID:    o.CustomerID(),
		VendorID:      o.VendorID(),
		Status:        o.Status().String(),
		PaymentStatus: o.PaymentStatus().String(),
		Items:         items,
		DeliveryAddress: AddressView{
			Street:       address.Street(),
			Neighborhood: address.Neighborhood(),
			City:         address.City(),
			Location:     pointOf(address.Location()),
		},
		PickupLocation:        pointOf(o.PickupLocation()),
		Subtotal:              totals.Subtotal(),
		DeliveryFee:           totals.Fee(),
		Tax:                   totals.Tax(),
		Total:                 totals.Total(),
		EstimatedDeliveryTime: o.EstimatedDeliveryTime(),
		ActualDeliveryTime:    o.ActualDeliveryTime(),
		CreatedAt:             o.CreatedAt(),
	}
}

func newDeliverySummary(d *delivery.Delivery) *DeliverySummary {
	return &DeliverySummary{
		ID:            d.ID(),
		DriverID:      d.DriverID(),
		Status:        d.Status().String(),
		EstimatedTime: d.EstimatedTime(),
	}
}
