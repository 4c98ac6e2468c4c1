package http

import (
	"fulfillment/internal/api"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

func toKernelID(id openapi_types.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

func toKernelIDs(first, second openapi_types.UUID) (kernel.UUID, kernel.UUID, error) {
	a, err := toKernelID(first)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	b, err := toKernelID(second)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	return a, b, nil
}

func toOptionalKernelID(id *openapi_types.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	value, err := toKernelID(*id)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func toGeoPoint(p api.Point) (kernel.GeoPoint, error) {
	return kernel.NewGeoPoint(p.Lat, p.Lng)
}

func toPoint(p queries.Point) api.Point {
	return api.Point{Lat: p.Lat, Lng: p.Lng}
}

func toOrderResponse(view queries.GetOrderQueryResponse) api.Order {
	items := make([]api.OrderItem, len(view.Items))
	for i, item := range view.Items {
		items[i] = api.OrderItem{
			ProductId: item.ProductID.Bytes(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
	}

	response := api.Order{
		Id:            view.ID.Bytes(),
		CustomerId:    view.CustomerID.Bytes(),
		VendorId:      view.VendorID.Bytes(),
		Status:        view.Status,
		PaymentStatus: view.PaymentStatus,
		Items:         items,
		DeliveryAddress: api.Address{
			Street:       view.DeliveryAddress.Street,
			Neighborhood: view.DeliveryAddress.Neighborhood,
			City:         view.DeliveryAddress.City,
			Location:     toPoint(view.DeliveryAddress.Location),
		},
		PickupLocation:        toPoint(view.PickupLocation),
		Subtotal:              view.Subtotal,
		DeliveryFee:           view.DeliveryFee,
		Tax:                   view.Tax,
		Total:                 view.Total,
		EstimatedDeliveryTime: view.EstimatedDeliveryTime,
		ActualDeliveryTime:    view.ActualDeliveryTime,
		CreatedAt:             view.CreatedAt,
	}

	if view.Delivery != nil {
		response.Delivery = &api.DeliverySummary{
			Id:            view.Delivery.ID.Bytes(),
			DriverId:      view.Delivery.DriverID.Bytes(),
			Status:        view.Delivery.Status,
			EstimatedTime: view.Delivery.EstimatedTime,
		}
	}

	return response
}

func toDeliveryResponse(d *delivery.Delivery) api.Delivery {
	return toDeliveryViewResponse(queries.NewDeliveryView(d))
}

func toDeliveryViewResponse(view queries.DeliveryView) api.Delivery {
	return api.Delivery{
		Id:              view.ID.Bytes(),
		OrderId:         view.OrderID.Bytes(),
		DriverId:        view.DriverID.Bytes(),
		Status:          view.Status,
		CurrentLocation: toPoint(view.CurrentLocation),
		PickupLocation:  toPoint(view.PickupLocation),
		DropoffLocation: toPoint(view.DropoffLocation),
		EstimatedTime:   view.EstimatedTime,
		FailureReason:   view.FailureReason,
		Cancelled:       view.Cancelled,
		RedispatchCount: view.RedispatchCount,
		CreatedAt:       view.CreatedAt,
		DeliveredAt:     view.DeliveredAt,
	}
}
