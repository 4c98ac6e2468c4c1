package queries

import (
	"context"

	"fulfillment/internal/core/ports"
)

type GetDeliveryQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetDeliveryQueryHandler(uowFactory ports.UnitOfWorkFactory) GetDeliveryQueryHandler {
	return GetDeliveryQueryHandler{uowFactory: uowFactory}
}

func (h GetDeliveryQueryHandler) Handle(ctx context.Context, query GetDeliveryQuery) (DeliveryView, error) {
	if err := query.Validate(); err != nil {
		return DeliveryView{}, err
	}

	d, err := h.uowFactory.Create().DeliveryRepository().Get(ctx, query.DeliveryID())
	if err != nil {
		return DeliveryView{}, err
	}

	return NewDeliveryView(d), nil
}
