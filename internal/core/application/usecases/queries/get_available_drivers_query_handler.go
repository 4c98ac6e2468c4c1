package queries

import (
	"context"

	"fulfillment/internal/core/application/fulfillment"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// GetAvailableDriversQueryHandler ranks drivers with the same geo index the
// dispatch engine uses, so the listing matches what dispatch would pick.
type GetAvailableDriversQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	index      *fulfillment.GeoIndex
}

func NewGetAvailableDriversQueryHandler(uowFactory ports.UnitOfWorkFactory) GetAvailableDriversQueryHandler {
	return GetAvailableDriversQueryHandler{
		uowFactory: uowFactory,
		index:      fulfillment.NewGeoIndex(),
	}
}

func (h GetAvailableDriversQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableDriversQuery,
) ([]AvailableDriverView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	candidates, err := h.index.FindCandidates(ctx, h.uowFactory.Create().DriverRepository(), services.CandidateQuery{
		Origin:            query.Origin(),
		AreaTag:           query.AreaTag(),
		MaxDistanceMeters: query.MaxDistanceMeters(),
		Limit:             query.Limit(),
	})
	if err != nil {
		return nil, err
	}

	views := make([]AvailableDriverView, 0, len(candidates))
	for _, c := range candidates {
		views = append(views, AvailableDriverView{
			ID:                     c.Driver.ID(),
			Location:               pointOf(c.Driver.Location()),
			DistanceMeters:         c.DistanceMeters,
			Rating:                 c.Driver.Rating(),
			CompletedDeliveries:    c.Driver.CompletedDeliveries(),
			AverageDeliveryMinutes: c.Driver.AverageDeliveryMinutes(),
			DeliveryAreas:          c.Driver.DeliveryAreas(),
			AcceptedPaymentMethods: c.Driver.AcceptedPaymentMethods(),
		})
	}

	return views, nil
}
