package queries

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetAvailableDriversQueryIsNotConstructed = errors.New(
		"GetAvailableDriversQuery must be created via NewGetAvailableDriversQuery constructor",
	)
)

// GetAvailableDriversQuery lists the drivers dispatch would consider for an
// origin, in dispatch preference order.
//
// Example:
//
//	query, err := NewGetAvailableDriversQuery(vendorLocation, "Baixa", 5000, 10)
//	drivers, err := NewGetAvailableDriversQueryHandler(uowFactory).Handle(ctx, query)
type GetAvailableDriversQuery struct {
	origin            kernel.GeoPoint
	areaTag           string
	maxDistanceMeters float64
	limit             int

	guard guard.ConstructorGuard
}

// NewGetAvailableDriversQuery validates the search. A limit of zero returns
// every candidate.
func NewGetAvailableDriversQuery(
	origin kernel.GeoPoint,
	areaTag string,
	maxDistanceMeters float64,
	limit int,
) (GetAvailableDriversQuery, error) {
	areaTag = strings.TrimSpace(areaTag)

	var errsList []error
	if err := origin.Validate(); err != nil {
		errsList = append(errsList, err)
	}
	if areaTag == "" {
		errsList = append(errsList, errs.NewValueIsRequiredError("areaTag"))
	}
	if maxDistanceMeters <= 0 {
		errsList = append(errsList, errs.NewValueIsOutOfRangeError("maxDistanceMeters", maxDistanceMeters, 0, "+Inf"))
	}
	if limit < 0 {
		errsList = append(errsList, errs.NewValueIsOutOfRangeError("limit", limit, 0, "+Inf"))
	}
	if err := errors.Join(errsList...); err != nil {
		return GetAvailableDriversQuery{}, err
	}

	return GetAvailableDriversQuery{
		origin:            origin,
		areaTag:           areaTag,
		maxDistanceMeters: maxDistanceMeters,
		limit:             limit,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (q GetAvailableDriversQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableDriversQueryIsNotConstructed)
}

func (q GetAvailableDriversQuery) Origin() kernel.GeoPoint    { return q.origin }
func (q GetAvailableDriversQuery) AreaTag() string            { return q.areaTag }
func (q GetAvailableDriversQuery) MaxDistanceMeters() float64 { return q.maxDistanceMeters }
func (q GetAvailableDriversQuery) Limit() int                 { return q.limit }

// AvailableDriverView is one dispatch candidate.
type AvailableDriverView struct {
	ID                     kernel.UUID
	Location               Point
	DistanceMeters         float64
	Rating                 float64
	CompletedDeliveries    int
	AverageDeliveryMinutes float64
	DeliveryAreas          []string
	AcceptedPaymentMethods []string
}
