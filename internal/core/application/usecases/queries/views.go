package queries

import (
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
)

// Point is a coordinate pair in a response.
type Point struct {
	Lat float64
	Lng float64
}

func pointOf(p kernel.GeoPoint) Point {
	return Point{Lat: p.Lat(), Lng: p.Lng()}
}

// DeliveryView is the read model of a delivery.
type DeliveryView struct {
	ID              kernel.UUID
	OrderID         kernel.UUID
	DriverID        kernel.UUID
	Status          string
	CurrentLocation Point
	PickupLocation  Point
	DropoffLocation Point
	EstimatedTime   time.Time
	FailureReason   string
	Cancelled       bool
	RedispatchCount int
	CreatedAt       time.Time
	DeliveredAt     *time.Time
}

// NewDeliveryView maps a delivery aggregate to its read model.
func NewDeliveryView(d *delivery.Delivery) DeliveryView {
	return DeliveryView{
		ID:              d.ID(),
		OrderID:         d.OrderID(),
		DriverID:        d.DriverID(),
		Status:          d.Status().String(),
		CurrentLocation: pointOf(d.CurrentLocation()),
		PickupLocation:  pointOf(d.PickupLocation()),
		DropoffLocation: pointOf(d.DropoffLocation()),
		EstimatedTime:   d.EstimatedTime(),
		FailureReason:   d.FailureReason(),
		Cancelled:       d.Cancelled(),
		RedispatchCount: d.RedispatchCount(),
		CreatedAt:       d.CreatedAt(),
		DeliveredAt:     d.DeliveredAt(),
	}
}
