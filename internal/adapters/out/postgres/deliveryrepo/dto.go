// Package deliveryrepo persists delivery aggregates with GORM.
package deliveryrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DeliveryDTO represents the deliveries table. order_id is unique: an order
// has at most one delivery.
type DeliveryDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	DriverID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status   string    `gorm:"type:varchar(32);not null;index"`

	Current PointDTO `gorm:"embedded;embeddedPrefix:current_"`
	Pickup  PointDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff PointDTO `gorm:"embedded;embeddedPrefix:dropoff_"`

	EstimatedTime   time.Time `gorm:"not null"`
	FailureReason   string    `gorm:"type:text"`
	Cancelled       bool      `gorm:"not null;default:false"`
	RedispatchCount int       `gorm:"not null;default:0"`

	CreatedAt   time.Time `gorm:"not null"`
	DeliveredAt *time.Time

	Version int64 `gorm:"not null;default:0"`
}

func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// PointDTO is an embedded coordinate pair.
type PointDTO struct {
	Lat float64
	Lng float64
}

func pointOf(p kernel.GeoPoint) PointDTO {
	return PointDTO{Lat: p.Lat(), Lng: p.Lng()}
}

func fromDomain(d *delivery.Delivery) DeliveryDTO {
	return DeliveryDTO{
		ID:              d.ID().Bytes(),
		OrderID:         d.OrderID().Bytes(),
		DriverID:        d.DriverID().Bytes(),
		Status:          d.Status().String(),
		Current:         pointOf(d.CurrentLocation()),
		Pickup:          pointOf(d.PickupLocation()),
		Dropoff:         pointOf(d.DropoffLocation()),
		EstimatedTime:   d.EstimatedTime(),
		FailureReason:   d.FailureReason(),
		Cancelled:       d.Cancelled(),
		RedispatchCount: d.RedispatchCount(),
		CreatedAt:       d.CreatedAt(),
		DeliveredAt:     d.DeliveredAt(),
		Version:         d.Version(),
	}
}

func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	driverID, err := kernel.UUIDFromBytes(dto.DriverID[:])
	if err != nil {
		return nil, err
	}

	current, err := kernel.NewGeoPoint(dto.Current.Lat, dto.Current.Lng)
	if err != nil {
		return nil, err
	}
	pickup, err := kernel.NewGeoPoint(dto.Pickup.Lat, dto.Pickup.Lng)
	if err != nil {
		return nil, err
	}
	dropoff, err := kernel.NewGeoPoint(dto.Dropoff.Lat, dto.Dropoff.Lng)
	if err != nil {
		return nil, err
	}

	status, err := delivery.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var deliveredAt *time.Time
	if dto.DeliveredAt != nil {
		at := dto.DeliveredAt.UTC()
		deliveredAt = &at
	}

	return delivery.RestoreDelivery(
		id, orderID, driverID,
		delivery.Route{Pickup: pickup, Dropoff: dropoff, Current: current},
		status,
		delivery.Outcome{FailureReason: dto.FailureReason, Cancelled: dto.Cancelled, RedispatchCount: dto.RedispatchCount},
		delivery.Timeline{CreatedAt: dto.CreatedAt.UTC(), EstimatedTime: dto.EstimatedTime.UTC(), DeliveredAt: deliveredAt},
		dto.Version,
	)
}
