// Package driverrepo persists drivers with GORM. Availability changes are
// single conditional UPDATE statements so concurrent dispatches never reserve
// the same driver twice.
package driverrepo

import (
	"database/sql/driver"
	"time"

	domain "fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// TagArray stores a list of tags as text[] on PostgreSQL and as the same
// array literal in a text column elsewhere.
type TagArray []string

func (a TagArray) Value() (driver.Value, error) {
	return pq.StringArray(a).Value()
}

func (a *TagArray) Scan(src any) error {
	return (*pq.StringArray)(a).Scan(src)
}

func (TagArray) GormDataType() string {
	return "text"
}

func (TagArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// DriverDTO represents the drivers table.
type DriverDTO struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	LocationLat       float64   `gorm:"not null;index:idx_drivers_location"`
	LocationLng       float64   `gorm:"not null;index:idx_drivers_location"`
	LocationUpdatedAt time.Time `gorm:"not null"`

	IsAvailable bool `gorm:"not null;default:true;index"`
	IsVerified  bool `gorm:"not null;default:false"`

	Rating                 float64 `gorm:"not null;default:0"`
	ReviewCount            int     `gorm:"not null;default:0"`
	TotalDeliveries        int     `gorm:"not null;default:0"`
	CompletedDeliveries    int     `gorm:"not null;default:0"`
	AverageDeliveryMinutes float64 `gorm:"not null;default:0"`

	DeliveryAreas          TagArray
	AcceptedPaymentMethods TagArray
}

func (DriverDTO) TableName() string {
	return "drivers"
}

func fromDomain(d *domain.Driver) DriverDTO {
	return DriverDTO{
		ID:                     d.ID().Bytes(),
		UserID:                 d.UserID().Bytes(),
		LocationLat:            d.Location().Lat(),
		LocationLng:            d.Location().Lng(),
		LocationUpdatedAt:      d.LocationUpdatedAt(),
		IsAvailable:            d.IsAvailable(),
		IsVerified:             d.IsVerified(),
		Rating:                 d.Rating(),
		ReviewCount:            d.ReviewCount(),
		TotalDeliveries:        d.TotalDeliveries(),
		CompletedDeliveries:    d.CompletedDeliveries(),
		AverageDeliveryMinutes: d.AverageDeliveryMinutes(),
		DeliveryAreas:          d.DeliveryAreas(),
		AcceptedPaymentMethods: d.AcceptedPaymentMethods(),
	}
}

func toDomain(dto DriverDTO) (*domain.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	userID, err := kernel.UUIDFromBytes(dto.UserID[:])
	if err != nil {
		return nil, err
	}
	location, err := kernel.NewGeoPoint(dto.LocationLat, dto.LocationLng)
	if err != nil {
		return nil, err
	}

	return domain.RestoreDriver(
		id, userID,
		domain.Position{Location: location, UpdatedAt: dto.LocationUpdatedAt.UTC()},
		domain.Availability{IsAvailable: dto.IsAvailable, IsVerified: dto.IsVerified},
		domain.Stats{
			Rating:                 dto.Rating,
			ReviewCount:            dto.ReviewCount,
			TotalDeliveries:        dto.TotalDeliveries,
			CompletedDeliveries:    dto.CompletedDeliveries,
			AverageDeliveryMinutes: dto.AverageDeliveryMinutes,
		},
		dto.DeliveryAreas, dto.AcceptedPaymentMethods,
	)
}
