package driverrepo

import (
	"context"
	"errors"
	"fmt"

	domain "fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDriverRepository implements ports.DriverRepository using GORM.
type GormDriverRepository struct {
	db *gorm.DB
}

func NewGormDriverRepository(db *gorm.DB) *GormDriverRepository {
	return &GormDriverRepository{db: db}
}

func (r *GormDriverRepository) Add(ctx context.Context, aggregate *domain.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewConflictError("driver", aggregate.ID().String())
		}
		return err
	}
	return nil
}

func (r *GormDriverRepository) Get(ctx context.Context, id kernel.UUID) (*domain.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DriverDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("driver", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// FindAvailableWithin narrows the search with the location index. Exact
// distance and area filtering happen in the caller.
func (r *GormDriverRepository) FindAvailableWithin(ctx context.Context, box kernel.BoundingBox) ([]*domain.Driver, error) {
	var dtos []DriverDTO
	err := r.db.WithContext(ctx).
		Where("is_available = ? AND is_verified = ?", true, true).
		Where("location_lat BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("location_lng BETWEEN ? AND ?", box.MinLng, box.MaxLng).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	drivers := make([]*domain.Driver, 0, len(dtos))
	for _, dto := range dtos {
		d, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}

// Claim flips availability off and counts the delivery in one statement.
func (r *GormDriverRepository) Claim(ctx context.Context, id kernel.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&DriverDTO{}).
		Where("id = ? AND is_available = ? AND is_verified = ?", id.Bytes(), true, true).
		Updates(map[string]any{
			"is_available":     false,
			"total_deliveries": gorm.Expr("total_deliveries + 1"),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		if err := r.requireExists(ctx, id); err != nil {
			return err
		}
		return errs.NewDriverUnavailableError(id.String())
	}
	return nil
}

func (r *GormDriverRepository) Release(ctx context.Context, id kernel.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&DriverDTO{}).
		Where("id = ?", id.Bytes()).
		Update("is_available", true)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.requireExists(ctx, id)
	}
	return nil
}

// RecordCompletion folds minutes into the running mean. Every right-hand side
// reads the row as it was before the statement.
func (r *GormDriverRepository) RecordCompletion(ctx context.Context, id kernel.UUID, minutes float64) error {
	if minutes < 0 {
		return errs.NewValueIsOutOfRangeError("minutes", minutes, 0, "+Inf")
	}

	result := r.db.WithContext(ctx).
		Model(&DriverDTO{}).
		Where("id = ? AND completed_deliveries < total_deliveries", id.Bytes()).
		Updates(map[string]any{
			"average_delivery_minutes": gorm.Expr(
				"(average_delivery_minutes * completed_deliveries + ?) / (completed_deliveries + 1)", minutes),
			"completed_deliveries": gorm.Expr("completed_deliveries + 1"),
			"is_available":         true,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		if err := r.requireExists(ctx, id); err != nil {
			return err
		}
		return errs.NewIllegalStateError("driver", id.String(), "all deliveries completed", "complete delivery")
	}
	return nil
}

func (r *GormDriverRepository) UpdateLocation(ctx context.Context, aggregate *domain.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&DriverDTO{}).
		Where("id = ?", aggregate.ID().Bytes()).
		Updates(map[string]any{
			"location_lat":        aggregate.Location().Lat(),
			"location_lng":        aggregate.Location().Lng(),
			"location_updated_at": aggregate.LocationUpdatedAt(),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.requireExists(ctx, aggregate.ID())
	}
	return nil
}

func (r *GormDriverRepository) requireExists(ctx context.Context, id kernel.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&DriverDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return fmt.Errorf("check driver %s: %w", id, err)
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("driver", id.String())
	}
	return nil
}
