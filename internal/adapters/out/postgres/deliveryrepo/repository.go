package deliveryrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDeliveryRepository implements ports.DeliveryRepository using GORM.
type GormDeliveryRepository struct {
	db *gorm.DB
}

func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// Add saves a new delivery. A second delivery for the same order violates the
// unique order_id index and yields *errs.ConflictError.
func (r *GormDeliveryRepository) Add(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	var existing int64
	if err := r.db.WithContext(ctx).Model(&DeliveryDTO{}).
		Where("order_id = ?", aggregate.OrderID().Bytes()).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return errs.NewConflictError("delivery for order", aggregate.OrderID().String())
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewConflictError("delivery for order", aggregate.OrderID().String())
		}
		return err
	}
	return nil
}

func (r *GormDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, "delivery", id, "id = ?", id.Bytes())
}

func (r *GormDeliveryRepository) FindByOrder(ctx context.Context, orderID kernel.UUID) (*delivery.Delivery, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, "delivery for order", orderID, "order_id = ?", orderID.Bytes())
}

// FindActiveByDriver returns the picked up or in transit deliveries of a
// driver, oldest first.
func (r *GormDeliveryRepository) FindActiveByDriver(ctx context.Context, driverID kernel.UUID) ([]*delivery.Delivery, error) {
	var dtos []DeliveryDTO
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND status IN ?", driverID.Bytes(),
			[]string{delivery.PickedUp.String(), delivery.InTransit.String()}).
		Order("created_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	deliveries := make([]*delivery.Delivery, 0, len(dtos))
	for _, dto := range dtos {
		d, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

// ConditionalUpdate writes the mutable state of the delivery when the stored
// version still matches.
func (r *GormDeliveryRepository) ConditionalUpdate(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&DeliveryDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version).
		Updates(map[string]any{
			"driver_id":        dto.DriverID,
			"status":           dto.Status,
			"current_lat":      dto.Current.Lat,
			"current_lng":      dto.Current.Lng,
			"estimated_time":   dto.EstimatedTime,
			"failure_reason":   dto.FailureReason,
			"cancelled":        dto.Cancelled,
			"redispatch_count": dto.RedispatchCount,
			"delivered_at":     dto.DeliveredAt,
			"version":          gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&DeliveryDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("delivery", aggregate.ID().String())
		}
		return errs.NewConflictError("delivery", aggregate.ID().String())
	}

	aggregate.MarkPersisted()
	return nil
}

type statusPairRow struct {
	OrderID        uuid.UUID
	OrderStatus    string
	DeliveryID     *uuid.UUID
	DeliveryStatus *string
}

// ListStatusPairs joins every non-pending order with its delivery, if any.
func (r *GormDeliveryRepository) ListStatusPairs(ctx context.Context) ([]ports.StatusPairRecord, error) {
	var rows []statusPairRow
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("orders.id AS order_id, orders.status AS order_status, "+
			"deliveries.id AS delivery_id, deliveries.status AS delivery_status").
		Joins("LEFT JOIN deliveries ON deliveries.order_id = orders.id").
		Where("orders.status <> ?", order.Pending.String()).
		Order("orders.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]ports.StatusPairRecord, 0, len(rows))
	for _, row := range rows {
		record, convErr := row.toRecord()
		if convErr != nil {
			return nil, convErr
		}
		records = append(records, record)
	}
	return records, nil
}

func (row statusPairRow) toRecord() (ports.StatusPairRecord, error) {
	orderID, err := kernel.UUIDFromBytes(row.OrderID[:])
	if err != nil {
		return ports.StatusPairRecord{}, err
	}
	orderStatus, err := order.ParseStatus(row.OrderStatus)
	if err != nil {
		return ports.StatusPairRecord{}, err
	}

	record := ports.StatusPairRecord{
		OrderID: orderID,
		Pair:    services.StatusPair{Order: orderStatus},
	}
	if row.DeliveryID == nil || row.DeliveryStatus == nil {
		return record, nil
	}

	deliveryID, err := kernel.UUIDFromBytes(row.DeliveryID[:])
	if err != nil {
		return ports.StatusPairRecord{}, err
	}
	deliveryStatus, err := delivery.ParseStatus(*row.DeliveryStatus)
	if err != nil {
		return ports.StatusPairRecord{}, err
	}

	record.DeliveryID = &deliveryID
	record.Pair.Delivery = deliveryStatus
	record.Pair.HasDelivery = true
	return record, nil
}

func (r *GormDeliveryRepository) first(ctx context.Context, param string, id kernel.UUID, query string, args ...any) (*delivery.Delivery, error) {
	var dto DeliveryDTO
	if err := r.db.WithContext(ctx).Where(query, args...).First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(param, id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}
