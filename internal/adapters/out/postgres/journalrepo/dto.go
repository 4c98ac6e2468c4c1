// Package journalrepo stores the append-only records of the engine:
// delivered notifications and detected order/delivery inconsistencies.
package journalrepo

import (
	"time"

	"fulfillment/internal/core/ports"

	"github.com/google/uuid"
)

// NotificationDTO represents the notifications table.
type NotificationDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index"`
	Category    string    `gorm:"type:varchar(32);not null"`
	Message     string    `gorm:"type:text;not null"`
	SentAt      time.Time `gorm:"not null"`
}

func (NotificationDTO) TableName() string {
	return "notifications"
}

// InconsistencyDTO represents the inconsistencies table.
type InconsistencyDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	DeliveryID     *uuid.UUID `gorm:"type:uuid"`
	OrderStatus    string     `gorm:"type:varchar(32)"`
	DeliveryStatus string     `gorm:"type:varchar(32)"`
	Operation      string     `gorm:"type:varchar(64);not null"`
	Detail         string     `gorm:"type:text"`
	DetectedAt     time.Time  `gorm:"not null;index"`
}

func (InconsistencyDTO) TableName() string {
	return "inconsistencies"
}

func notificationFromDomain(n ports.Notification) NotificationDTO {
	return NotificationDTO{
		ID:          uuid.New(),
		RecipientID: n.RecipientID.Bytes(),
		Category:    string(n.Category),
		Message:     n.Message,
		SentAt:      n.SentAt,
	}
}

func inconsistencyFromDomain(record ports.Inconsistency) InconsistencyDTO {
	var deliveryID *uuid.UUID
	if record.DeliveryID != nil {
		raw := record.DeliveryID.Bytes()
		deliveryID = &raw
	}

	return InconsistencyDTO{
		ID:             uuid.New(),
		OrderID:        record.OrderID.Bytes(),
		DeliveryID:     deliveryID,
		OrderStatus:    record.OrderStatus,
		DeliveryStatus: record.DeliveryStatus,
		Operation:      record.Operation,
		Detail:         record.Detail,
		DetectedAt:     record.DetectedAt,
	}
}
