package journalrepo

import (
	"context"

	"fulfillment/internal/core/ports"

	"gorm.io/gorm"
)

// GormNotificationStore implements ports.NotificationStore.
type GormNotificationStore struct {
	db *gorm.DB
}

func NewGormNotificationStore(db *gorm.DB) *GormNotificationStore {
	return &GormNotificationStore{db: db}
}

func (s *GormNotificationStore) Save(ctx context.Context, notification ports.Notification) error {
	dto := notificationFromDomain(notification)
	return s.db.WithContext(ctx).Create(&dto).Error
}

// GormInconsistencyRecorder implements ports.InconsistencyRecorder. It must be
// built on the root connection, never on a transaction, so its records
// survive a rollback.
type GormInconsistencyRecorder struct {
	db *gorm.DB
}

func NewGormInconsistencyRecorder(db *gorm.DB) *GormInconsistencyRecorder {
	return &GormInconsistencyRecorder{db: db}
}

func (r *GormInconsistencyRecorder) Record(ctx context.Context, record ports.Inconsistency) error {
	dto := inconsistencyFromDomain(record)
	return r.db.WithContext(ctx).Create(&dto).Error
}
