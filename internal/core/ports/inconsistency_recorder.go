package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// Inconsistency documents an order/delivery pair that may violate the status
// pairing rules, either because a rollback failed or because reconciliation
// found it.
type Inconsistency struct {
	OrderID        kernel.UUID
	DeliveryID     *kernel.UUID
	OrderStatus    string
	DeliveryStatus string
	Operation      string
	Detail         string
	DetectedAt     time.Time
}

// InconsistencyRecorder stores inconsistency records outside of any unit of
// work so they survive a failed transaction.
type InconsistencyRecorder interface {
	Record(ctx context.Context, record Inconsistency) error
}
