package memory

import (
	"context"
	"slices"
	"sync"

	"fulfillment/internal/core/ports"
)

// InconsistencyLog is an in-memory ports.InconsistencyRecorder.
type InconsistencyLog struct {
	mu      sync.Mutex
	records []ports.Inconsistency
}

func NewInconsistencyLog() *InconsistencyLog {
	return &InconsistencyLog{}
}

func (l *InconsistencyLog) Record(_ context.Context, record ports.Inconsistency) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, record)
	return nil
}

// Records returns a copy of everything recorded so far, oldest first.
func (l *InconsistencyLog) Records() []ports.Inconsistency {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.records)
}

// NotificationLog is an in-memory ports.NotificationStore.
type NotificationLog struct {
	mu            sync.Mutex
	notifications []ports.Notification
}

func NewNotificationLog() *NotificationLog {
	return &NotificationLog{}
}

func (l *NotificationLog) Save(_ context.Context, notification ports.Notification) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.notifications = append(l.notifications, notification)
	return nil
}

// Notifications returns a copy of the saved notifications in arrival order.
func (l *NotificationLog) Notifications() []ports.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.notifications)
}

// Enqueue stores the notification synchronously, which makes the log usable
// as a ports.NotificationSink in tests.
func (l *NotificationLog) Enqueue(ctx context.Context, notification ports.Notification) error {
	return l.Save(ctx, notification)
}
