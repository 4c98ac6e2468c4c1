// Package notify delivers customer and vendor notifications off the request
// path. QueueSink implements ports.NotificationSink with a bounded in-process
// queue drained by a fixed pool of workers into a ports.NotificationStore.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/metrics"
)

var (
	// ErrQueueFull is returned by Enqueue when every queue slot is taken.
	ErrQueueFull = errors.New("notification queue is full")

	// ErrQueueClosed is returned by Enqueue after Stop.
	ErrQueueClosed = errors.New("notification queue is closed")
)

const (
	defaultQueueSize   = 1024
	defaultWorkers     = 2
	defaultSaveTimeout = 5 * time.Second
)

// Config sizes the queue and its worker pool. Zero values fall back to
// defaults.
type Config struct {
	QueueSize   int
	Workers     int
	SaveTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = defaultSaveTimeout
	}
	return c
}

// QueueSink buffers notifications and stores them asynchronously. Enqueue
// never waits for a worker.
type QueueSink struct {
	store  ports.NotificationStore
	config Config
	queue  chan ports.Notification
	logger *slog.Logger

	mu      sync.RWMutex
	stopped bool

	start sync.Once
	wg    sync.WaitGroup
}

func NewQueueSink(store ports.NotificationStore, config Config, logger *slog.Logger) *QueueSink {
	config = config.withDefaults()
	return &QueueSink{
		store:  store,
		config: config,
		queue:  make(chan ports.Notification, config.QueueSize),
		logger: logger.With("component", "notification_queue"),
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (s *QueueSink) Start() {
	s.start.Do(func() {
		for range s.config.Workers {
			s.wg.Add(1)
			go s.work()
		}
		s.logger.Info("Notification workers started",
			"workers", s.config.Workers, "queue_size", s.config.QueueSize)
	})
}

// Enqueue accepts a notification for later storage. It returns ErrQueueFull
// instead of blocking when the queue has no free slot.
func (s *QueueSink) Enqueue(_ context.Context, notification ports.Notification) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stopped {
		return ErrQueueClosed
	}

	select {
	case s.queue <- notification:
		metrics.NotificationQueueDepth.Inc()
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new notifications and waits until the workers have drained
// the queue or ctx is done.
func (s *QueueSink) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.queue)
	}
	s.mu.Unlock()

	// Workers that were never started still have to drain what was accepted.
	s.Start()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Notification workers stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *QueueSink) work() {
	defer s.wg.Done()

	for notification := range s.queue {
		metrics.NotificationQueueDepth.Dec()
		s.save(notification)
	}
}

func (s *QueueSink) save(notification ports.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.SaveTimeout)
	defer cancel()

	if err := s.store.Save(ctx, notification); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		s.logger.WarnContext(ctx, "Failed to store notification",
			"recipient_id", notification.RecipientID.String(),
			"category", string(notification.Category),
			"error", err)
	}
}
