package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/jobsnearby/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer is the slice of the RabbitMQ client the worker reads from
type Consumer interface {
	Consume(consumerTag string, prefetchCount int) (<-chan amqp.Delivery, error)
	NotifyClose() <-chan *amqp.Error
}

// Store persists notifications
type Store interface {
	InsertNotifications(ctx context.Context, notifications []domain.Notification) (int, error)
	PurgeReadNotifications(ctx context.Context, olderThan time.Time) (int64, error)
}

// CacheInvalidator drops cached search pages
type CacheInvalidator interface {
	Invalidate(ctx context.Context) (int, error)
}

// Config holds worker configuration
type Config struct {
	Logger                *slog.Logger
	Consumer              Consumer
	Store                 Store
	Cache                 CacheInvalidator
	WorkerID              string
	Concurrency           int
	PrefetchCount         int
	JobTimeout            time.Duration
	NotificationRetention time.Duration
	PurgeInterval         time.Duration
}

// Worker consumes domain events and turns them into notifications and
// cache invalidations
type Worker struct {
	logger                *slog.Logger
	consumer              Consumer
	store                 Store
	cache                 CacheInvalidator
	workerID              string
	concurrency           int
	prefetchCount         int
	jobTimeout            time.Duration
	notificationRetention time.Duration
	purgeInterval         time.Duration

	jobsChan chan *domain.EventMessage
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	purger   *purgeScheduler
	now      func() time.Time
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = concurrency
	}

	return &Worker{
		logger:                cfg.Logger,
		consumer:              cfg.Consumer,
		store:                 cfg.Store,
		cache:                 cfg.Cache,
		workerID:              cfg.WorkerID,
		concurrency:           concurrency,
		prefetchCount:         prefetch,
		jobTimeout:            cfg.JobTimeout,
		notificationRetention: cfg.NotificationRetention,
		purgeInterval:         cfg.PurgeInterval,
		jobsChan:              make(chan *domain.EventMessage, concurrency),
		stopChan:              make(chan struct{}),
		purger:                newPurgeScheduler(cfg.PurgeInterval),
		now:                   time.Now,
	}
}

// ErrConnectionLost is returned by Start when the broker closes the channel
var ErrConnectionLost = errors.New("rabbitmq connection lost")

// Start subscribes to the queue, spawns the pool and dispatches deliveries
// until ctx is canceled, Stop is called or the broker goes away.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)

	if w.purgeInterval > 0 && w.notificationRetention > 0 {
		if err := w.purger.start(func() { w.purgeNotifications(ctx) }); err != nil {
			w.Stop()
			return fmt.Errorf("failed to schedule notification purge: %w", err)
		}
		w.logger.Info("Notification purge scheduled",
			slog.Duration("interval", w.purgeInterval),
			slog.Duration("retention", w.notificationRetention),
		)
	}

	return w.startMessageDispatcher(ctx, deliveries)
}

// Stop gracefully stops the worker. Deliveries still buffered for the pool
// stay unacknowledged and are redelivered by the broker.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopChan)
		w.purger.stop()
		w.wg.Wait()
		w.logger.Info("Worker stopped")
	})
}
