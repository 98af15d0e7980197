package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobsnearby/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each worker goroutine
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Debug("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-w.stopChan:
			w.logger.Debug("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			w.logger.Debug("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg, ok := <-w.jobsChan:
			if !ok {
				return
			}
			w.handleMessage(ctx, workerName, msg)
		}
	}
}

// handleMessage processes one event and acknowledges it according to the outcome
func (w *Worker) handleMessage(ctx context.Context, workerName string, msg *domain.EventMessage) {
	err := w.processEvent(ctx, msg)

	if err == nil {
		if ackErr := msg.Delivery.Ack(false); ackErr != nil {
			w.logger.Error("Failed to ACK message",
				slog.String("worker_name", workerName),
				slog.String("event_id", msg.EventID),
				slog.Any("error", ackErr),
			)
			return
		}
		w.logger.Info("Event processed",
			slog.String("worker_name", workerName),
			slog.String("event_id", msg.EventID),
			slog.String("type", msg.Type),
		)
		return
	}

	requeue := shouldRequeue(err)
	w.logger.Error("Event processing failed",
		slog.String("worker_name", workerName),
		slog.String("event_id", msg.EventID),
		slog.String("type", msg.Type),
		slog.Bool("requeue", requeue),
		slog.Any("error", err),
	)

	if nackErr := msg.Delivery.Nack(false, requeue); nackErr != nil {
		w.logger.Error("Failed to NACK message",
			slog.String("worker_name", workerName),
			slog.String("event_id", msg.EventID),
			slog.Any("error", nackErr),
		)
	}
}

// shouldRequeue determines if an event should be requeued based on the error type
func shouldRequeue(err error) bool {
	if errors.Is(err, domain.ErrMaxRetriesExceeded) ||
		errors.Is(err, domain.ErrInvalidEvent) ||
		errors.Is(err, domain.ErrUnknownEventType) {
		return false
	}

	var retryableErr *domain.RetryableError
	return errors.As(err, &retryableErr)
}
