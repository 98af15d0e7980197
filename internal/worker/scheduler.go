package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jasonlvhit/gocron"
)

// purgeScheduler runs one periodic task on its own gocron scheduler
type purgeScheduler struct {
	mu        sync.Mutex
	interval  time.Duration
	scheduler *gocron.Scheduler
	stopped   chan bool
}

func newPurgeScheduler(interval time.Duration) *purgeScheduler {
	return &purgeScheduler{interval: interval}
}

// intervalSeconds rounds the interval to gocron's one second resolution
func (p *purgeScheduler) intervalSeconds() uint64 {
	secs := uint64(p.interval / time.Second)
	if secs == 0 {
		secs = 1
	}
	return secs
}

func (p *purgeScheduler) start(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped != nil {
		return nil
	}

	p.scheduler = gocron.NewScheduler()
	if err := p.scheduler.Every(p.intervalSeconds()).Seconds().Do(task); err != nil {
		return err
	}
	p.stopped = p.scheduler.Start()
	return nil
}

func (p *purgeScheduler) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped == nil {
		return
	}
	p.stopped <- true
	p.scheduler.Clear()
	p.stopped = nil
}

// purgeNotifications deletes read notifications past the retention window
func (w *Worker) purgeNotifications(ctx context.Context) {
	purgeCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	cutoff := w.now().Add(-w.notificationRetention)
	deleted, err := w.store.PurgeReadNotifications(purgeCtx, cutoff)
	if err != nil {
		w.logger.Error("Failed to purge notifications",
			slog.Time("cutoff", cutoff),
			slog.Any("error", err),
		)
		return
	}

	w.logger.Info("Purged read notifications",
		slog.Int64("deleted", deleted),
		slog.Time("cutoff", cutoff),
	)
}
