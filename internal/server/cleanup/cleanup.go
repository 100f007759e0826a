// Package cleanup runs the background purge of expired token revocations.
package cleanup

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/logging"
)

// Purger deletes revocations whose tokens expired before now.
type Purger interface {
	PurgeRevoked(ctx context.Context, now time.Time) (int64, error)
}

// Stats summarises the work done so far.
type Stats struct {
	LastRun time.Time
	Runs    int64
	Deleted int64
	Errors  int64
}

// Worker calls Purger every interval until its context is canceled.
type Worker struct {
	purger   Purger
	interval time.Duration
	logger   logging.Logger
	now      func() time.Time

	mu    sync.RWMutex
	stats Stats
}

// NewWorker returns a Worker. A non-positive interval falls back to one hour.
func NewWorker(p Purger, interval time.Duration, logger logging.Logger) *Worker {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Worker{
		purger:   p,
		interval: interval,
		logger:   logger.With("component", "cleanup"),
		now:      time.Now,
	}
}

// Run purges once immediately and then on every tick. It returns nil when
// ctx is canceled; purge errors are logged and counted, never returned.
func (w *Worker) Run(ctx context.Context) error {
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single purge.
func (w *Worker) RunOnce(ctx context.Context) {
	now := w.now()
	n, err := w.purger.PurgeRevoked(ctx, now)

	w.mu.Lock()
	w.stats.LastRun = now
	w.stats.Runs++
	if err != nil {
		w.stats.Errors++
	} else {
		w.stats.Deleted += n
	}
	w.mu.Unlock()

	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error(ctx, "purging revoked tokens failed", "error", err)
		}
		return
	}
	if n > 0 {
		w.logger.Info(ctx, "purged revoked tokens", "count", n)
	}
}

// Stats returns a snapshot of the counters.
func (w *Worker) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}
