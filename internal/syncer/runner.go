// Package syncer drives periodic outbox flushes. A runner owns a single-
// instance file lock so two sync processes never race each other over the
// same queue and sink.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"cama/internal/config"
	"cama/internal/logging"
	"cama/internal/outbox"
)

// Runner flushes the outbox on a fixed interval until stopped. A flush that
// is underway always runs to completion; cancellation takes effect between
// flushes.
type Runner struct {
	flusher  *outbox.Flusher
	logger   *slog.Logger
	interval time.Duration

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewRunner builds a runner from the sync configuration. The lock file lives
// alongside the logs so stale locks are easy to find.
func NewRunner(cfg *config.Config, flusher *outbox.Flusher, logger *slog.Logger) *Runner {
	lockPath := filepath.Join(cfg.Paths.LogDir, "cama-sync.lock")
	return &Runner{
		flusher:  flusher,
		logger:   logging.WithComponent(logger, "syncer"),
		interval: time.Duration(cfg.Sync.FlushInterval) * time.Second,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
}

// Start acquires the instance lock and launches the flush loop.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("syncer already running")
	}

	ok, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another sync process holds %s", r.lockPath)
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.wg.Add(1)
	go r.loop(runCtx)

	r.logger.Info("sync runner started",
		logging.Duration("interval", r.interval),
		logging.String("lock", r.lockPath))
	return nil
}

// Stop cancels the loop, waits for any in-flight flush, and releases the
// lock.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	cancel()
	r.wg.Wait()

	if err := r.lock.Unlock(); err != nil {
		r.logger.Warn("failed to release sync lock", logging.Error(err))
	}
	r.logger.Info("sync runner stopped")
}

// Running reports whether the loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Runner) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Drain whatever accumulated while offline before the first tick.
	r.flushOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.flushOnce(ctx)
		}
	}
}

// flushOnce runs a single flush with a background context so shutdown never
// interrupts a batch mid-write.
func (r *Runner) flushOnce(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	flushed, err := r.flusher.Flush(context.Background())
	if err != nil {
		r.logger.Warn("flush failed; batch stays queued", logging.Error(err))
		return
	}
	if flushed > 0 {
		r.logger.Info("flush completed", logging.Int(logging.FieldCount, flushed))
	}
}
