package outbox

import (
	"context"
	"log/slog"
	"sync"

	"cama/internal/logging"
)

// Flusher drains batches from the offline queue into the sink. Items are
// purged from the queue only after the sink write is confirmed durable, so a
// failure at any step leaves the batch queued for the next attempt
// (at-least-once delivery). A crash between the sink write and the purge
// re-delivers the batch on the next flush; the sink may then hold duplicates
// across that crash boundary.
type Flusher struct {
	mu        sync.Mutex
	queue     *Queue
	sink      Sink
	logger    *slog.Logger
	batchSize int
}

// NewFlusher builds a flusher draining up to batchSize items per invocation.
func NewFlusher(queue *Queue, sink Sink, logger *slog.Logger, batchSize int) *Flusher {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Flusher{
		queue:     queue,
		sink:      sink,
		logger:    logging.WithComponent(logger, "flusher"),
		batchSize: batchSize,
	}
}

// Flush drains one batch. Concurrent invocations are mutually exclusive; a
// flush in flight always runs to completion before the next may start.
// Returns the number of items both delivered and purged.
func (f *Flusher) Flush(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	batch, err := f.queue.TakeBatch(ctx, f.batchSize)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}

	entries := make([]Entry, 0, len(batch))
	for _, item := range batch {
		entries = append(entries, Entry{
			ID:      item.ID.String(),
			Kind:    string(item.Kind),
			Payload: item.Payload,
		})
	}

	if err := f.sink.Append(ctx, entries); err != nil {
		f.logger.Error("sink write failed; batch remains queued",
			logging.Int(logging.FieldCount, len(batch)),
			logging.Error(err))
		return 0, err
	}

	if err := f.queue.Purge(ctx, batch); err != nil {
		// The sink already holds the batch; the queue will re-deliver it on
		// the next flush, which the sink format tolerates.
		f.logger.Error("purge failed after durable sink write",
			logging.Int(logging.FieldCount, len(batch)),
			logging.Error(err))
		return 0, err
	}

	f.logger.Info("flushed batch", logging.Int(logging.FieldCount, len(batch)))
	return len(batch), nil
}
