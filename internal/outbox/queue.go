package outbox

import (
	"context"

	"github.com/google/uuid"
)

// Storage is the durable persistence the queue delegates to. *store.Store
// satisfies it.
type Storage interface {
	AppendQueueItem(ctx context.Context, item Item) error
	ListQueueItems(ctx context.Context, limit int) ([]Item, error)
	DeleteQueueItems(ctx context.Context, ids []uuid.UUID) error
	CountQueueItems(ctx context.Context) (int, error)
}

// Queue is the ordered, durable log of pending outbound items. It is a
// single shared log across all mutation kinds; drain order is creation
// order with ties broken by id.
type Queue struct {
	storage Storage
}

// NewQueue wraps durable storage in the queue interface.
func NewQueue(storage Storage) *Queue {
	return &Queue{storage: storage}
}

// Add durably appends an item. The item is committed before Add returns.
func (q *Queue) Add(ctx context.Context, item Item) error {
	return q.storage.AppendQueueItem(ctx, item)
}

// TakeBatch returns up to n oldest-first items without removing them. The
// non-destructive read lets the flusher attempt delivery before committing
// to removal.
func (q *Queue) TakeBatch(ctx context.Context, n int) ([]Item, error) {
	return q.storage.ListQueueItems(ctx, n)
}

// Purge durably removes exactly the given items by id. Purging an id that is
// no longer present is a no-op.
func (q *Queue) Purge(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return q.storage.DeleteQueueItems(ctx, ids)
}

// Depth returns the number of items awaiting sync.
func (q *Queue) Depth(ctx context.Context) (int, error) {
	return q.storage.CountQueueItems(ctx)
}
