package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"cama/internal/outbox"
)

// AppendQueueItem durably appends one item to the offline queue. The item is
// committed before the call returns.
func (s *Store) AppendQueueItem(ctx context.Context, item outbox.Item) error {
	return s.withTx(ctx, "append queue item", func(tx *sql.Tx) error {
		return insertQueueItem(ctx, tx, item)
	})
}

// ListQueueItems returns up to limit pending items oldest-first (creation
// order, ties by id) without removing them. A limit <= 0 returns everything.
func (s *Store) ListQueueItems(ctx context.Context, limit int) ([]outbox.Item, error) {
	query := `SELECT id, kind, payload, created_at FROM outbox_queue ORDER BY created_at, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list queue items", "", err)
	}
	defer rows.Close()

	var items []outbox.Item
	for rows.Next() {
		var (
			idRaw      string
			kindRaw    string
			payload    string
			createdRaw string
		)
		if err := rows.Scan(&idRaw, &kindRaw, &payload, &createdRaw); err != nil {
			return nil, storageErr("list queue items", "scan", err)
		}
		id, err := uuid.Parse(idRaw)
		if err != nil {
			return nil, storageErr("list queue items", "parse id", err)
		}
		item := outbox.Item{ID: id, Kind: outbox.Kind(kindRaw), Payload: []byte(payload)}
		if created, err := parseTime(createdRaw); err == nil {
			item.CreatedAt = created
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list queue items", "iterate", err)
	}
	return items, nil
}

// DeleteQueueItems durably removes the given ids. Ids not present are
// ignored; the removal of a drained batch is idempotent.
func (s *Store) DeleteQueueItems(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id.String())
	}
	query := `DELETE FROM outbox_queue WHERE id IN (` + makePlaceholders(len(ids)) + `)`
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return storageErr("delete queue items", "", err)
	}
	return nil
}

// CountQueueItems returns the number of pending queue items.
func (s *Store) CountQueueItems(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM outbox_queue`).Scan(&count); err != nil {
		return 0, storageErr("count queue items", "", err)
	}
	return count, nil
}

func insertQueueItem(ctx context.Context, tx *sql.Tx, item outbox.Item) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO outbox_queue (id, kind, payload, created_at) VALUES (?, ?, ?, ?)`,
		item.ID.String(),
		string(item.Kind),
		string(item.Payload),
		formatTime(item.CreatedAt),
	)
	if err != nil {
		return storageErr("append queue item", item.ID.String(), err)
	}
	return nil
}
