package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"cama/internal/outbox"
	"cama/internal/survey"
)

const checkpointColumns = "id, name, passage_type, survey_station_id, depth_from_entrance, distance_from_station, created_at, updated_at"

// SaveCheckpoint persists a checkpoint with full replace semantics
// (delete-then-insert by id) inside one transaction.
func (s *Store) SaveCheckpoint(ctx context.Context, cp survey.Checkpoint) error {
	return s.withTx(ctx, "save checkpoint", func(tx *sql.Tx) error {
		return insertCheckpoint(ctx, tx, cp)
	})
}

// SaveCheckpointWithQueue persists a checkpoint and appends its queue entry
// as one atomic unit. A crash leaves either both writes or neither.
func (s *Store) SaveCheckpointWithQueue(ctx context.Context, cp survey.Checkpoint, item outbox.Item) error {
	return s.withTx(ctx, "save checkpoint", func(tx *sql.Tx) error {
		if err := insertCheckpoint(ctx, tx, cp); err != nil {
			return err
		}
		return insertQueueItem(ctx, tx, item)
	})
}

// DeleteCheckpoint removes a checkpoint by id. Absent ids are a no-op.
func (s *Store) DeleteCheckpoint(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE id = ?`, id.String()); err != nil {
		return storageErr("delete checkpoint", id.String(), err)
	}
	return nil
}

// DeleteCheckpointWithQueue removes a checkpoint and appends the matching
// queue entry in one transaction. The delete is idempotent; the queue entry
// is written regardless so a prior partial replay cannot strand the sink.
func (s *Store) DeleteCheckpointWithQueue(ctx context.Context, id uuid.UUID, item outbox.Item) error {
	return s.withTx(ctx, "delete checkpoint", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM checkpoints WHERE id = ?`, id.String()); err != nil {
			return storageErr("delete checkpoint", id.String(), err)
		}
		return insertQueueItem(ctx, tx, item)
	})
}

// ListCheckpoints returns all persisted checkpoints ordered by creation
// time, ties broken by id.
func (s *Store) ListCheckpoints(ctx context.Context) ([]survey.Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+checkpointColumns+` FROM checkpoints ORDER BY created_at, id`)
	if err != nil {
		return nil, storageErr("list checkpoints", "", err)
	}
	defer rows.Close()

	var checkpoints []survey.Checkpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, err
		}
		checkpoints = append(checkpoints, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list checkpoints", "iterate", err)
	}
	return checkpoints, nil
}

// GetCheckpoint fetches a checkpoint by id. Returns nil when absent.
func (s *Store) GetCheckpoint(ctx context.Context, id uuid.UUID) (*survey.Checkpoint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+checkpointColumns+` FROM checkpoints WHERE id = ?`, id.String())
	cp, err := scanCheckpoint(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cp, nil
}

func insertCheckpoint(ctx context.Context, tx *sql.Tx, cp survey.Checkpoint) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM checkpoints WHERE id = ?`, cp.ID.String()); err != nil {
		return storageErr("save checkpoint", "replace", err)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO checkpoints (`+checkpointColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cp.ID.String(),
		cp.Name,
		string(cp.PassageType),
		cp.SurveyStationID,
		cp.DepthFromEntrance,
		cp.DistanceFromStation,
		formatTime(cp.CreatedAt),
		formatTime(cp.UpdatedAt),
	)
	if err != nil {
		return storageErr("save checkpoint", cp.ID.String(), err)
	}
	return nil
}

func scanCheckpoint(scanner interface{ Scan(dest ...any) error }) (survey.Checkpoint, error) {
	var (
		idRaw      string
		passageRaw string
		createdRaw string
		updatedRaw string
		cp         survey.Checkpoint
	)
	if err := scanner.Scan(
		&idRaw,
		&cp.Name,
		&passageRaw,
		&cp.SurveyStationID,
		&cp.DepthFromEntrance,
		&cp.DistanceFromStation,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return survey.Checkpoint{}, err
		}
		return survey.Checkpoint{}, storageErr("scan checkpoint", "", err)
	}

	id, err := uuid.Parse(idRaw)
	if err != nil {
		return survey.Checkpoint{}, storageErr("scan checkpoint", "parse id", err)
	}
	cp.ID = id
	cp.PassageType = survey.PassageType(passageRaw)
	if created, err := parseTime(createdRaw); err == nil {
		cp.CreatedAt = created
	}
	if updated, err := parseTime(updatedRaw); err == nil {
		cp.UpdatedAt = updated
	}
	return cp, nil
}
