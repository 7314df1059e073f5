package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"cama/internal/survey"
)

// SaveSession persists the session header and all readings as one durable
// unit. Re-saving the same session replaces both header and readings.
func (s *Store) SaveSession(ctx context.Context, sess *survey.SamplingSession) error {
	return s.withTx(ctx, "save session", func(tx *sql.Tx) error {
		var ended any
		if sess.EndedAt != nil {
			ended = formatTime(*sess.EndedAt)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO sessions (id, anchor_station_id, started_at, ended_at) VALUES (?, ?, ?, ?)`,
			sess.ID.String(),
			nullableString(sess.AnchorStationID),
			formatTime(sess.StartedAt),
			ended,
		); err != nil {
			return storageErr("save session", sess.ID.String(), err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM readings WHERE session_id = ?`, sess.ID.String()); err != nil {
			return storageErr("save session", "replace readings", err)
		}
		for seq, r := range sess.Readings {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO readings (session_id, seq, captured_at, o2_pct, co_ppm, h2s_ppm, lel_pct, checkpoint_id)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				sess.ID.String(),
				seq,
				formatTime(r.CapturedAt),
				r.O2Pct,
				r.COPpm,
				r.H2SPpm,
				r.LELPct,
				nullableString(r.CheckpointID),
			); err != nil {
				return storageErr("save session", "insert reading", err)
			}
		}
		return nil
	})
}

// GetSession fetches a session with its readings in capture order. Returns
// nil when absent.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*survey.SamplingSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, anchor_station_id, started_at, ended_at FROM sessions WHERE id = ?`, id.String())

	var (
		idRaw      string
		anchor     sql.NullString
		startedRaw string
		endedRaw   sql.NullString
	)
	if err := row.Scan(&idRaw, &anchor, &startedRaw, &endedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get session", id.String(), err)
	}

	sess := &survey.SamplingSession{ID: id, AnchorStationID: anchor.String}
	if started, err := parseTime(startedRaw); err == nil {
		sess.StartedAt = started
	}
	if endedRaw.Valid {
		if ended, err := parseTime(endedRaw.String); err == nil {
			sess.EndedAt = &ended
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT captured_at, o2_pct, co_ppm, h2s_ppm, lel_pct, checkpoint_id
         FROM readings WHERE session_id = ? ORDER BY seq`, id.String())
	if err != nil {
		return nil, storageErr("get session", "readings", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			capturedRaw  string
			checkpointID sql.NullString
			r            survey.GasReading
		)
		if err := rows.Scan(&capturedRaw, &r.O2Pct, &r.COPpm, &r.H2SPpm, &r.LELPct, &checkpointID); err != nil {
			return nil, storageErr("get session", "scan reading", err)
		}
		if captured, err := parseTime(capturedRaw); err == nil {
			r.CapturedAt = captured
		}
		r.CheckpointID = checkpointID.String
		sess.Readings = append(sess.Readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get session", "iterate readings", err)
	}
	return sess, nil
}
