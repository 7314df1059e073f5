package store

import (
	"context"

	"cama/internal/survey"
)

// UpsertStation inserts or fully replaces a station by station_id.
// Last write wins; stations are never versioned.
func (s *Store) UpsertStation(ctx context.Context, st survey.SurveyStation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO stations (station_id, name, x, y, z) VALUES (?, ?, ?, ?, ?)`,
		st.StationID, st.Name, st.X, st.Y, st.Z,
	)
	if err != nil {
		return storageErr("upsert station", st.StationID, err)
	}
	return nil
}

// GetStation fetches a station by id. Returns nil when absent.
func (s *Store) GetStation(ctx context.Context, stationID string) (*survey.SurveyStation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT station_id, name, x, y, z FROM stations WHERE station_id = ?`, stationID)
	var st survey.SurveyStation
	if err := row.Scan(&st.StationID, &st.Name, &st.X, &st.Y, &st.Z); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, storageErr("get station", stationID, err)
	}
	return &st, nil
}

// ListStations returns all stations ordered by station_id.
func (s *Store) ListStations(ctx context.Context) ([]survey.SurveyStation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT station_id, name, x, y, z FROM stations ORDER BY station_id`)
	if err != nil {
		return nil, storageErr("list stations", "", err)
	}
	defer rows.Close()

	var stations []survey.SurveyStation
	for rows.Next() {
		var st survey.SurveyStation
		if err := rows.Scan(&st.StationID, &st.Name, &st.X, &st.Y, &st.Z); err != nil {
			return nil, storageErr("list stations", "scan", err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list stations", "iterate", err)
	}
	return stations, nil
}

// DeleteStation removes a station by id. Deleting an absent id is a no-op.
func (s *Store) DeleteStation(ctx context.Context, stationID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM stations WHERE station_id = ?`, stationID); err != nil {
		return storageErr("delete station", stationID, err)
	}
	return nil
}
