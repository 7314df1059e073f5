package testsupport

import (
	"context"
	"testing"

	"cama/internal/config"
	"cama/internal/store"
	"cama/internal/survey"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedStation upserts a station with equal id and name at the given point.
func SeedStation(t testing.TB, st *store.Store, stationID string, x, y, z float64) {
	t.Helper()

	err := st.UpsertStation(context.Background(), survey.SurveyStation{
		StationID: stationID,
		Name:      stationID,
		X:         x,
		Y:         y,
		Z:         z,
	})
	if err != nil {
		t.Fatalf("store.UpsertStation: %v", err)
	}
}
