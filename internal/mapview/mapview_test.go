package mapview

import (
	"context"
	"errors"
	"math"
	"testing"

	"cama/internal/logging"
	"cama/internal/services"
	"cama/internal/testsupport"
)

func TestNearestStationPicksClosest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedStation(t, st, "A1", 0, 0, 0)
	testsupport.SeedStation(t, st, "B5", 10, 0, 0)
	testsupport.SeedStation(t, st, "C12", 0, 10, 0)

	resolver := NewResolver(st, logging.NewNop())
	result, err := resolver.NearestStation(context.Background(), Point{X: 8, Y: 1, Z: 0})
	if err != nil {
		t.Fatalf("NearestStation: %v", err)
	}
	if result.Station.StationID != "B5" {
		t.Fatalf("expected B5, got %s", result.Station.StationID)
	}
	want := math.Sqrt(4 + 1)
	if math.Abs(result.Distance-want) > 1e-9 {
		t.Fatalf("distance mismatch: got %v want %v", result.Distance, want)
	}
}

func TestNearestStationTieBreaksByID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	// Both stations are exactly 5m from the tap point.
	testsupport.SeedStation(t, st, "Z9", 5, 0, 0)
	testsupport.SeedStation(t, st, "A2", -5, 0, 0)

	resolver := NewResolver(st, logging.NewNop())
	result, err := resolver.NearestStation(context.Background(), Point{})
	if err != nil {
		t.Fatalf("NearestStation: %v", err)
	}
	if result.Station.StationID != "A2" {
		t.Fatalf("tie must resolve to smallest id, got %s", result.Station.StationID)
	}
}

func TestNearestStationEmptySet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	resolver := NewResolver(st, logging.NewNop())
	_, err := resolver.NearestStation(context.Background(), Point{X: 1})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNearestStationExactHit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedStation(t, st, "A1", 3.5, -2, 12)

	resolver := NewResolver(st, logging.NewNop())
	result, err := resolver.NearestStation(context.Background(), Point{X: 3.5, Y: -2, Z: 12})
	if err != nil {
		t.Fatalf("NearestStation: %v", err)
	}
	if result.Station.StationID != "A1" || result.Distance != 0 {
		t.Fatalf("expected exact hit on A1, got %s at %v", result.Station.StationID, result.Distance)
	}
}
