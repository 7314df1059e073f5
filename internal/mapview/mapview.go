// Package mapview resolves 3D map positions to survey stations. A tap on the
// cave map arrives as a raw coordinate; the nearest known station anchors
// whatever the surveyor records next.
package mapview

import (
	"context"
	"log/slog"
	"math"

	"cama/internal/logging"
	"cama/internal/services"
	"cama/internal/store"
	"cama/internal/survey"
)

// Point is a position in the cave's survey coordinate frame, meters from the
// datum.
type Point struct {
	X float64
	Y float64
	Z float64
}

// TapResult pairs the resolved station with its straight-line distance from
// the tapped point.
type TapResult struct {
	Station  survey.SurveyStation
	Distance float64
}

// Resolver answers nearest-station queries against the persisted station set.
type Resolver struct {
	store  *store.Store
	logger *slog.Logger
}

func NewResolver(st *store.Store, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  st,
		logger: logging.WithComponent(logger, "mapview"),
	}
}

// NearestStation finds the station closest to p by Euclidean distance. Ties
// resolve to the lexicographically smallest station id so repeated taps on
// the same point always answer the same. Fails with not found when no
// stations exist.
func (r *Resolver) NearestStation(ctx context.Context, p Point) (TapResult, error) {
	stations, err := r.store.ListStations(ctx)
	if err != nil {
		return TapResult{}, err
	}
	if len(stations) == 0 {
		return TapResult{}, services.Wrap(services.ErrNotFound, "mapview", "nearest station", "no stations loaded", nil)
	}

	best := stations[0]
	bestDist := distanceSquared(p, best)
	for _, candidate := range stations[1:] {
		d := distanceSquared(p, candidate)
		if d < bestDist || (d == bestDist && candidate.StationID < best.StationID) {
			best = candidate
			bestDist = d
		}
	}

	result := TapResult{Station: best, Distance: math.Sqrt(bestDist)}
	r.logger.Debug("map tap resolved",
		logging.String("station_id", best.StationID),
		logging.Float64("distance_m", result.Distance))
	return result, nil
}

func distanceSquared(p Point, st survey.SurveyStation) float64 {
	dx := p.X - st.X
	dy := p.Y - st.Y
	dz := p.Z - st.Z
	return dx*dx + dy*dy + dz*dz
}
