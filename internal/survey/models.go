package survey

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PassageType classifies the cave passage a checkpoint was recorded in.
type PassageType string

const (
	PassageCanyon  PassageType = "CANYON"
	PassageTube    PassageType = "TUBE"
	PassageKeyhole PassageType = "KEYHOLE"
	PassagePit     PassageType = "PIT"
	PassageCrawl   PassageType = "CRAWL"
	PassageRoom    PassageType = "ROOM"
)

var allPassageTypes = []PassageType{
	PassageCanyon,
	PassageTube,
	PassageKeyhole,
	PassagePit,
	PassageCrawl,
	PassageRoom,
}

// AllPassageTypes returns the ordered list of known passage types.
func AllPassageTypes() []PassageType {
	cp := make([]PassageType, len(allPassageTypes))
	copy(cp, allPassageTypes)
	return cp
}

// ParsePassageType converts a string into a known PassageType.
func ParsePassageType(value string) (PassageType, bool) {
	normalized := PassageType(strings.ToUpper(strings.TrimSpace(value)))
	for _, pt := range allPassageTypes {
		if pt == normalized {
			return pt, true
		}
	}
	return "", false
}

// SurveyStation is a fixed survey point in the cave. Stations are upserted
// by station_id with last-write-wins semantics and never versioned.
type SurveyStation struct {
	StationID string
	Name      string
	X         float64
	Y         float64
	Z         float64
}

// Checkpoint is a point of interest recorded against a survey station. The
// ID is generated at creation and immutable; UpdatedAt is bumped on every
// mutation. SurveyStationID is a soft reference and may dangle.
type Checkpoint struct {
	ID                  uuid.UUID
	Name                string
	PassageType         PassageType
	SurveyStationID     string
	DepthFromEntrance   float64
	DistanceFromStation float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewCheckpoint constructs a checkpoint with a fresh identity and current
// timestamps. The result has not been validated or persisted.
func NewCheckpoint(name string, passageType PassageType, stationID string, depth, distance float64) Checkpoint {
	now := time.Now().UTC()
	return Checkpoint{
		ID:                  uuid.New(),
		Name:                name,
		PassageType:         passageType,
		SurveyStationID:     stationID,
		DepthFromEntrance:   depth,
		DistanceFromStation: distance,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// GasReading is a single four-sensor sample. Immutable once captured.
// CheckpointID optionally ties the reading to a checkpoint; empty means none.
type GasReading struct {
	O2Pct        float64
	COPpm        float64
	H2SPpm       float64
	LELPct       float64
	CapturedAt   time.Time
	CheckpointID string
}

// SamplingSession is an ordered, append-only sequence of gas readings
// anchored at a survey station. A session is open until End is called;
// ending is terminal.
type SamplingSession struct {
	ID              uuid.UUID
	AnchorStationID string
	StartedAt       time.Time
	EndedAt         *time.Time
	Readings        []GasReading
}

// NewSession starts an open sampling session anchored at the given station.
func NewSession(anchorStationID string) *SamplingSession {
	return &SamplingSession{
		ID:              uuid.New(),
		AnchorStationID: anchorStationID,
		StartedAt:       time.Now().UTC(),
	}
}

// AddReading appends a reading in capture order. Readings recorded after End
// are accepted; the session model does not police its callers.
func (s *SamplingSession) AddReading(r GasReading) {
	if r.CapturedAt.IsZero() {
		r.CapturedAt = time.Now().UTC()
	}
	s.Readings = append(s.Readings, r)
}

// End closes the session. The first call sets EndedAt; later calls are no-ops.
func (s *SamplingSession) End() {
	if s.EndedAt != nil {
		return
	}
	now := time.Now().UTC()
	s.EndedAt = &now
}

// Ended reports whether the session has been closed.
func (s *SamplingSession) Ended() bool {
	return s.EndedAt != nil
}
