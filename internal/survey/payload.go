package survey

import (
	"math"
	"time"
)

// SessionSchemaVersion tags session payloads so sink consumers can evolve.
const SessionSchemaVersion = 1

// Round3 rounds a sensor or distance value to three decimal places for
// payload stability across flushes.
func Round3(value float64) float64 {
	return math.Round(value*1000) / 1000
}

// CheckpointPayload is the wire snapshot of a checkpoint carried by
// CHECKPOINT_CREATE and CHECKPOINT_UPDATE queue items.
type CheckpointPayload struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	PassageType         string  `json:"passage_type"`
	SurveyStationID     string  `json:"survey_station_id"`
	DepthFromEntrance   float64 `json:"depth_from_entrance"`
	DistanceFromStation float64 `json:"distance_from_station"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

// Payload builds the serializable snapshot of the checkpoint. Numeric fields
// are rounded to three decimals; timestamps are ISO-8601 in UTC.
func (c Checkpoint) Payload() CheckpointPayload {
	return CheckpointPayload{
		ID:                  c.ID.String(),
		Name:                c.Name,
		PassageType:         string(c.PassageType),
		SurveyStationID:     c.SurveyStationID,
		DepthFromEntrance:   Round3(c.DepthFromEntrance),
		DistanceFromStation: Round3(c.DistanceFromStation),
		CreatedAt:           formatTime(c.CreatedAt),
		UpdatedAt:           formatTime(c.UpdatedAt),
	}
}

// DeletePayload is the stub payload for CHECKPOINT_DELETE queue items. Only
// the id is carried; there is nothing else to replay for a deletion.
type DeletePayload struct {
	ID string `json:"id"`
}

// ReadingPayload is the wire form of a single gas reading.
type ReadingPayload struct {
	CapturedAt   string  `json:"captured_at"`
	O2Pct        float64 `json:"o2_pct"`
	COPpm        float64 `json:"co_ppm"`
	H2SPpm       float64 `json:"h2s_ppm"`
	LELPct       float64 `json:"lel_pct"`
	CheckpointID *string `json:"checkpoint_id"`
}

// SessionPayload is the wire snapshot of a sampling session carried by
// SESSION_UPLOAD queue items.
type SessionPayload struct {
	SchemaVersion   int              `json:"schema_version"`
	ID              string           `json:"id"`
	AnchorStationID string           `json:"anchor_station_id"`
	StartedAt       string           `json:"started_at"`
	EndedAt         *string          `json:"ended_at"`
	Readings        []ReadingPayload `json:"readings"`
	ReadingCount    int              `json:"reading_count"`
}

// Payload builds the serializable snapshot of the session including the
// derived reading_count field.
func (s *SamplingSession) Payload() SessionPayload {
	readings := make([]ReadingPayload, 0, len(s.Readings))
	for _, r := range s.Readings {
		readings = append(readings, r.Payload())
	}
	payload := SessionPayload{
		SchemaVersion:   SessionSchemaVersion,
		ID:              s.ID.String(),
		AnchorStationID: s.AnchorStationID,
		StartedAt:       formatTime(s.StartedAt),
		Readings:        readings,
		ReadingCount:    len(readings),
	}
	if s.EndedAt != nil {
		ended := formatTime(*s.EndedAt)
		payload.EndedAt = &ended
	}
	return payload
}

// Payload builds the serializable form of the reading.
func (r GasReading) Payload() ReadingPayload {
	payload := ReadingPayload{
		CapturedAt: formatTime(r.CapturedAt),
		O2Pct:      Round3(r.O2Pct),
		COPpm:      Round3(r.COPpm),
		H2SPpm:     Round3(r.H2SPpm),
		LELPct:     Round3(r.LELPct),
	}
	if r.CheckpointID != "" {
		id := r.CheckpointID
		payload.CheckpointID = &id
	}
	return payload
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
