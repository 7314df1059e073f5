package survey

// ValidateCheckpoint checks a candidate checkpoint against the persistence
// rules and returns the violated ones. An empty result means valid. The gate
// is a pure function: no storage access, no side effects, so it can be tested
// with values that bypass NewCheckpoint.
func ValidateCheckpoint(cp Checkpoint) []string {
	var violations []string
	if cp.Name == "" {
		violations = append(violations, "name is required")
	}
	if cp.SurveyStationID == "" {
		violations = append(violations, "survey_station_id is required")
	}
	if cp.DepthFromEntrance < 0 {
		violations = append(violations, "depth_from_entrance must be >= 0")
	}
	return violations
}
