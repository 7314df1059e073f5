// Package services defines the shared error taxonomy used across the
// capture pipeline.
//
// Errors are tagged with sentinel markers (validation, not found, storage
// unavailable, sink write) so callers can classify failures with errors.Is
// without string matching. Validation failures additionally carry the list
// of violated rules via ValidationError.
package services
