// Package survey holds the field-capture domain model: survey stations,
// checkpoints, gas readings, and sampling sessions, plus the payload
// snapshots that travel through the offline queue and the validation gate
// that guards checkpoint writes.
package survey
