// Package outbox implements the offline queue and its flush protocol.
//
// Every domain mutation enqueues one Item alongside the entity write (the
// outbox pattern). The Queue is a durable, ordered log with non-destructive
// reads: TakeBatch peeks, Purge removes. The Flusher drains batches into a
// Sink and purges only after the sink write is confirmed durable, giving
// at-least-once delivery across process crashes. The one tolerated anomaly
// is a duplicate in the sink when a crash lands between the sink write and
// the purge.
package outbox
