// Package store persists survey entities and the offline queue in SQLite.
//
// Every write commits through journal_mode=WAL with synchronous=FULL so a
// crash leaves either the pre-write or the fully applied post-write state.
// Registry mutations use the combined *WithQueue methods, which write the
// entity and its queue entry inside one transaction. Listing operations
// return a stable order per entity (queue items: creation order, ties by
// id); deletes are idempotent no-ops for absent keys.
//
// Treat this package as the single source of truth for storage semantics;
// schema changes bump the version in schema.go and require clearing the
// database.
package store
