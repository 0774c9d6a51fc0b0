// Package repositories implements SQLite persistence for captured streams.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [CaptureRepository] : Capture history with status and URL lookups
//   - [CaptureStoreAdapter] : Saves finished capture runs for the capture engine
//
// Sequence numbers provide stable, human-readable ordering (e.g., capture #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
