// Package store provides SQLite-backed run history for sigconv.
//
// Every executed request can be recorded as a run: the request text and its
// content hash, the method, whether it succeeded, the error code if not, and
// a summary of the result (peak, warning count, method disagreement).
// Integration warnings are kept per run in their own table.
//
// # Ordering
//
// Runs are ordered by seq, an INTEGER PRIMARY KEY assigned on insert,
// never by created_at. Listings are newest first.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
