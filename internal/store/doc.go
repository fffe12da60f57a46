// Package store provides SQLite-backed storage for the CLI platform simulator.
//
// The simulator stands in for the dialog platform, which normally owns the
// session attribute bag between turns. The store keeps:
//   - Sessions: the latest flat attribute bag per session id
//   - Turns: an append-only log of every turn run against a session
//
// # Ordering
//
// Turns are numbered per session with seq, a logical counter. All turn
// queries order by seq ASC, id ASC COLLATE BINARY, never by wall time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Attribute bags are stored as canonical JSON so stored rows and golden
// transcripts compare byte for byte.
package store
