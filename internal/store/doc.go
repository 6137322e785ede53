// Package store provides SQLite-backed storage for test run results.
//
// Each run records the outcome of every test case it evaluated, with the
// per-check numbers (outliers, limits, max difference) of every image
// comparison, so regressions can be traced across runs.
//
// # Ordering
//
// Runs carry a logical sequence number assigned at BeginRun. All queries
// order by seq, never by wall time, and break ties by name with binary
// collation so results are identical across reads.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
