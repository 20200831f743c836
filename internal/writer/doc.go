// Package writer persists reassembled cycles.
//
// Stores:
//   - PostgreSQL (pgx pool, pgx.Batch per row set)
//   - ClickHouse (native protocol, one PrepareBatch per row set)
//   - SQLite (database/sql, one transaction per row set)
//
// All stores use append-only semantics (never update, only insert). A cycle
// is written sequentially over one session with no cross-table transaction;
// each row set is atomic on its own.
package writer
