// Package database opens the collector's store connections and applies the
// embedded schema.
//
// Supported stores:
//   - PostgreSQL: pgx connection pool (default)
//   - ClickHouse: native protocol connection
//   - SQLite: local file through database/sql
//
// Schema files live under migrations/<dialect>/ and are applied in file-name
// order. Every statement is idempotent (IF NOT EXISTS).
package database
