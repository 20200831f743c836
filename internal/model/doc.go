// Package model defines shared data types used across the collector.
//
// Every cycle produces one FetchTask per (metric kind, symbol) pair plus a
// single server-time task. Each task yields a RowSet tagged with the same
// (kind, symbol) pair, so results can be routed to their tables without
// relying on call order.
//
// Conventions:
//   - Symbols: exchange pair codes as strings (e.g. "BTCUSDT")
//   - Timestamps: int64 milliseconds since Unix epoch, as returned by Binance
//   - Prices and quantities: decimal strings, stored verbatim
package model
