// Package api provides the Binance REST adapters used by the collector.
//
// Spot endpoints (https://api.binance.com):
//   - /api/v3/time
//   - /api/v3/klines
//   - /api/v3/depth
//
// USDⓈ-M futures endpoints (https://fapi.binance.com):
//   - /fapi/v1/openInterest
//   - /futures/data/topLongShortAccountRatio
//   - /futures/data/topLongShortPositionRatio
//   - /futures/data/globalLongShortAccountRatio
//
// Every adapter shapes its response into a model.RowSet tagged with the
// task's kind and symbol. Requests are never retried.
package api
