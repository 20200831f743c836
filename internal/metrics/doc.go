// Package metrics provides per-cycle instrumentation.
//
// Every cycle produces a CycleReport carrying its timings, status and row
// counts. Recorders consume reports:
//   - Prometheus: fetch/write histograms, cycle and row counters, used weight
//   - CloudWatch: one PutMetricData call per cycle (optional)
//
// Recorders never influence the pipeline; their failures are only logged.
package metrics
