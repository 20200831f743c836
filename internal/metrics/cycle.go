package metrics

import (
	"time"
)

// Status is the outcome of one cycle.
type Status string

const (
	StatusOK               Status = "ok"
	StatusFetchFailed      Status = "fetch_failed"
	StatusReassembleFailed Status = "reassemble_failed"
	StatusWriteFailed      Status = "write_failed"
)

// CycleTimings holds the wall-clock checkpoints of one cycle.
type CycleTimings struct {
	Dispatched    time.Time `json:"dispatched"`
	BatchComplete time.Time `json:"batch_complete"`
	WriteComplete time.Time `json:"write_complete"` // zero if the cycle never reached persistence
}

// FetchDuration is the time from dispatch to the fan-out barrier.
func (t CycleTimings) FetchDuration() time.Duration {
	if t.BatchComplete.IsZero() {
		return 0
	}
	return t.BatchComplete.Sub(t.Dispatched)
}

// WriteDuration is the time spent persisting.
func (t CycleTimings) WriteDuration() time.Duration {
	if t.WriteComplete.IsZero() {
		return 0
	}
	return t.WriteComplete.Sub(t.BatchComplete)
}

// CycleReport summarizes one cycle.
type CycleReport struct {
	ID          string           `json:"id"`
	Status      Status           `json:"status"`
	Tasks       int              `json:"tasks"`
	Timings     CycleTimings     `json:"timings"`
	RowsWritten int64            `json:"rows_written"`
	TableRows   map[string]int64 `json:"table_rows,omitempty"`
	UsedWeight  map[string]int64 `json:"used_weight,omitempty"`
	FailedTasks []string         `json:"failed_tasks,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// OK reports whether the cycle persisted every row set.
func (r CycleReport) OK() bool {
	return r.Status == StatusOK
}

// LogAttrs returns the report as slog key/value pairs. Timestamps are unix
// milliseconds; write_complete_ms is omitted when no write happened.
func (r CycleReport) LogAttrs() []any {
	attrs := []any{
		"cycle_id", r.ID,
		"status", string(r.Status),
		"tasks", r.Tasks,
		"dispatched_ms", r.Timings.Dispatched.UnixMilli(),
		"batch_complete_ms", r.Timings.BatchComplete.UnixMilli(),
		"fetch_duration", r.Timings.FetchDuration(),
		"write_duration", r.Timings.WriteDuration(),
		"rows", r.RowsWritten,
	}
	if !r.Timings.WriteComplete.IsZero() {
		attrs = append(attrs, "write_complete_ms", r.Timings.WriteComplete.UnixMilli())
	}
	if len(r.FailedTasks) > 0 {
		attrs = append(attrs, "failed_tasks", r.FailedTasks)
	}
	return attrs
}
