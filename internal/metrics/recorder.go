package metrics

import (
	"context"
)

// Recorder consumes cycle reports. ObserveCycle runs on the scheduling loop
// and must return once ctx is done.
type Recorder interface {
	ObserveCycle(ctx context.Context, report CycleReport)
}

// RecorderFunc is a function adapter for Recorder.
type RecorderFunc func(context.Context, CycleReport)

func (f RecorderFunc) ObserveCycle(ctx context.Context, r CycleReport) {
	f(ctx, r)
}

// Nop discards every report.
type Nop struct{}

func (Nop) ObserveCycle(context.Context, CycleReport) {}

// Multi forwards each report to every recorder in order.
type Multi []Recorder

func (m Multi) ObserveCycle(ctx context.Context, r CycleReport) {
	for _, rec := range m {
		if rec != nil {
			rec.ObserveCycle(ctx, r)
		}
	}
}
