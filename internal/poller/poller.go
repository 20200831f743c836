package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/binance-collector/internal/api"
	"github.com/rickgao/binance-collector/internal/metrics"
	"github.com/rickgao/binance-collector/internal/model"
	"github.com/rickgao/binance-collector/internal/writer"
)

// Persister writes a reassembled cycle and returns the rows written.
type Persister interface {
	Persist(ctx context.Context, m model.Mapping) (int64, error)
}

// Config holds poller configuration.
type Config struct {
	Symbols     []string
	WakeSecond  int     // Second of minute to start a cycle (default: 59)
	Concurrency int     // Max fetches in flight, 0 = unbounded
	WeightLimit int64   // Futures REQUEST_WEIGHT per minute, 0 = unknown
	WeightWarn  float64 // Fraction of WeightLimit that triggers a warning (default: 0.8)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		WakeSecond: DefaultWakeSecond,
		WeightWarn: 0.8,
	}
}

// DefaultRecordTimeout bounds how long a recorder may hold up the scheduling
// loop after a cycle.
const DefaultRecordTimeout = 10 * time.Second

// Option configures a Poller.
type Option func(*Poller)

// WithRecorder sets the cycle recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Poller) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithRecordTimeout sets the deadline given to the recorder for each cycle
// report.
func WithRecordTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.recordTimeout = d
		}
	}
}

// WithWeights sets the tracker consulted for used request weight.
func WithWeights(w *api.WeightTracker) Option {
	return func(p *Poller) {
		p.weights = w
	}
}

// Poller runs one collection cycle per minute.
type Poller struct {
	cfg           Config
	fetcher       Fetcher
	persister     Persister
	recorder      metrics.Recorder
	recordTimeout time.Duration
	weights       *api.WeightTracker
	logger        *slog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu   sync.RWMutex
	last *metrics.CycleReport

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller. The symbol list is copied.
func New(cfg Config, fetcher Fetcher, persister Persister, logger *slog.Logger, opts ...Option) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WeightWarn <= 0 {
		cfg.WeightWarn = 0.8
	}
	cfg.Symbols = append([]string(nil), cfg.Symbols...)

	p := &Poller{
		cfg:           cfg,
		fetcher:       fetcher,
		persister:     persister,
		recorder:      metrics.Nop{},
		recordTimeout: DefaultRecordTimeout,
		logger:        logger,
		now:           time.Now,
		after:         time.After,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins the scheduling loop in the background.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.Run(p.ctx)
	}()

	p.logger.Info("cycle poller started",
		"symbols", len(p.cfg.Symbols),
		"wake_second", p.cfg.WakeSecond,
		"concurrency", p.cfg.Concurrency,
	)

	return nil
}

// Stop cancels the loop and waits for an in-flight cycle to finish.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("cycle poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run sleeps until each wake-up and runs a cycle, until ctx is cancelled.
// Cancellation interrupts the sleep; a running cycle completes first.
func (p *Poller) Run(ctx context.Context) error {
	for {
		delay := NextWakeDelay(p.now(), p.cfg.WakeSecond)
		p.logger.Debug("sleeping until next cycle", "delay", delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.after(delay):
		}

		// Shutdown must not abort requests or writes already under way.
		report, _ := p.RunCycle(context.WithoutCancel(ctx))

		if elapsed := p.now().Sub(report.Timings.Dispatched); elapsed >= time.Minute {
			p.logger.Warn("cycle overran the schedule, skipping missed wake-ups",
				"cycle_id", report.ID,
				"elapsed", elapsed,
				"skipped", int(elapsed/time.Minute),
			)
		}
	}
}

// RunCycle runs one complete cycle: fan-out, reassembly and persistence.
// The returned error is a *JoinError, a reassembly error, or the
// persister's error.
func (p *Poller) RunCycle(ctx context.Context) (metrics.CycleReport, error) {
	tasks := BuildTasks(p.cfg.Symbols)
	report := metrics.CycleReport{
		ID:    uuid.NewString(),
		Tasks: len(tasks),
	}

	report.Timings.Dispatched = p.now()
	results, err := Execute(ctx, p.fetcher, tasks, p.cfg.Concurrency)
	report.Timings.BatchComplete = p.now()
	p.observeWeight(&report)

	if err != nil {
		report.Status = metrics.StatusFetchFailed
		var je *JoinError
		if errors.As(err, &je) {
			report.FailedTasks = je.Tasks()
		}
		return p.finish(ctx, report, err)
	}

	mapping, err := Reassemble(tasks, results)
	if err != nil {
		report.Status = metrics.StatusReassembleFailed
		return p.finish(ctx, report, err)
	}

	written, err := p.persister.Persist(ctx, mapping)
	report.Timings.WriteComplete = p.now()
	report.RowsWritten = written
	report.TableRows = tableRows(mapping, written)
	if err != nil {
		report.Status = metrics.StatusWriteFailed
		return p.finish(ctx, report, err)
	}

	report.Status = metrics.StatusOK
	return p.finish(ctx, report, nil)
}

// LastCycle returns the report of the most recent cycle.
func (p *Poller) LastCycle() (metrics.CycleReport, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return metrics.CycleReport{}, false
	}
	return *p.last, true
}

func (p *Poller) finish(ctx context.Context, report metrics.CycleReport, err error) (metrics.CycleReport, error) {
	attrs := report.LogAttrs()
	if err != nil {
		report.Error = err.Error()
		attrs = append(attrs, "err", err)

		var pe *writer.PersistenceError
		if errors.As(err, &pe) {
			attrs = append(attrs, "table", pe.Table, "symbol", pe.Symbol)
		}
		p.logger.Error("cycle failed", attrs...)
	} else {
		p.logger.Info("cycle complete", attrs...)
	}

	p.mu.Lock()
	p.last = &report
	p.mu.Unlock()

	p.record(ctx, report)
	return report, err
}

// record hands the report to the recorder under its own deadline; the cycle
// context carries none.
func (p *Poller) record(ctx context.Context, report metrics.CycleReport) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.recordTimeout)
	defer cancel()

	start := p.now()
	p.recorder.ObserveCycle(rctx, report)
	if rctx.Err() != nil {
		p.logger.Warn("cycle recorder hit its deadline",
			"cycle_id", report.ID,
			"timeout", p.recordTimeout,
			"elapsed", p.now().Sub(start),
		)
	}
}

func (p *Poller) observeWeight(report *metrics.CycleReport) {
	if p.weights == nil {
		return
	}
	spot := p.weights.Used(api.MarketSpot)
	futures := p.weights.Used(api.MarketFutures)
	report.UsedWeight = map[string]int64{
		string(api.MarketSpot):    spot,
		string(api.MarketFutures): futures,
	}

	limit := p.cfg.WeightLimit
	if limit > 0 && float64(futures) >= p.cfg.WeightWarn*float64(limit) {
		p.logger.Warn("futures request weight near limit",
			"cycle_id", report.ID,
			"used", futures,
			"limit", limit,
		)
	}
}

// tableRows attributes written rows to tables. Entries are persisted in
// mapping order, each atomically, so the first entries summing to written
// are exactly the ones stored.
func tableRows(m model.Mapping, written int64) map[string]int64 {
	out := make(map[string]int64)
	var sum int64
	for _, e := range m.Entries() {
		n := int64(e.RowSet.Len())
		if sum+n > written {
			break
		}
		sum += n
		out[e.Key.Table] += n
	}
	return out
}
