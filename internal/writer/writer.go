package writer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/binance-collector/internal/model"
)

// Store hands out per-cycle sessions against one database.
type Store interface {
	// Session reserves one connection for the duration of a cycle.
	Session(ctx context.Context) (Session, error)
	Ping(ctx context.Context) error
	Close() error
}

// Session appends row sets over a single connection.
type Session interface {
	// Append inserts every row of rs into its table atomically and returns
	// the number of rows inserted.
	Append(ctx context.Context, rs model.RowSet) (int64, error)
	Close() error
}

// PersistenceError reports the table whose append failed. Written is the
// number of rows stored by earlier appends of the same cycle.
type PersistenceError struct {
	Table   string
	Symbol  string
	Written int64
	Err     error
}

func (e *PersistenceError) Error() string {
	key := model.Key{Table: e.Table, Symbol: e.Symbol}
	return fmt.Sprintf("persist %s: %v (%d rows written before failure)", key, e.Err, e.Written)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Writer persists reassembled cycles. Writes are append-only.
type Writer struct {
	store  Store
	logger *slog.Logger
}

// New creates a new Writer.
func New(store Store, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		store:  store,
		logger: logger,
	}
}

// Persist appends every entry of m, in order, over one session. The first
// failing append stops the cycle; entries before it keep their rows.
func (w *Writer) Persist(ctx context.Context, m model.Mapping) (int64, error) {
	sess, err := w.store.Session(ctx)
	if err != nil {
		return 0, fmt.Errorf("open store session: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			w.logger.Warn("failed to close store session", "err", err)
		}
	}()

	var written int64
	for _, e := range m.Entries() {
		if e.RowSet.Len() == 0 {
			w.logger.Debug("skipping empty row set", "key", e.Key.String())
			continue
		}
		if err := e.RowSet.Validate(); err != nil {
			return written, &PersistenceError{Table: e.Key.Table, Symbol: e.Key.Symbol, Written: written, Err: err}
		}

		start := time.Now()
		n, err := sess.Append(ctx, e.RowSet)
		if err != nil {
			return written, &PersistenceError{Table: e.Key.Table, Symbol: e.Key.Symbol, Written: written, Err: err}
		}
		written += n

		w.logger.Debug("appended rows",
			"key", e.Key.String(),
			"count", n,
			"duration", time.Since(start),
		)
	}

	return written, nil
}
