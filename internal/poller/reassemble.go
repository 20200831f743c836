package poller

import (
	"errors"
	"fmt"

	"github.com/rickgao/binance-collector/internal/model"
)

var (
	// ErrLengthMismatch means the result count differs from the task count.
	ErrLengthMismatch = errors.New("result count does not match task count")
	// ErrTagMismatch means a result is tagged with a different (kind, symbol)
	// than the task at the same position.
	ErrTagMismatch = errors.New("result tag does not match task")
	// ErrDuplicateKey means two tasks map to the same (table, symbol).
	ErrDuplicateKey = errors.New("duplicate (table, symbol) key")
)

// Reassemble pairs each task with its result and returns them keyed by
// (table, symbol) in task order. It does not modify its inputs.
func Reassemble(tasks []model.FetchTask, results []model.RowSet) (model.Mapping, error) {
	if len(tasks) != len(results) {
		return model.Mapping{}, fmt.Errorf("%w: %d results for %d tasks", ErrLengthMismatch, len(results), len(tasks))
	}

	seen := make(map[model.Key]struct{}, len(tasks))
	entries := make([]model.Entry, len(tasks))
	for i, task := range tasks {
		rs := results[i]
		if !task.Kind.Valid() {
			return model.Mapping{}, fmt.Errorf("task %d: unknown kind %s", i, task.Kind)
		}
		if rs.Kind != task.Kind || rs.Symbol != task.Symbol {
			return model.Mapping{}, fmt.Errorf("%w: position %d holds %s, task is %s", ErrTagMismatch, i, rs.Key(), task.Key())
		}

		key := task.Key()
		if _, dup := seen[key]; dup {
			return model.Mapping{}, fmt.Errorf("%w: %s", ErrDuplicateKey, key)
		}
		seen[key] = struct{}{}
		entries[i] = model.Entry{Key: key, RowSet: rs}
	}

	return model.NewMapping(entries)
}
