package poller

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/binance-collector/internal/model"
)

// Fetcher performs one fetch task.
type Fetcher interface {
	Fetch(ctx context.Context, task model.FetchTask) (model.RowSet, error)
}

// FetcherFunc is a function adapter for Fetcher.
type FetcherFunc func(context.Context, model.FetchTask) (model.RowSet, error)

func (f FetcherFunc) Fetch(ctx context.Context, task model.FetchTask) (model.RowSet, error) {
	return f(ctx, task)
}

// TaskError is the failure of one fetch task.
type TaskError struct {
	Task model.FetchTask
	Err  error
}

func (e TaskError) Error() string {
	return fmt.Sprintf("%s: %v", e.Task, e.Err)
}

func (e TaskError) Unwrap() error {
	return e.Err
}

// JoinError reports that one or more fetches of a cycle failed. Failures
// are listed in task order.
type JoinError struct {
	Total    int
	Failures []TaskError
}

func (e *JoinError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%d of %d fetches failed: %s", len(e.Failures), e.Total, strings.Join(parts, "; "))
}

func (e *JoinError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Tasks returns the identities of the failed tasks.
func (e *JoinError) Tasks() []string {
	out := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Task.String()
	}
	return out
}

// Execute runs every task concurrently and waits for all of them. On
// success results[i] is the outcome of tasks[i]. If any task failed no
// results are returned and the error is a *JoinError naming every failure.
// limit caps the number of fetches in flight; zero means unbounded.
func Execute(ctx context.Context, f Fetcher, tasks []model.FetchTask, limit int) ([]model.RowSet, error) {
	results := make([]model.RowSet, len(tasks))
	errs := make([]error, len(tasks))

	// A plain Group: one failure must not cancel the siblings.
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, task := range tasks {
		g.Go(func() error {
			rs, err := f.Fetch(ctx, task)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = rs
			return nil
		})
	}
	_ = g.Wait()

	var failures []TaskError
	for i, err := range errs {
		if err != nil {
			failures = append(failures, TaskError{Task: tasks[i], Err: err})
		}
	}
	if len(failures) > 0 {
		return nil, &JoinError{Total: len(tasks), Failures: failures}
	}

	return results, nil
}
