// Package task implements the cooperative scheduler spec §5 supplements
// the evaluator with: a bounded pool of OS-thread-backed workers, each
// driving one Engine.Do call to its next suspension point (here, to
// completion — the recursive evaluator has no mid-expression
// suspension, so a "suspension point" is a task boundary, see
// DESIGN.md), with first-error-wins cancellation shared
// across the batch via errgroup's shared context.
package task

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"revolt/internal/cell"
)

// Unit is one schedulable piece of evaluator work: typically a closure
// over an *eval.Engine/*eval.Scope pair calling Do on one top-level
// program. Scheduler does not import package eval: it stays generic over
// any cell-producing, context-aware closure, the way the teacher's
// WorkerPool is generic over Job.Data/JobResult.Result.
type Unit func(ctx context.Context) (cell.Cell, error)

// Result mirrors the teacher's JobResult: the value (or error) one Unit
// produced.
type Result struct {
	Value cell.Cell
	Err   error
}

// Scheduler bounds how many Units run concurrently (spec §5: a fixed-size
// ready-list plus worker count, generalized here to a weighted semaphore
// instead of the teacher's fixed `[]*Worker` slice plus job/result
// channels, since Go's errgroup already gives us the wait-and-collect-
// first-error half of that shape for free).
type Scheduler struct {
	sem *semaphore.Weighted
}

// NewScheduler builds a scheduler that runs at most capacity Units
// concurrently.
func NewScheduler(capacity int64) *Scheduler {
	if capacity < 1 {
		capacity = 1
	}
	return &Scheduler{sem: semaphore.NewWeighted(capacity)}
}

// Run executes every unit, each under the capacity bound, returning one
// Result per unit in submission order. If any unit's context is
// cancelled (including by another unit's error, per errgroup.WithContext)
// remaining un-started units fail fast with ctx.Err() instead of running.
func (s *Scheduler) Run(ctx context.Context, units []Unit) ([]Result, error) {
	results := make([]Result, len(units))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			if err := s.sem.Acquire(gctx, 1); err != nil {
				results[i] = Result{Err: err}
				return err
			}
			defer s.sem.Release(1)
			v, err := u(gctx)
			results[i] = Result{Value: v, Err: err}
			return err
		})
	}
	err := g.Wait()
	return results, err
}

// RunOne runs a single unit under the scheduler's capacity bound, useful
// for a caller that wants the bound enforced (e.g. a halted engine
// refusing new work) without assembling a batch.
func (s *Scheduler) RunOne(ctx context.Context, u Unit) (cell.Cell, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return cell.Cell{}, err
	}
	defer s.sem.Release(1)
	return u(ctx)
}
