package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"revolt/internal/cell"
)

func TestSchedulerBoundsConcurrency(t *testing.T) {
	sch := NewScheduler(2)
	var current, max int64

	unit := func(ctx context.Context) (cell.Cell, error) {
		n := atomic.AddInt64(&current, 1)
		for {
			m := atomic.LoadInt64(&max)
			if n <= m || atomic.CompareAndSwapInt64(&max, m, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		return cell.Integer(int64(n)), nil
	}

	units := make([]Unit, 6)
	for i := range units {
		units[i] = unit
	}
	results, err := sch.Run(context.Background(), units)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	if atomic.LoadInt64(&max) > 2 {
		t.Fatalf("scheduler exceeded its capacity bound: saw %d concurrent units", max)
	}
}

func TestSchedulerPropagatesFirstError(t *testing.T) {
	sch := NewScheduler(4)
	boom := errors.New("boom")
	units := []Unit{
		func(ctx context.Context) (cell.Cell, error) { return cell.Integer(1), nil },
		func(ctx context.Context) (cell.Cell, error) { return cell.Cell{}, boom },
	}
	_, err := sch.Run(context.Background(), units)
	if err == nil {
		t.Fatalf("expected the failing unit's error to propagate")
	}
}

func TestRunOneRespectsCapacity(t *testing.T) {
	sch := NewScheduler(1)
	out, err := sch.RunOne(context.Background(), func(ctx context.Context) (cell.Cell, error) {
		return cell.Integer(7), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := out.AsInteger(); v != 7 {
		t.Fatalf("got %d, want 7", v)
	}
}
