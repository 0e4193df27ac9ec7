package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mbennett/easel/lib/locks"
)

// awaitAll waits for all futures with a per-test timeout.
func awaitAll(t *testing.T, futures ...*Future) {
	t.Helper()
	for i, f := range futures {
		select {
		case <-f.Done():
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for future %d", i)
		}
	}
}

// TestResultPropagation verifies that values and errors pass through the
// queue unchanged.
func TestResultPropagation(t *testing.T) {
	q := New(2)
	ctx := context.Background()

	okFut := q.Push(ctx, func(context.Context) (any, error) {
		return 42, nil
	}, locks.NewSet(locks.LockApp), locks.NewSet())

	wantErr := errors.New("host rejected the command")
	errFut := q.Push(ctx, func(context.Context) (any, error) {
		return nil, wantErr
	}, locks.NewSet(locks.LockTool), locks.NewSet())

	v, err := okFut.Await(ctx)
	if err != nil || v != 42 {
		t.Fatalf("Await() = (%v, %v), want (42, nil)", v, err)
	}

	if _, err := errFut.Await(ctx); !errors.Is(err, wantErr) {
		t.Fatalf("Await() err = %v, want %v", err, wantErr)
	}
}

// TestConflictingWritersRunSequentially pushes N tasks that all write the
// same lock and verifies strictly sequential execution.
func TestConflictingWritersRunSequentially(t *testing.T) {
	q := New(8)
	ctx := context.Background()

	const n = 16
	var running atomic.Int32
	var order []int
	var orderMu sync.Mutex

	futures := make([]*Future, n)
	for i := 0; i < n; i++ {
		i := i
		futures[i] = q.Push(ctx, func(context.Context) (any, error) {
			if running.Add(1) > 1 {
				t.Errorf("two writers of the same lock ran concurrently")
			}
			time.Sleep(time.Millisecond)
			orderMu.Lock()
			order = append(order, i)
			orderMu.Unlock()
			running.Add(-1)
			return nil, nil
		}, locks.NewSet(), locks.NewSet(locks.LockDocument))
	}

	awaitAll(t, futures...)

	// Equally-eligible tasks are admitted in enqueue order.
	for i, got := range order {
		if got != i {
			t.Fatalf("execution order %v, want strictly FIFO", order)
		}
	}

	if l := q.Length(); l != 0 {
		t.Fatalf("Length() = %d after drain, want 0", l)
	}
}

// TestDisjointTasksRunConcurrently verifies that tasks with fully disjoint
// lock sets are all admitted without artificial serialization.
func TestDisjointTasksRunConcurrently(t *testing.T) {
	const n = 4
	q := New(n)
	ctx := context.Background()

	lockNames := []locks.Lock{locks.LockApp, locks.LockDocument, locks.LockTool, locks.LockHistory}

	var wg sync.WaitGroup
	wg.Add(n)
	barrier := make(chan struct{})

	futures := make([]*Future, n)
	for i := 0; i < n; i++ {
		l := lockNames[i]
		futures[i] = q.Push(ctx, func(context.Context) (any, error) {
			wg.Done()
			// Block until every task has started: only possible if all n
			// were admitted concurrently.
			<-barrier
			return nil, nil
		}, locks.NewSet(), locks.NewSet(l))
	}

	started := make(chan struct{})
	go func() {
		wg.Wait()
		close(started)
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("disjoint tasks were not admitted concurrently")
	}
	close(barrier)
	awaitAll(t, futures...)
}

// TestBudgetCeiling verifies that the in-flight count never exceeds the
// configured budget even for fully compatible tasks.
func TestBudgetCeiling(t *testing.T) {
	const budget = 3
	q := New(budget)
	ctx := context.Background()

	var inflight, peak atomic.Int32

	const n = 24
	futures := make([]*Future, n)
	for i := 0; i < n; i++ {
		futures[i] = q.Push(ctx, func(context.Context) (any, error) {
			cur := inflight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inflight.Add(-1)
			return nil, nil
		}, locks.NewSet(locks.LockDocument), locks.NewSet()) // readers never conflict
	}

	awaitAll(t, futures...)

	if p := peak.Load(); p > budget {
		t.Fatalf("peak in-flight = %d, exceeds budget %d", p, budget)
	}
}

// TestBudgetOneSerializes checks the smallest queue: budget 1, two writers
// of the same lock; the second must not start before the first settles.
func TestBudgetOneSerializes(t *testing.T) {
	q := New(1)
	ctx := context.Background()

	t1Done := make(chan struct{})
	release := make(chan struct{})

	f1 := q.Push(ctx, func(context.Context) (any, error) {
		<-release
		close(t1Done)
		return "t1", nil
	}, locks.NewSet(), locks.NewSet(locks.LockApp))

	f2 := q.Push(ctx, func(context.Context) (any, error) {
		select {
		case <-t1Done:
		default:
			t.Error("t2 started before t1 completed")
		}
		return "t2", nil
	}, locks.NewSet(), locks.NewSet(locks.LockApp))

	// t1 is running, t2 must still sit in the backlog.
	time.Sleep(10 * time.Millisecond)
	if l := q.Length(); l != 1 {
		t.Fatalf("Length() = %d while t1 runs, want 1", l)
	}

	close(release)
	awaitAll(t, f1, f2)

	if l := q.Length(); l != 0 {
		t.Fatalf("Length() = %d after drain, want 0", l)
	}
}

// TestEligibleTaskOvertakesBlockedOne verifies that an eligible task is not
// held back behind an earlier-enqueued ineligible one.
func TestEligibleTaskOvertakesBlockedOne(t *testing.T) {
	q := New(2)
	ctx := context.Background()

	release := make(chan struct{})

	// Occupies the document lock until released.
	blocker := q.Push(ctx, func(context.Context) (any, error) {
		<-release
		return nil, nil
	}, locks.NewSet(), locks.NewSet(locks.LockDocument))

	// Conflicts with the blocker, must wait.
	blocked := q.Push(ctx, func(context.Context) (any, error) {
		return nil, nil
	}, locks.NewSet(locks.LockDocument), locks.NewSet())

	// Enqueued last but touches an unrelated lock: must run immediately.
	overtaker := q.Push(ctx, func(context.Context) (any, error) {
		return "done", nil
	}, locks.NewSet(), locks.NewSet(locks.LockTool))

	select {
	case <-overtaker.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("unrelated task was blocked behind an ineligible predecessor")
	}

	close(release)
	awaitAll(t, blocker, blocked)
}

// TestFailureDoesNotStallQueue verifies that a failing task does not affect
// subsequent backlog processing.
func TestFailureDoesNotStallQueue(t *testing.T) {
	q := New(1)
	ctx := context.Background()

	f1 := q.Push(ctx, func(context.Context) (any, error) {
		return nil, errors.New("boom")
	}, locks.NewSet(), locks.NewSet(locks.LockApp))

	f2 := q.Push(ctx, func(context.Context) (any, error) {
		return "survived", nil
	}, locks.NewSet(), locks.NewSet(locks.LockApp))

	awaitAll(t, f1, f2)

	if f1.Err() == nil {
		t.Fatal("expected error from first task")
	}
	if v := f2.Value(); v != "survived" {
		t.Fatalf("second task value = %v, want %q", v, "survived")
	}
}

// TestNilTask verifies the programmer-error path.
func TestNilTask(t *testing.T) {
	q := New(1)

	f := q.Push(context.Background(), nil, locks.NewSet(), locks.NewSet())
	if _, err := f.Await(context.Background()); err == nil {
		t.Fatal("expected error for nil task")
	}
}

// TestAwaitHonorsContext verifies that Await abandons the wait when the
// caller's context ends, while the task itself keeps running.
func TestAwaitHonorsContext(t *testing.T) {
	q := New(1)

	release := make(chan struct{})
	f := q.Push(context.Background(), func(context.Context) (any, error) {
		<-release
		return nil, nil
	}, locks.NewSet(), locks.NewSet())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Await(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Await() err = %v, want context.Canceled", err)
	}

	close(release)
	awaitAll(t, f)
	if f.Err() != nil {
		t.Fatalf("task err = %v, want nil", f.Err())
	}
}
