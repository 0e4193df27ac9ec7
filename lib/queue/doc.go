// Package queue implements a dependency-aware asynchronous task scheduler.
//
// Every task pushed into the queue is annotated with the lock sets it reads
// and writes (see the locks package). The scheduler runs as many mutually
// compatible tasks concurrently as its budget allows and defers any task
// whose declared locks conflict with a task that is already in flight.
//
// Features and Guarantees:
//
//   - Readers/writers admission: two tasks may run concurrently unless one
//     writes a lock the other reads or writes. Two readers never conflict.
//   - Concurrency budget: the number of in-flight tasks never exceeds the
//     configured budget. By default the budget is derived from the detected
//     hardware parallelism (falling back to 8).
//   - FIFO-per-admissibility: the backlog is scanned in enqueue order and
//     earlier tasks are preferred, but an eligible task is never blocked
//     behind an earlier task that is itself ineligible.
//   - Transparent failure: a task's error is delivered unchanged through its
//     Future; one task failing never affects the rest of the backlog.
//
// There is no cancellation and no timeout: once pushed, a task will
// eventually be started, and a task that never returns occupies a budget
// slot indefinitely. Callers own that risk.
//
// Usage Example:
//
//	q := queue.New(0) // budget from hardware parallelism
//
//	fut := q.Push(ctx, func(ctx context.Context) (any, error) {
//	    return doWork(ctx)
//	}, locks.NewSet(locks.LockDocument), locks.NewSet())
//
//	result, err := fut.Await(ctx)
//
// Thread Safety:
//
//	All methods are safe for concurrent use. The scheduler itself holds its
//	internal mutex only for admission decisions, never while a task runs.
package queue
