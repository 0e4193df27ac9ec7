package queue

import (
	"context"

	"github.com/mbennett/easel/lib/locks"
)

// Task is a unit of work executed by the queue. The context passed to the
// task is the one supplied to Push.
type Task func(ctx context.Context) (any, error)

// IQueue is the interface of the dependency-aware scheduler.
//
// Per-process there is typically exactly one queue instance, created at
// application start and injected into the action synchronizer. It is an
// explicit object rather than package state so tests and embedders can run
// isolated schedulers side by side.
type IQueue interface {
	// Push enqueues a task annotated with the locks it reads and writes and
	// returns a Future that settles with the task's own outcome. The task
	// starts as soon as no in-flight task conflicts with it and the
	// concurrency budget has headroom.
	Push(ctx context.Context, task Task, reads, writes locks.Set) *Future

	// Length returns the number of tasks that have been pushed but not yet
	// started.
	Length() int
}
