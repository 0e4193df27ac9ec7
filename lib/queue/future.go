package queue

import "context"

// Future is the pending result of a pushed task. It settles exactly once,
// with either the task's value or its error, and never both.
type Future struct {
	done  chan struct{}
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolve settles the future. Must be called at most once.
func (f *Future) resolve(value any, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// Done returns a channel that is closed once the future has settled. This
// allows futures to be combined in select statements.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or the context is cancelled. A
// cancelled context abandons the wait, not the task: the task keeps running
// and the future will still settle.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Value returns the settled value. Only valid after Done is closed.
func (f *Future) Value() any {
	return f.value
}

// Err returns the settled error. Only valid after Done is closed.
func (f *Future) Err() error {
	return f.err
}

// resolvedFuture creates an already-settled future. Used for programmer
// errors detected at push time.
func resolvedFuture(value any, err error) *Future {
	f := newFuture()
	f.resolve(value, err)
	return f
}
