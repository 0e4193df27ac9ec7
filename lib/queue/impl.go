package queue

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/mbennett/easel/lib/locks"
)

var Logger = logger.GetLogger("queue")

// DefaultBudget is used when the hardware parallelism cannot be detected.
const DefaultBudget = 8

var (
	tasksPushed    = metrics.GetOrCreateCounter("easel_queue_tasks_pushed_total")
	tasksStarted   = metrics.GetOrCreateCounter("easel_queue_tasks_started_total")
	tasksSucceeded = metrics.GetOrCreateCounter("easel_queue_tasks_succeeded_total")
	tasksFailed    = metrics.GetOrCreateCounter("easel_queue_tasks_failed_total")
)

// queuedTask is a pending or running unit of work together with its
// declared lock sets and bookkeeping timestamps.
type queuedTask struct {
	ctx        context.Context
	task       Task
	reads      locks.Set
	writes     locks.Set
	future     *Future
	enqueuedAt time.Time
}

type queueImpl struct {
	mu       sync.Mutex
	budget   int
	backlog  []*queuedTask            // FIFO among not-yet-started tasks
	inflight map[*queuedTask]struct{} // currently running tasks
}

// New creates a queue with the given concurrency budget. A budget <= 0
// selects the detected hardware parallelism, or DefaultBudget if that is
// unavailable.
func New(budget int) IQueue {
	if budget <= 0 {
		budget = runtime.NumCPU()
	}
	if budget <= 0 {
		budget = DefaultBudget
	}

	return &queueImpl{
		budget:   budget,
		inflight: make(map[*queuedTask]struct{}),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (q *queueImpl) Push(ctx context.Context, task Task, reads, writes locks.Set) *Future {
	if task == nil {
		// Programmer error, the queue itself never fails otherwise.
		return resolvedFuture(nil, fmt.Errorf("queue: nil task"))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	qt := &queuedTask{
		ctx:        ctx,
		task:       task,
		reads:      reads,
		writes:     writes,
		future:     newFuture(),
		enqueuedAt: time.Now(),
	}

	tasksPushed.Inc()

	q.mu.Lock()
	q.backlog = append(q.backlog, qt)
	Logger.Debugf("pushed task (reads=[%s] writes=[%s]), backlog=%d inflight=%d",
		reads, writes, len(q.backlog), len(q.inflight))
	q.admit()
	q.mu.Unlock()

	return qt.future
}

func (q *queueImpl) Length() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// --------------------------------------------------------------------------
// Admission
// --------------------------------------------------------------------------

// admit performs one admission pass: it scans the backlog in FIFO order and
// starts every task that is eligible against the in-flight set, until the
// budget is exhausted. Earlier-enqueued eligible tasks are preferred, but a
// later eligible task is not held back by an earlier ineligible one.
//
// Must be called with q.mu held.
func (q *queueImpl) admit() {
	if len(q.backlog) == 0 {
		return
	}

	remaining := q.backlog[:0]
	for i, qt := range q.backlog {
		if len(q.inflight) >= q.budget {
			// Budget exhausted, keep the rest of the backlog untouched.
			remaining = append(remaining, q.backlog[i:]...)
			break
		}
		if q.eligible(qt) {
			q.inflight[qt] = struct{}{}
			tasksStarted.Inc()
			go q.run(qt)
		} else {
			remaining = append(remaining, qt)
		}
	}
	q.backlog = remaining
}

// eligible reports whether the candidate conflicts with no in-flight task
// under the readers/writers rule.
//
// Must be called with q.mu held.
func (q *queueImpl) eligible(qt *queuedTask) bool {
	for other := range q.inflight {
		if locks.Conflicts(qt.reads, qt.writes, other.reads, other.writes) {
			return false
		}
	}
	return true
}

// run executes one admitted task and triggers the next admission pass once
// it settles, on success and on failure alike.
func (q *queueImpl) run(qt *queuedTask) {
	waited := time.Since(qt.enqueuedAt)
	Logger.Debugf("starting task after %s in backlog (reads=[%s] writes=[%s])",
		waited, qt.reads, qt.writes)

	value, err := qt.task(qt.ctx)

	if err != nil {
		tasksFailed.Inc()
	} else {
		tasksSucceeded.Inc()
	}

	q.mu.Lock()
	delete(q.inflight, qt)
	// Settle before admitting successors so that a dependent observer never
	// sees a conflicting task start ahead of this task's completion.
	qt.future.resolve(value, err)
	q.admit()
	q.mu.Unlock()
}
