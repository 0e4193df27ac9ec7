package action

import (
	"context"
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/mbennett/easel/lib/locks"
	"github.com/mbennett/easel/lib/queue"
)

var Logger = logger.GetLogger("action")

// Synchronizer rewrites action modules so that every call is mediated by a
// shared dependency-aware queue. One synchronizer (and one queue) exists per
// process, created at application start and injected here - there is no
// hidden global instance.
type Synchronizer struct {
	queue queue.IQueue
}

// NewSynchronizer creates a synchronizer on top of the given queue.
func NewSynchronizer(q queue.IQueue) *Synchronizer {
	return &Synchronizer{queue: q}
}

// --------------------------------------------------------------------------
// Module transformation
// --------------------------------------------------------------------------

// SynchronizeModule returns a module with identical keys where every action
// enqueues its command instead of running it. The module name is only used
// for telemetry and logging.
func (s *Synchronizer) SynchronizeModule(name string, m Module) SyncModule {
	out := make(SyncModule, len(m))
	for actionName, desc := range m {
		out[actionName] = s.synchronize(name, actionName, desc)
	}
	return out
}

// SynchronizeAllModules applies SynchronizeModule to every module in the
// collection, producing a parallel collection with identical shape.
func (s *Synchronizer) SynchronizeAllModules(modules map[string]Module) map[string]SyncModule {
	out := make(map[string]SyncModule, len(modules))
	for name, m := range modules {
		out[name] = s.SynchronizeModule(name, m)
	}
	return out
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// lockSet converts a declared lock list to a set, defaulting to all locks
// when the declaration is omitted.
func lockSet(declared []locks.Lock) locks.Set {
	if declared == nil {
		return locks.All()
	}
	return locks.NewSet(declared...)
}

// synchronize builds the queue-mediated wrapper for a single action.
func (s *Synchronizer) synchronize(module, name string, desc Descriptor) SyncAction {
	reads := lockSet(desc.Reads)
	writes := lockSet(desc.Writes)

	waitMetric := actionMetric("easel_action_wait_seconds", module, name)
	execMetric := actionMetric("easel_action_exec_seconds", module, name)
	totalMetric := actionMetric("easel_action_roundtrip_seconds", module, name)

	return func(ctx context.Context, args ...any) *queue.Future {
		enqueuedAt := time.Now()
		Logger.Debugf("enqueue %s.%s, queue depth %d", module, name, s.queue.Length())

		return s.queue.Push(ctx, func(ctx context.Context) (any, error) {
			startedAt := time.Now()
			waitMetric.UpdateDuration(enqueuedAt)

			value, err := desc.Command(ctx, args...)

			// Telemetry runs on both outcomes and never alters them.
			now := time.Now()
			execMetric.UpdateDuration(startedAt)
			totalMetric.UpdateDuration(enqueuedAt)
			Logger.Debugf("%s.%s waited %s, ran %s, total %s (err=%v)",
				module, name, startedAt.Sub(enqueuedAt), now.Sub(startedAt), now.Sub(enqueuedAt), err)

			return value, err
		}, reads, writes)
	}
}

// actionMetric returns the per-action histogram for the given metric name.
func actionMetric(metric, module, name string) *metrics.Histogram {
	return metrics.GetOrCreateHistogram(fmt.Sprintf(`%s{module=%q, action=%q}`, metric, module, name))
}
