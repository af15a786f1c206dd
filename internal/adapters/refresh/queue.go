// Package refresh reloads published tables in the background: a bounded
// job queue, a small loader pool, a per-table inflight guard, and an
// optional cron schedule.
package refresh

import (
	"context"
	"sync"

	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 64
)

// Refresh triggers reported in jobs and metrics.
const (
	TriggerStartup  = "startup"
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// Job asks the loader pool to reload one table.
type Job struct {
	Table   model.TableName
	Trigger string
}

// Queue provides non-blocking enqueue and channel-based dequeue
// semantics for refresh jobs.
type Queue struct {
	jobs     chan Job
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewQueue creates a bounded refresh queue.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateRefreshQueueCapacity(q.capacity)
	metrics.UpdateRefreshQueueSize(0)
	metrics.UpdateRefreshQueueUtilization(0.0)
	return q
}

// Enqueue adds a job without blocking. Returns false when the queue is
// full or closed; callers surface that as backpressure.
func (q *Queue) Enqueue(ctx context.Context, j Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordRefreshEnqueueError()
		metrics.RecordErrorByComponent("refresh", "queue_closed")
		return false
	}

	select {
	case q.jobs <- j:
		metrics.RecordRefreshEnqueued(j.Trigger)
		size := len(q.jobs)
		metrics.UpdateRefreshQueueSize(size)
		metrics.UpdateRefreshQueueUtilization(float64(size) / float64(q.capacity))
		return true
	case <-ctx.Done():
		metrics.RecordRefreshEnqueueError()
		metrics.RecordErrorByComponent("refresh", "context_cancelled")
		return false
	default:
		metrics.RecordRefreshEnqueueError()
		metrics.RecordErrorByComponent("refresh", "queue_full")
		return false
	}
}

// Dequeue returns the channel workers consume jobs from. The channel is
// closed when the queue is closed.
func (q *Queue) Dequeue() <-chan Job {
	return q.jobs
}

// Len returns the current number of pending jobs.
func (q *Queue) Len() int {
	size := len(q.jobs)
	metrics.UpdateRefreshQueueSize(size)
	metrics.UpdateRefreshQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close shuts down the queue. After closing, no new jobs can be
// enqueued and the dequeue channel drains then closes.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *Queue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
