// Package queue hands rendered reports to the writers.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/devops-chapter/skills-analysis/internal/adapters/report"
	"github.com/devops-chapter/skills-analysis/pkg/metrics"
)

const defaultCapacity = 64

// Task is one report waiting to be written. Seq orders results.
type Task struct {
	Seq     int
	Process string
	Name    string
	Table   report.Table
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a task. It fails with ErrFull or ErrClosed instead of
	// blocking.
	Enqueue(ctx context.Context, t Task) error

	// Dequeue returns the channel tasks are read from. It is closed once the
	// queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Task

	Len() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	tasks    chan Task
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan Task, q.capacity)
	metrics.UpdatePendingReports(0)
	return q
}

// Enqueue adds a task to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) error { //nolint:gocritic // hugeParam: Task is passed by value for channel semantics
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("%w: %s", ErrClosed, t.Name)
	}

	select {
	case q.tasks <- t:
		metrics.UpdatePendingReports(len(q.tasks))
		return nil
	default:
		return fmt.Errorf("%w: %d tasks pending", ErrFull, len(q.tasks))
	}
}

// Dequeue returns a channel that receives tasks as they become available.
// Several consumers may share one queue.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Task {
	out := make(chan Task)
	go func() {
		defer close(out)
		for t := range q.tasks {
			select {
			case out <- t:
				metrics.UpdatePendingReports(len(q.tasks))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of queued tasks.
func (q *InMemoryQueue) Len() int {
	return len(q.tasks)
}

// Close stops accepting tasks. Queued tasks are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.tasks)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
