// Package worker writes queued reports. A Pool can run several writers; the
// analysis pipeline always runs one, so its writes stay sequential.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/devops-chapter/skills-analysis/internal/adapters/mq/queue"
	"github.com/devops-chapter/skills-analysis/internal/adapters/report"
	"github.com/devops-chapter/skills-analysis/pkg/logger"
	"github.com/devops-chapter/skills-analysis/pkg/metrics"
)

// Writer persists one report table and returns the path written.
type Writer interface {
	Write(ctx context.Context, name string, t report.Table) (string, error)
	Format() string
}

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Task
}

// Result is the outcome of one task.
type Result struct {
	Task queue.Task
	Path string
	Err  error
}

// InMemoryWorker writes tasks read off a queue.
type InMemoryWorker struct {
	queue  Queue
	writer Writer
	name   string
	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, w Writer, opts ...Option) *InMemoryWorker {
	wk := &InMemoryWorker{
		queue:  q,
		writer: w,
		name:   "worker",
		logger: logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(wk)
	}
	if wk.name != "worker" {
		wk.logger = wk.logger.With(logger.String("worker", wk.name))
	}
	return wk
}

// Run processes tasks until the queue is drained or ctx is cancelled.
// Every processed task is passed to emit.
func (w *InMemoryWorker) Run(ctx context.Context, emit func(Result)) {
	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			emit(w.process(ctx, t))
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, t queue.Task) Result { //nolint:gocritic // hugeParam: Task is passed by value for channel semantics
	path, err := w.writer.Write(ctx, t.Name, t.Table)
	if err != nil {
		metrics.RecordReportError(t.Process)
		w.logger.Error(ctx, "report write failed",
			logger.String("process", t.Process),
			logger.String("report", t.Name),
			logger.Error(err),
		)
		return Result{Task: t, Err: fmt.Errorf("%s: %w", t.Name, err)}
	}

	metrics.RecordReportWritten(t.Process, w.writer.Format())
	w.logger.Debug(ctx, "report written",
		logger.String("process", t.Process),
		logger.String("path", path),
		logger.Int("rows", len(t.Table.Rows)),
	)
	return Result{Task: t, Path: path}
}

// Pool runs several workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	logger  logger.Logger
}

// NewPool creates a pool of count workers. A count below 1 uses one worker
// per CPU.
func NewPool(count int, q Queue, w Writer, opts ...Option) *Pool {
	if count < 1 {
		count = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, count),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, w, wopts...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Run starts every worker and blocks until the queue is closed and drained
// or ctx is cancelled. Results are ordered by task sequence.
func (p *Pool) Run(ctx context.Context) []Result {
	var (
		mu      sync.Mutex
		results []Result
		wg      sync.WaitGroup
		active  atomic.Int64
	)
	emit := func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	for _, w := range p.workers {
		wg.Add(1)
		metrics.UpdateActiveWriters(int(active.Add(1)))
		go func(w *InMemoryWorker) {
			defer wg.Done()
			defer func() { metrics.UpdateActiveWriters(int(active.Add(-1))) }()
			w.Run(ctx, emit)
		}(w)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Task.Seq < results[j].Task.Seq
	})
	p.logger.Debug(ctx, "report writers finished", logger.Int("results", len(results)))
	return results
}
