package workerpool

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
)

// Submit adds a task to the pool for execution.
// The task will be executed with context.Background().
// Use SubmitWithContext to provide a custom context.
func (p *workerPool) Submit(task Task) error {
	return p.SubmitWithContext(context.Background(), task)
}

// SubmitWithContext adds a task to the pool for execution with the given context.
// The context is passed to the task's Execute method, enabling timeout and
// cancellation propagation. If the pool has a TaskTimeout configured, the
// effective timeout will be the minimum of the context deadline and TaskTimeout.
func (p *workerPool) SubmitWithContext(ctx context.Context, task Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	// Holding the read lock across the hand-off keeps Shutdown from
	// completing while a submission is in flight.
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.isShutdown {
		return fmt.Errorf("cannot submit task: worker pool has been shut down: %w", sferrors.ErrClosed)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("cannot submit task: context canceled: %w", ctx.Err())
	default:
	}

	twc := taskWithContext{
		task: task,
		ctx:  ctx,
	}

	if p.taskQueue == nil {
		p.totalSubmitted.Add(1)
		p.taskWg.Add(1)
		id := int(p.sequence.Add(1))
		go func() {
			defer p.taskWg.Done()
			p.executeTask(id, twc)
		}()
		return nil
	}

	select {
	case p.taskQueue <- twc:
		p.totalSubmitted.Add(1)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cannot submit task: context canceled: %w", ctx.Err())
	}
}

// Shutdown initiates a graceful shutdown of the pool.
func (p *workerPool) Shutdown() <-chan struct{} {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.isShutdown = true
		p.mu.Unlock()

		// Signal shutdown to all workers
		close(p.shutdownCh)

		go func() {
			p.workerWg.Wait()
			p.taskWg.Wait()
			close(p.done)
		}()
	})

	return p.done
}

// IsShutdown reports whether Shutdown has been called.
func (p *workerPool) IsShutdown() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isShutdown
}

// Size returns the number of workers in the pool.
func (p *workerPool) Size() int {
	return p.config.WorkerCount
}

// ActiveWorkers returns the number of tasks currently executing.
func (p *workerPool) ActiveWorkers() int {
	return int(p.activeWorkers.Load())
}

// TotalSubmitted returns the total number of tasks accepted by the pool.
func (p *workerPool) TotalSubmitted() int64 {
	return p.totalSubmitted.Load()
}

// TotalCompleted returns the total number of tasks that finished executing.
func (p *workerPool) TotalCompleted() int64 {
	return p.totalCompleted.Load()
}

// runWorker is the main loop for a fixed worker.
func (p *workerPool) runWorker(id int) {
	defer p.workerWg.Done()

	for {
		select {
		case twc := <-p.taskQueue:
			p.executeTask(id, twc)
		case <-p.shutdownCh:
			// Finish whatever was queued before shutdown
			for {
				select {
				case twc := <-p.taskQueue:
					p.executeTask(id, twc)
				default:
					return
				}
			}
		}
	}
}

// executeTask executes a single task with the provided context.
func (p *workerPool) executeTask(workerID int, twc taskWithContext) {
	start := time.Now()
	var err error

	p.activeWorkers.Add(1)
	if p.config.OnTaskStart != nil {
		p.config.OnTaskStart(workerID, twc.task)
	}

	// Handle panics during task execution
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v\nStack trace:\n%s", r, debug.Stack())
			p.logger.Error("worker pool task panicked", "worker", workerID, "panic", r)
			if p.config.PanicHandler != nil {
				p.config.PanicHandler(twc.task, r)
			}
		}

		p.activeWorkers.Add(-1)
		p.totalCompleted.Add(1)

		if p.config.OnTaskComplete != nil {
			p.config.OnTaskComplete(workerID, Result{
				Task:     twc.task,
				Error:    err,
				Duration: time.Since(start),
				WorkerID: workerID,
			})
		}
	}()

	ctx := twc.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	// Apply TaskTimeout if configured
	// The effective timeout is the minimum of the context deadline and TaskTimeout
	if p.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.TaskTimeout)
		defer cancel()
	}

	err = twc.task.Execute(ctx)
}
