package workerpool

import (
	"context"
	"time"

	"github.com/vnykmshr/sqlflow/pkg/metrics"
)

// MetricsPool wraps a worker Pool with Prometheus metrics collection.
type MetricsPool struct {
	pool     Pool
	name     string
	registry *metrics.Registry
}

// NewWithMetrics wraps pool so that its tasks are reported under name.
// A disabled metrics configuration returns pool unchanged.
func NewWithMetrics(pool Pool, name string, metricsConfig metrics.Config) Pool {
	registry := metrics.FromConfig(metricsConfig)
	if registry == nil {
		return pool
	}

	mp := &MetricsPool{
		pool:     pool,
		name:     name,
		registry: registry,
	}
	mp.updateMetrics()

	return mp
}

// updateMetrics updates the current state metrics.
func (mp *MetricsPool) updateMetrics() {
	mp.registry.WorkerPoolSize.WithLabelValues(mp.name).Set(float64(mp.pool.Size()))
	mp.registry.WorkerPoolActive.WithLabelValues(mp.name).Set(float64(mp.pool.ActiveWorkers()))
}

// Submit adds a task to the pool for execution.
func (mp *MetricsPool) Submit(task Task) error {
	return mp.SubmitWithContext(context.Background(), task)
}

// SubmitWithContext submits a task with a context for cancellation.
func (mp *MetricsPool) SubmitWithContext(ctx context.Context, task Task) error {
	err := mp.pool.SubmitWithContext(ctx, &metricsTask{original: task, pool: mp})
	mp.updateMetrics()
	return err
}

// metricsTask wraps a Task to collect execution metrics.
type metricsTask struct {
	original Task
	pool     *MetricsPool
}

// Execute runs the original task and records metrics.
func (mt *metricsTask) Execute(ctx context.Context) error {
	start := time.Now()
	mt.pool.updateMetrics()

	err := mt.original.Execute(ctx)

	registry := mt.pool.registry
	registry.TaskExecutionDuration.WithLabelValues(mt.pool.name).Observe(time.Since(start).Seconds())
	registry.TasksExecuted.WithLabelValues(mt.pool.name).Inc()
	if err != nil {
		registry.TasksFailed.WithLabelValues(mt.pool.name).Inc()
	}

	return err
}

// Shutdown initiates graceful shutdown of the pool.
func (mp *MetricsPool) Shutdown() <-chan struct{} {
	return mp.pool.Shutdown()
}

// IsShutdown reports whether the wrapped pool is shut down.
func (mp *MetricsPool) IsShutdown() bool {
	return mp.pool.IsShutdown()
}

// Size returns the configured number of workers.
func (mp *MetricsPool) Size() int {
	return mp.pool.Size()
}

// ActiveWorkers returns the number of tasks currently executing.
func (mp *MetricsPool) ActiveWorkers() int {
	active := mp.pool.ActiveWorkers()
	mp.registry.WorkerPoolActive.WithLabelValues(mp.name).Set(float64(active))
	return active
}

// TotalSubmitted returns the total number of tasks submitted.
func (mp *MetricsPool) TotalSubmitted() int64 {
	return mp.pool.TotalSubmitted()
}

// TotalCompleted returns the total number of tasks completed.
func (mp *MetricsPool) TotalCompleted() int64 {
	return mp.pool.TotalCompleted()
}
