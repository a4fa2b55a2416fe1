/*
Package workerpool provides the task executors that run sqlflow's asynchronous work.

Every asynchronous operation in sqlflow, such as a resource scope, a query
stream producer or a scheduled statement, is a Task submitted to a Pool. A
Pool either runs a fixed number of worker goroutines over a bounded queue or,
when WorkerCount is zero, starts one goroutine per task.

Basic usage:

	pool := workerpool.New(4, 100) // 4 workers, queue size 100

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		// Do work
		return nil
	})

	if err := pool.Submit(task); err != nil {
		log.Printf("Failed to submit: %v", err)
	}

	<-pool.Shutdown()

Unbounded Pools:

Query streams keep their producer task running until the consumer has drained
the rows. A bounded pool whose workers are all held by producers cannot start
the next one, so the default executor is unbounded:

	pool := workerpool.NewUnbounded()

Configuration Options:

	config := workerpool.Config{
		WorkerCount: 8,
		QueueSize:   1000,
		TaskTimeout: 30 * time.Second,
		PanicHandler: func(task workerpool.Task, recovered interface{}) {
			log.Printf("Task panicked: %v", recovered)
		},
		OnTaskComplete: func(workerID int, result workerpool.Result) {
			log.Printf("Worker %d completed task in %v", workerID, result.Duration)
		},
	}
	pool := workerpool.NewWithConfig(config)

In unbounded mode the workerID passed to callbacks is the task's submission
sequence number.

Task results are delivered through OnTaskComplete. Panics are recovered,
logged through the configured slog.Logger and reported as task errors.

Shared Pools:

A Provider hands out a lazily created pool and creates a new one if the
previous pool was shut down. It implements Pool itself:

	provider := workerpool.NewProvider(nil)
	provider.Submit(task)

	// Swap in a bounded pool. The caller owns the returned one.
	old := provider.Replace(workerpool.New(16, 256))
	<-old.Shutdown()

Metrics:

NewWithMetrics wraps any Pool and reports submissions, durations and failures
to Prometheus:

	pool := workerpool.NewWithMetrics(workerpool.NewUnbounded(), "queries", metrics.DefaultConfig())

Graceful Shutdown:

Shutdown stops accepting tasks, lets queued and running tasks finish and
closes the returned channel once every goroutine has exited. Submitting to a
shut-down pool returns an error wrapping errors.ErrClosed.

Thread Safety:

All pool operations are safe for concurrent use from multiple goroutines.
*/
package workerpool
