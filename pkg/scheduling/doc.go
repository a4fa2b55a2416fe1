/*
Package scheduling provides the execution primitives the resource-scope
executor runs on.

  - workerpool: bounded and unbounded pools that run Tasks, plus a Provider
    that recreates a pool after it has been shut down
  - scheduler: one-time, interval and cron scheduling of Tasks onto a pool

Worker Pool:

	pool := workerpool.New(4, 100) // 4 workers, queue size 100
	defer func() { <-pool.Shutdown() }()

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		// Do work
		return nil
	})
	_ = pool.Submit(task)

Task Scheduler:

	s := scheduler.NewWithConfig(scheduler.Config{WorkerPool: pool})
	_ = s.Start()
	defer func() { <-s.Stop() }()

	_ = s.ScheduleAfter("warmup", task, time.Minute)
	_ = s.ScheduleRepeating("refresh", task, time.Hour)
	_ = s.ScheduleCron("report", "0 0 9 * * MON-FRI", task) // Weekdays at 9 AM

scope.ScheduleCron and scope.ScheduleEvery wrap a job so that every run
gets its own connection scope.
*/
package scheduling
