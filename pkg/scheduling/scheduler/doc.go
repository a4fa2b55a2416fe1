/*
Package scheduler submits tasks to a worker pool at a point in time, at a
fixed interval or on a cron schedule.

Basic Usage:

	s := scheduler.New()
	defer func() { <-s.Stop() }()

	if err := s.Start(); err != nil {
		return err
	}

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		return refresh(ctx)
	})

	s.Schedule("once", task, time.Now().Add(time.Minute))
	s.ScheduleAfter("soon", task, 5*time.Second)
	s.ScheduleRepeating("heartbeat", task, 30*time.Second)

Cron Expressions:

ScheduleCron takes six fields, seconds first, and the robfig/cron
descriptors such as @hourly:

	s.ScheduleCron("nightly-export", "0 0 2 * * *", task)

Times are evaluated in Config.Location, local time by default.

Execution:

A ticker (Config.TickInterval, 50ms by default) looks for due tasks and
submits them to Config.WorkerPool. One-time tasks are removed once
submitted; repeating and cron tasks are rescheduled from the tick time. A
submission the pool refuses is logged and skipped.

Without a WorkerPool the scheduler owns a four-worker pool and shuts it
down in Stop. An injected pool is never shut down by the scheduler.

Scoped jobs are registered through the scope package, which wraps a job in
a connection scope:

	scope.ScheduleCron(s, "purge", "@every 5m", exec, purgeExpired)

Metrics:

With Config.Metrics enabled every submitted run increments
sqlflow_scheduler_jobs_run_total under Config.Name.
*/
package scheduler
