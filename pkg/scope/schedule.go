package scope

import (
	"context"
	"time"

	"github.com/vnykmshr/sqlflow/pkg/scheduling/scheduler"
)

// ScheduleCron registers job with s under id. Every run opens its own
// connection scope on the scheduler's worker.
func ScheduleCron(s scheduler.Scheduler, id, cronExpr string, e *Executor, job func(ctx context.Context, conn Connection) error) error {
	return s.ScheduleCron(id, cronExpr, e.Job(job))
}

// ScheduleEvery registers job with s to run now and then every interval,
// each run in its own connection scope.
func ScheduleEvery(s scheduler.Scheduler, id string, interval time.Duration, e *Executor, job func(ctx context.Context, conn Connection) error) error {
	return s.ScheduleRepeating(id, e.Job(job), interval)
}
