/*
Package scope runs blocking database work as resource-scoped tasks on a
worker pool.

A scope opens a connection, configures it, creates and configures a
statement, hands the statement to the caller and then closes the statement
and the connection, in that order, on every exit path including panics. The
caller gets a future for the result instead of blocking; a panicking
callback fails it with a KindExecute error.

Executors:

	exec, err := scope.NewWithConfig(db, scope.Config{
		Name:    "orders",
		Logger:  logger,
		Metrics: metrics.DefaultConfig(),
	})
	if err != nil {
		return err
	}
	defer func() { <-exec.Shutdown() }()

Without Config.Pool the executor owns a workerpool.Provider: the pool is
created on first use and created again after Shutdown. Pass a Pool to share
one across executors; the executor never shuts an injected pool down.

Scoped Work:

	total, err := scope.Submit(ctx, exec, prepare, nil,
		func(ctx context.Context, stmt *sqldb.Stmt) (int64, error) {
			return stmt.ExecuteSingle(ctx)
		}).Get()

WithConnection scopes a connection only, Run does the same synchronously for
work that is already on a worker, and Unmanaged hands out a connection and
statement the caller must close.

Failures:

Scope failures are *errors.OperationError values classified by Kind:
KindAcquire for opening a connection or creating a statement, KindConfigure
for configuration, KindExecute for the caller's callback and statement
execution. A callback error that already carries a Kind keeps it. Close
failures are logged at Info and never replace the outcome.

Batches:

BatchUpdate, BatchUpdateSeq and BatchUpdateN bind one argument set per
operation. If the connection reports batching support all sets go out in
one batch; otherwise each is executed on its own. Both paths return one
update count per operation, in order.

Streaming:

Stream and StreamQuery keep a scope open on a worker while the cursor is
read into a queue, and return a bridge.Iterator immediately:

	rows := scope.StreamQuery(ctx, exec, prepare, nil)
	defer rows.Close()

	for row, err := range rows.All(ctx) {
		...
	}

Closing the iterator cancels the producer unless it was created with
bridge.WithDetachedProducer.

Decorators:

NoCloseConnection lets scopes use a connection owned elsewhere, and Shared
builds a ConnectionProvider from one. Unwrap finds a capability through a
chain of decorators.

Scheduling:

ScheduleCron and ScheduleEvery register a job that runs in its own scope on
every tick of a scheduler.Scheduler.
*/
package scope
