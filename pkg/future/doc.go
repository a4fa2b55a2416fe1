/*
Package future provides typed futures for sqlflow's asynchronous operations.

A Future is a handle to a value produced on a worker pool. Callers block on
Get, bound the wait with GetTimeout, or wait on Done alongside other channels:

	f := future.Go(ctx, pool, func(ctx context.Context) (int, error) {
		return countRows(ctx)
	})

	n, err := f.GetTimeout(5 * time.Second)
	if errors.Is(err, sferrors.ErrTimeout) {
		// still running
	}

Failures are returned exactly as the task produced them, so errors.Is and
errors.As reach the original cause. Cancelled futures report ErrCancelled.

Helpers:

  - Constant wraps a value that is already known.
  - Failed wraps a failure that is already known.
  - Flatten collapses a future whose value is another future. Its timed Get
    shares one budget across both layers.
  - Await waits on a future under a context.
  - AwaitAll waits on several futures and returns the first failure.

Promise is the settable implementation the other helpers are built on.
*/
package future
