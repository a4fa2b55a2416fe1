package future

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
)

// Status is the untyped view of an asynchronous computation. Components that
// only need to observe completion, such as a stream consumer watching its
// producer, depend on Status rather than on a typed Future.
type Status interface {
	// Cancel attempts to cancel the computation. It reports whether this
	// call moved the computation into the cancelled state.
	Cancel() bool

	// IsDone reports whether the computation has finished, failed or
	// been cancelled.
	IsDone() bool

	// IsCancelled reports whether the computation was cancelled.
	IsCancelled() bool

	// Done returns a channel that is closed once IsDone is true.
	Done() <-chan struct{}

	// Err returns the failure of a finished computation, or nil while the
	// computation is running or if it succeeded.
	Err() error
}

// Future is a handle to a value produced asynchronously.
type Future[T any] interface {
	Status

	// Get blocks until the value is available.
	Get() (T, error)

	// GetTimeout blocks for at most d. It returns an error matching
	// errors.ErrTimeout if the value is not available in time.
	GetTimeout(d time.Duration) (T, error)
}

const module = "future"

func timeoutError(d time.Duration) error {
	return fmt.Errorf("future: result not available within %v: %w", d, sferrors.ErrTimeout)
}

// Await blocks until f is done or ctx ends. A context that ends first
// yields a KindInterrupted error; f itself is left running.
func Await[T any](ctx context.Context, f Future[T]) (T, error) {
	select {
	case <-f.Done():
		return f.Get()
	case <-ctx.Done():
		var zero T
		return zero, sferrors.Wrap(sferrors.KindInterrupted, module, "Await", ctx.Err())
	}
}

// AwaitAll waits for every future and returns their values in argument
// order. The first failure is returned and the remaining waits are abandoned.
func AwaitAll[T any](ctx context.Context, futures ...Future[T]) ([]T, error) {
	results := make([]T, len(futures))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range futures {
		g.Go(func() error {
			v, err := Await(gctx, f)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
