package future

import (
	"context"
	"fmt"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
	"github.com/vnykmshr/sqlflow/pkg/scheduling/workerpool"
)

// Go runs fn on pool and returns a future for its result. Cancelling the
// future cancels the context passed to fn. A panic in fn fails the future
// with a KindExecute error, and a pool that refuses the task fails it too.
func Go[T any](ctx context.Context, pool workerpool.Pool, fn func(ctx context.Context) (T, error)) Future[T] {
	p := NewPromise[T]()

	ctx, cancel := context.WithCancel(ctx)
	p.OnCancel(cancel)

	err := pool.SubmitWithContext(ctx, workerpool.TaskFunc(func(ctx context.Context) (err error) {
		defer cancel()

		if p.IsDone() {
			return p.Err()
		}

		defer func() {
			if r := recover(); r != nil {
				err = sferrors.Wrap(sferrors.KindExecute, module, "Go", fmt.Errorf("task panicked: %v", r))
				p.Fail(err)
			}
		}()

		v, err := fn(ctx)
		if err != nil {
			p.Fail(err)
			return err
		}
		p.Complete(v)
		return nil
	}))
	if err != nil {
		cancel()
		p.Fail(err)
	}

	return p
}
