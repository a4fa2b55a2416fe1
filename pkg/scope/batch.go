package scope

import (
	"context"
	"iter"
	"slices"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
	"github.com/vnykmshr/sqlflow/pkg/future"
)

// Batch modes reported to metrics.
const (
	modeBatch  = "batch"
	modeSingle = "single"
)

// BatchUpdateSeq binds each element of ops to the statement and executes
// it. If the connection supports batching, every bound set is added to one
// batch executed in a single round trip; otherwise each is executed on its
// own. Either way the result holds one update count per element, in order.
// A failed batching support check counts as no support.
func BatchUpdateSeq[S BatchStatement, A any](ctx context.Context, e *Executor, provide StatementProvider[S], configure Configurator[S], ops iter.Seq[A], bind func(ctx context.Context, stmt S, op A) error) future.Future[[]int64] {
	if provide == nil || ops == nil || bind == nil {
		return future.Failed[[]int64](sferrors.NewValidationError(module, "bind", nil, "statement provider, operations and binder cannot be nil"))
	}
	return batch(ctx, e, "BatchUpdate", provide, configure, ops, func(ctx context.Context, stmt S, _ int, op A) error {
		return bind(ctx, stmt, op)
	})
}

// BatchUpdate is BatchUpdateSeq over a slice.
func BatchUpdate[S BatchStatement, A any](ctx context.Context, e *Executor, provide StatementProvider[S], configure Configurator[S], ops []A, bind func(ctx context.Context, stmt S, op A) error) future.Future[[]int64] {
	return BatchUpdateSeq(ctx, e, provide, configure, slices.Values(ops), bind)
}

// BatchUpdateN runs n operations, passing bind the index of each one.
func BatchUpdateN[S BatchStatement](ctx context.Context, e *Executor, provide StatementProvider[S], configure Configurator[S], n int, bind func(ctx context.Context, stmt S, index int) error) future.Future[[]int64] {
	if provide == nil || bind == nil {
		return future.Failed[[]int64](sferrors.NewValidationError(module, "bind", nil, "statement provider and binder cannot be nil"))
	}
	if n < 0 {
		return future.Failed[[]int64](sferrors.NewValidationError(module, "n", n, "cannot be negative"))
	}
	indexes := func(yield func(int) bool) {
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
	return batch(ctx, e, "BatchUpdateN", provide, configure, indexes, func(ctx context.Context, stmt S, i int, _ int) error {
		return bind(ctx, stmt, i)
	})
}

func batch[S BatchStatement, A any](ctx context.Context, e *Executor, op string, provide StatementProvider[S], configure Configurator[S], ops iter.Seq[A], bind func(ctx context.Context, stmt S, index int, op A) error) future.Future[[]int64] {
	return future.Go(ctx, e.pool, func(ctx context.Context) ([]int64, error) {
		var counts []int64
		err := e.run(ctx, op, func(ctx context.Context, s *session) error {
			return withStatement(ctx, s, provide, configure, func(stmt S) error {
				batching, err := s.conn.SupportsBatching(ctx)
				if err != nil {
					s.logger.Debug("batching support check failed", "error", err)
					batching = false
				}

				mode := modeSingle
				if batching {
					mode = modeBatch
				}
				if e.registry != nil {
					e.registry.BatchOperation.WithLabelValues(e.name, mode).Inc()
				}

				if batching {
					counts, err = runBatched(ctx, s, stmt, ops, bind)
				} else {
					counts, err = runSingly(ctx, s, stmt, ops, bind)
				}
				return err
			})
		})
		return counts, err
	})
}

func runBatched[S BatchStatement, A any](ctx context.Context, s *session, stmt S, ops iter.Seq[A], bind func(context.Context, S, int, A) error) ([]int64, error) {
	n := 0
	for op := range ops {
		if err := bindOne(ctx, s, stmt, n, op, bind); err != nil {
			return nil, err
		}
		if err := stmt.AddToBatch(ctx); err != nil {
			return nil, sferrors.Wrapf(sferrors.KindExecute, module, s.op, err, "adding operation %d to batch", n)
		}
		n++
	}
	if n == 0 {
		return []int64{}, nil
	}

	counts, err := stmt.ExecuteBatch(ctx)
	if err != nil {
		return nil, sferrors.Wrapf(sferrors.KindExecute, module, s.op, err, "executing batch of %d", n)
	}
	return counts, nil
}

func runSingly[S BatchStatement, A any](ctx context.Context, s *session, stmt S, ops iter.Seq[A], bind func(context.Context, S, int, A) error) ([]int64, error) {
	counts := []int64{}
	for op := range ops {
		i := len(counts)
		if err := bindOne(ctx, s, stmt, i, op, bind); err != nil {
			return nil, err
		}
		count, err := stmt.ExecuteSingle(ctx)
		if err != nil {
			return nil, sferrors.Wrapf(sferrors.KindExecute, module, s.op, err, "executing operation %d", i)
		}
		counts = append(counts, count)
	}
	return counts, nil
}

func bindOne[S BatchStatement, A any](ctx context.Context, s *session, stmt S, i int, op A, bind func(context.Context, S, int, A) error) error {
	if err := ctx.Err(); err != nil {
		return sferrors.Wrapf(sferrors.KindInterrupted, module, s.op, err, "before operation %d", i)
	}
	if err := bind(ctx, stmt, i, op); err != nil {
		return sferrors.Wrapf(sferrors.KindExecute, module, s.op, err, "binding operation %d", i)
	}
	return nil
}
