package scope

import (
	"context"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
	"github.com/vnykmshr/sqlflow/pkg/result"
	"github.com/vnykmshr/sqlflow/pkg/streaming/bridge"
)

// Stream runs a statement scope that executes fetch and pushes every record
// of the resulting cursor onto a queue, and returns an iterator over that
// queue immediately. The scope, and with it the statement, the connection
// and the cursor, stays open on a worker until the cursor is exhausted or
// the producer is cancelled.
//
// The iterator reports to the executor's metrics unless opts say otherwise.
func Stream[S Statement](ctx context.Context, e *Executor, provide StatementProvider[S], configure Configurator[S], fetch func(ctx context.Context, stmt S) (Cursor, error), opts ...bridge.Option) *bridge.Iterator[*result.Row] {
	if fetch == nil {
		panic("fetch cannot be nil")
	}

	q := bridge.NewQueue[*result.Row]()
	task := Submit(ctx, e, provide, configure, func(ctx context.Context, stmt S) (int, error) {
		cursor, err := fetch(ctx, stmt)
		if err != nil {
			return 0, sferrors.Wrapf(sferrors.KindExecute, module, "Stream", err, "executing query")
		}
		defer closeCursor(e, cursor)

		n, err := bridge.Produce(ctx, cursor, q)
		if e.registry != nil {
			e.registry.RowsProduced.WithLabelValues(e.name).Add(float64(n))
		}
		return n, err
	})

	base := []bridge.Option{bridge.WithMetrics(e.name, e.metrics)}
	return bridge.New[*result.Row](task, q, append(base, opts...)...)
}

// StreamQuery is Stream with the statement's own ExecuteQuery as fetch.
func StreamQuery[S QueryStatement](ctx context.Context, e *Executor, provide StatementProvider[S], configure Configurator[S], opts ...bridge.Option) *bridge.Iterator[*result.Row] {
	fetch := func(ctx context.Context, stmt S) (Cursor, error) {
		return stmt.ExecuteQuery(ctx)
	}
	return Stream(ctx, e, provide, configure, fetch, opts...)
}

func closeCursor(e *Executor, c Cursor) {
	if err := c.Close(); err != nil {
		e.logger.Info("close failed", "resource", "cursor", "error", err)
	}
}
