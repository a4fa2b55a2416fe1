package scope

import (
	"context"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
	"github.com/vnykmshr/sqlflow/pkg/future"
	"github.com/vnykmshr/sqlflow/pkg/result"
)

// QueryExtract executes the statement's query in a scope and passes the
// cursor to extract. The cursor is closed before the statement whatever
// extract does.
func QueryExtract[S QueryStatement, A any](ctx context.Context, e *Executor, provide StatementProvider[S], configure Configurator[S], extract func(cursor Cursor) (A, error)) future.Future[A] {
	if provide == nil || extract == nil {
		return future.Failed[A](sferrors.NewValidationError(module, "extract", nil, "statement provider and extractor cannot be nil"))
	}
	return submit(ctx, e, "QueryExtract", provide, configure, func(ctx context.Context, stmt S) (A, error) {
		var zero A
		cursor, err := stmt.ExecuteQuery(ctx)
		if err != nil {
			return zero, sferrors.Wrapf(sferrors.KindExecute, module, "QueryExtract", err, "executing query")
		}
		defer closeCursor(e, cursor)
		return extract(cursor)
	})
}

// QueryRow returns the first row of the statement's query. A query with no
// rows fails with ErrNoRows.
func QueryRow[S QueryStatement](ctx context.Context, e *Executor, provide StatementProvider[S], configure Configurator[S]) future.Future[*result.Row] {
	return QueryExtract(ctx, e, provide, configure, FirstRow)
}

// QueryObject returns the first column of the first row converted to A.
func QueryObject[S QueryStatement, A any](ctx context.Context, e *Executor, provide StatementProvider[S], configure Configurator[S]) future.Future[A] {
	return QueryExtract(ctx, e, provide, configure, func(cursor Cursor) (A, error) {
		var zero A
		row, err := FirstRow(cursor)
		if err != nil {
			return zero, err
		}
		if row.Len() == 0 {
			return zero, sferrors.Wrap(sferrors.KindRead, module, "QueryObject", sferrors.ErrNoRows)
		}
		v, err := result.Convert[A](row.At(0))
		if err != nil {
			return zero, sferrors.Wrapf(sferrors.KindRead, module, "QueryObject", err, "column %q", row.Key().Name(0))
		}
		return v, nil
	})
}

// FirstRow reads the cursor's first record as a Row.
func FirstRow(cursor Cursor) (*result.Row, error) {
	key, err := result.KeyOf(cursor)
	if err != nil {
		return nil, sferrors.Wrap(sferrors.KindRead, module, "FirstRow", err)
	}
	ok, err := cursor.Advance()
	if err != nil {
		return nil, sferrors.Wrap(sferrors.KindRead, module, "FirstRow", err)
	}
	if !ok {
		return nil, sferrors.ErrNoRows
	}
	row := result.NewRow(key)
	if err := row.Load(cursor); err != nil {
		return nil, sferrors.Wrap(sferrors.KindRead, module, "FirstRow", err)
	}
	return row, nil
}
