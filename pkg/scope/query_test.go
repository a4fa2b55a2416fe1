package scope

import (
	"context"
	"errors"
	"testing"

	"github.com/vnykmshr/sqlflow/internal/testutil"
	"github.com/vnykmshr/sqlflow/internal/testutil/fakedb"
	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
	"github.com/vnykmshr/sqlflow/pkg/result"
)

func TestQueryRow(t *testing.T) {
	f := newFixture(t, false, Config{})
	cursor := fakedb.IntCursor(3, "id", "qty")

	row, err := QueryRow(context.Background(), f.exec, f.statements(cursor), nil).Get()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, row.String(), "{id:0, qty:1}")
	if !cursor.Closed() {
		t.Error("cursor left open")
	}
}

func TestQueryRowEmpty(t *testing.T) {
	f := newFixture(t, false, Config{})

	_, err := QueryRow(context.Background(), f.exec, f.statements(fakedb.IntCursor(0, "id")), nil).Get()
	if !errors.Is(err, sferrors.ErrNoRows) {
		t.Errorf("error = %v, want ErrNoRows", err)
	}
}

func TestQueryObject(t *testing.T) {
	f := newFixture(t, false, Config{})
	cols := []result.Column{{Name: "count", Type: result.TypeInt, DatabaseType: "BIGINT"}}

	n, err := QueryObject[*fakedb.Stmt, int64](context.Background(), f.exec, f.statements(fakedb.NewCursor(cols, []any{int64(17)})), nil).Get()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, int64(17))

	text := []result.Column{{Name: "label", Type: result.TypeString, DatabaseType: "TEXT"}}
	_, err = QueryObject[*fakedb.Stmt, int64](context.Background(), f.exec, f.statements(fakedb.NewCursor(text, []any{"seventeen"})), nil).Get()
	testutil.AssertEqual(t, sferrors.KindOf(err), sferrors.KindRead)
}

func TestQueryExtract(t *testing.T) {
	f := newFixture(t, false, Config{})
	cursor := fakedb.IntCursor(4, "id")

	count, err := QueryExtract(context.Background(), f.exec, f.statements(cursor), nil, func(c Cursor) (int, error) {
		n := 0
		for {
			ok, err := c.Advance()
			if err != nil || !ok {
				return n, err
			}
			n++
		}
	}).Get()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, 4)

	cause := errors.New("extract failed")
	failing := fakedb.IntCursor(1, "id")
	_, err = QueryExtract(context.Background(), f.exec, f.statements(failing), nil, func(Cursor) (int, error) {
		return 0, cause
	}).Get()
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want the extractor's error", err)
	}
	if !failing.Closed() {
		t.Error("cursor must be closed when extraction fails")
	}
}

func TestQueryExecuteFailure(t *testing.T) {
	f := newFixture(t, false, Config{})
	cause := errors.New("no such table")
	provide := func(ctx context.Context, conn Connection) (*fakedb.Stmt, error) {
		stmt, err := f.statements(nil)(ctx, conn)
		if err == nil {
			stmt.QueryErr = cause
		}
		return stmt, err
	}

	_, err := QueryRow(context.Background(), f.exec, provide, nil).Get()
	testutil.AssertEqual(t, sferrors.KindOf(err), sferrors.KindExecute)
	if !errors.Is(err, cause) {
		t.Error("query error should wrap the cause")
	}
}
