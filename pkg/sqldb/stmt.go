package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	"github.com/vnykmshr/sqlflow/pkg/common/validation"
	"github.com/vnykmshr/sqlflow/pkg/scope"
)

// Stmt is a prepared or plain statement with bound arguments. It is used by
// one scope at a time.
type Stmt struct {
	conn     *Conn
	query    string
	prepared *sql.Stmt
	args     []any
	batch    []batchEntry
}

type batchEntry struct {
	query string
	args  []any
}

// Query returns the statement's SQL.
func (s *Stmt) Query() string {
	return s.query
}

// SetQuery replaces the SQL of a plain statement.
func (s *Stmt) SetQuery(query string) error {
	if s.prepared != nil {
		return errors.New("sqldb: cannot change the query of a prepared statement")
	}
	s.query = query
	return nil
}

// Bind replaces all arguments.
func (s *Stmt) Bind(args ...any) {
	s.args = append(s.args[:0], args...)
}

// SetArg sets the argument at a 1-based position, growing the argument
// list with NULLs as needed.
func (s *Stmt) SetArg(position int, v any) error {
	if err := validation.ValidatePositive(module, "position", position); err != nil {
		return err
	}
	for len(s.args) < position {
		s.args = append(s.args, nil)
	}
	s.args[position-1] = v
	return nil
}

// Args returns a copy of the bound arguments.
func (s *Stmt) Args() []any {
	return slices.Clone(s.args)
}

func (s *Stmt) exec(ctx context.Context, query string, args []any) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if s.prepared != nil {
		res, err = s.prepared.ExecContext(ctx, args...)
	} else {
		res, err = s.conn.conn.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExecuteQuery runs the query with the bound arguments.
func (s *Stmt) ExecuteQuery(ctx context.Context) (scope.Cursor, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if s.prepared != nil {
		rows, err = s.prepared.QueryContext(ctx, s.args...)
	} else {
		rows, err = s.conn.conn.QueryContext(ctx, s.query, s.args...)
	}
	if err != nil {
		return nil, err
	}
	return NewCursor(rows), nil
}

// ExecuteSingle runs the statement once and returns the rows affected.
func (s *Stmt) ExecuteSingle(ctx context.Context) (int64, error) {
	return s.exec(ctx, s.query, s.args)
}

// AddToBatch records the current query and arguments.
func (s *Stmt) AddToBatch(context.Context) error {
	s.batch = append(s.batch, batchEntry{query: s.query, args: slices.Clone(s.args)})
	return nil
}

// ExecuteBatch runs every recorded entry in order and clears the batch.
func (s *Stmt) ExecuteBatch(ctx context.Context) ([]int64, error) {
	entries := s.batch
	s.batch = nil

	counts := make([]int64, 0, len(entries))
	for _, e := range entries {
		n, err := s.exec(ctx, e.query, e.args)
		if err != nil {
			return counts, err
		}
		counts = append(counts, n)
	}
	return counts, nil
}

// Close releases a prepared statement.
func (s *Stmt) Close() error {
	s.batch = nil
	if s.prepared == nil {
		return nil
	}
	return s.prepared.Close()
}
