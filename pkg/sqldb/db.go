package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vnykmshr/sqlflow/pkg/future"
	"github.com/vnykmshr/sqlflow/pkg/result"
	"github.com/vnykmshr/sqlflow/pkg/scope"
	"github.com/vnykmshr/sqlflow/pkg/streaming/bridge"
)

const module = "sqldb"

// Config holds adapter configuration.
type Config struct {
	// Batching makes connections report batch support, so batch updates
	// accumulate operations and run them with one ExecuteBatch call.
	Batching bool

	// Executor configures the executor DB runs its helpers on. Name
	// defaults to "sqldb".
	Executor scope.Config
}

// DefaultConfig returns batching off and a default executor.
func DefaultConfig() Config {
	cfg := scope.DefaultConfig()
	cfg.Name = "sqldb"
	return Config{Executor: cfg}
}

// DB adapts a *sql.DB to the scope collaborators and owns an executor for
// its convenience methods.
type DB struct {
	db   *sql.DB
	cfg  Config
	exec *scope.Executor
}

// Open opens a database with driverName and wraps it.
func Open(driverName, dsn string, cfg Config) (*DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqldb: opening %s database: %w", driverName, err)
	}
	d, err := New(db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// New wraps db.
func New(db *sql.DB, cfg Config) (*DB, error) {
	if db == nil {
		return nil, fmt.Errorf("sqldb: nil *sql.DB")
	}
	if cfg.Executor.Name == "" {
		cfg.Executor.Name = "sqldb"
	}

	d := &DB{db: db, cfg: cfg}
	exec, err := scope.NewWithConfig(d, cfg.Executor)
	if err != nil {
		return nil, err
	}
	d.exec = exec
	return d, nil
}

// NewConnection takes a connection from the database/sql pool.
func (d *DB) NewConnection(ctx context.Context) (scope.Connection, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn, batching: d.cfg.Batching}, nil
}

// SQL returns the wrapped *sql.DB.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// Executor returns the executor the convenience methods run on.
func (d *DB) Executor() *scope.Executor {
	return d.exec
}

// Close shuts down the executor's pool and closes the database.
func (d *DB) Close() error {
	<-d.exec.Shutdown()
	return d.db.Close()
}

// Execute runs query once and returns the rows affected.
func (d *DB) Execute(ctx context.Context, query string, args ...any) future.Future[int64] {
	return scope.Submit(ctx, d.exec, Plain(query), WithArgs(args...), func(ctx context.Context, stmt *Stmt) (int64, error) {
		return stmt.ExecuteSingle(ctx)
	})
}

// BatchExec runs each query, without arguments, in one batch update.
func (d *DB) BatchExec(ctx context.Context, queries ...string) future.Future[[]int64] {
	return scope.BatchUpdate(ctx, d.exec, Plain(""), nil, queries, func(_ context.Context, stmt *Stmt, query string) error {
		stmt.Bind()
		return stmt.SetQuery(query)
	})
}

// BatchUpdate prepares query once and runs it with every argument set.
func (d *DB) BatchUpdate(ctx context.Context, query string, argSets [][]any) future.Future[[]int64] {
	return scope.BatchUpdate(ctx, d.exec, Prepared(query), nil, argSets, func(_ context.Context, stmt *Stmt, args []any) error {
		stmt.Bind(args...)
		return nil
	})
}

// QueryStream runs query and streams its rows.
func (d *DB) QueryStream(ctx context.Context, query string, args []any, opts ...bridge.Option) *bridge.Iterator[*result.Row] {
	return scope.StreamQuery(ctx, d.exec, Prepared(query), WithArgs(args...), opts...)
}

// QueryRow returns the first row of query.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) future.Future[*result.Row] {
	return scope.QueryRow(ctx, d.exec, Prepared(query), WithArgs(args...))
}

// QueryObject returns the first column of the first row of query as an A.
func QueryObject[A any](ctx context.Context, d *DB, query string, args ...any) future.Future[A] {
	return scope.QueryObject[*Stmt, A](ctx, d.exec, Prepared(query), WithArgs(args...))
}

// QueryExtract runs query and passes its cursor to extract.
func QueryExtract[A any](ctx context.Context, d *DB, query string, extract func(scope.Cursor) (A, error), args ...any) future.Future[A] {
	return scope.QueryExtract(ctx, d.exec, Prepared(query), WithArgs(args...), extract)
}
