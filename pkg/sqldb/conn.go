package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
	"github.com/vnykmshr/sqlflow/pkg/scope"
)

// Conn is one database/sql connection held for a scope.
type Conn struct {
	conn     *sql.Conn
	batching bool
}

// Close returns the connection to database/sql's pool.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// SupportsBatching reports the configured batching mode. database/sql has
// no batch round trip of its own; with batching on, ExecuteBatch runs the
// accumulated operations back to back on this connection.
func (c *Conn) SupportsBatching(context.Context) (bool, error) {
	return c.batching, nil
}

// Raw returns the underlying connection.
func (c *Conn) Raw() *sql.Conn {
	return c.conn
}

// Prepare creates a prepared statement for query.
func (c *Conn) Prepare(ctx context.Context, query string) (*Stmt, error) {
	prepared, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("preparing %q: %w", query, err)
	}
	return &Stmt{conn: c, query: query, prepared: prepared}, nil
}

// Plain creates an unprepared statement whose query can be changed with
// SetQuery.
func (c *Conn) Plain(query string) *Stmt {
	return &Stmt{conn: c, query: query}
}

// connOf finds the *Conn behind a scope connection.
func connOf(conn scope.Connection) (*Conn, error) {
	c, ok := scope.Unwrap[*Conn](conn)
	if !ok {
		return nil, fmt.Errorf("sqldb: %T is not a database/sql connection: %w", conn, sferrors.ErrInvalidConfiguration)
	}
	return c, nil
}

// Prepared returns a statement provider that prepares query.
func Prepared(query string) scope.StatementProvider[*Stmt] {
	return func(ctx context.Context, conn scope.Connection) (*Stmt, error) {
		c, err := connOf(conn)
		if err != nil {
			return nil, err
		}
		return c.Prepare(ctx, query)
	}
}

// Plain returns a statement provider of unprepared statements for query.
func Plain(query string) scope.StatementProvider[*Stmt] {
	return func(_ context.Context, conn scope.Connection) (*Stmt, error) {
		c, err := connOf(conn)
		if err != nil {
			return nil, err
		}
		return c.Plain(query), nil
	}
}

// WithArgs returns a configurator that binds args.
func WithArgs(args ...any) scope.Configurator[*Stmt] {
	return func(_ context.Context, stmt *Stmt) error {
		stmt.Bind(args...)
		return nil
	}
}
