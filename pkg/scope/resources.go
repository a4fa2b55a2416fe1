package scope

import (
	"context"

	"github.com/vnykmshr/sqlflow/pkg/result"
)

// Cursor is a forward-only reader over one query's records.
type Cursor = result.Cursor

// Connection is an open client connection. A scope owns the connection it
// opened and closes it when the scope ends.
type Connection interface {
	// Close releases the connection.
	Close() error

	// SupportsBatching reports whether the backend executes statement
	// batches in one round trip.
	SupportsBatching(ctx context.Context) (bool, error)
}

// ConnectionProvider opens connections.
type ConnectionProvider interface {
	NewConnection(ctx context.Context) (Connection, error)
}

// ConnectionProviderFunc adapts a function to ConnectionProvider.
type ConnectionProviderFunc func(ctx context.Context) (Connection, error)

// NewConnection calls f.
func (f ConnectionProviderFunc) NewConnection(ctx context.Context) (Connection, error) {
	return f(ctx)
}

// Statement is a unit of work created on a connection.
type Statement interface {
	Close() error
}

// QueryStatement is a statement that produces a cursor.
type QueryStatement interface {
	Statement
	ExecuteQuery(ctx context.Context) (Cursor, error)
}

// BatchStatement is a statement that can run once per bound argument set,
// either accumulated into one batch or executed one at a time.
type BatchStatement interface {
	Statement
	AddToBatch(ctx context.Context) error
	ExecuteBatch(ctx context.Context) ([]int64, error)
	ExecuteSingle(ctx context.Context) (int64, error)
}

// StatementProvider creates a statement on conn.
type StatementProvider[S Statement] func(ctx context.Context, conn Connection) (S, error)

// Configurator prepares a connection or statement before use. A nil
// Configurator does nothing.
type Configurator[S any] func(ctx context.Context, s S) error
