package scope

import (
	"context"
	"sync/atomic"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
)

// Unwrapper is implemented by connection decorators.
type Unwrapper interface {
	Unwrap() Connection
}

// NoCloseConnection shares a connection it does not own. Close only marks
// the decorator closed; the delegate stays open for its owner.
type NoCloseConnection struct {
	delegate Connection
	closed   atomic.Bool
}

// NewNoCloseConnection wraps conn. It panics on a nil conn.
func NewNoCloseConnection(conn Connection) *NoCloseConnection {
	if conn == nil {
		panic("connection cannot be nil")
	}
	return &NoCloseConnection{delegate: conn}
}

// Close marks the decorator closed and leaves the delegate open.
func (c *NoCloseConnection) Close() error {
	c.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (c *NoCloseConnection) Closed() bool {
	return c.closed.Load()
}

// SupportsBatching asks the delegate. It fails with ErrClosed after Close.
func (c *NoCloseConnection) SupportsBatching(ctx context.Context) (bool, error) {
	if c.Closed() {
		return false, sferrors.ErrClosed
	}
	return c.delegate.SupportsBatching(ctx)
}

// Unwrap returns the delegate.
func (c *NoCloseConnection) Unwrap() Connection {
	return c.delegate
}

// Unwrap walks conn's chain of decorators and returns the first one that is
// a T.
func Unwrap[T any](conn Connection) (T, bool) {
	for conn != nil {
		if t, ok := any(conn).(T); ok {
			return t, true
		}
		u, ok := conn.(Unwrapper)
		if !ok {
			break
		}
		conn = u.Unwrap()
	}
	var zero T
	return zero, false
}

// Shared returns a provider that hands every scope conn behind a fresh
// NoCloseConnection, so scopes use conn without closing it.
func Shared(conn Connection) ConnectionProvider {
	if conn == nil {
		panic("connection cannot be nil")
	}
	return ConnectionProviderFunc(func(context.Context) (Connection, error) {
		return NewNoCloseConnection(conn), nil
	})
}
