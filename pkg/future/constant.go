package future

import "time"

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

type constant[T any] struct {
	value T
}

// Constant returns a future that is already resolved to v. It cannot be
// cancelled, and both Get and GetTimeout return v immediately.
func Constant[T any](v T) Future[T] {
	return constant[T]{value: v}
}

func (c constant[T]) Cancel() bool          { return false }
func (c constant[T]) IsDone() bool          { return true }
func (c constant[T]) IsCancelled() bool     { return false }
func (c constant[T]) Done() <-chan struct{} { return closedCh }
func (c constant[T]) Err() error            { return nil }
func (c constant[T]) Get() (T, error)       { return c.value, nil }

func (c constant[T]) whenDone(fn func()) { fn() }

// GetTimeout ignores d.
func (c constant[T]) GetTimeout(d time.Duration) (T, error) {
	return c.value, nil
}
