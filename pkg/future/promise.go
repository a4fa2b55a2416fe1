package future

import (
	"sync"
	"time"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
)

// Promise is a Future that is settled explicitly. The first of Complete,
// Fail or Cancel wins; later calls are ignored.
type Promise[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	value     T
	err       error
	cancelled bool
	onCancel  []func()
	onDone    []func()
}

// NewPromise creates an unsettled promise.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Failed returns a future that has already failed with err.
func Failed[T any](err error) Future[T] {
	p := NewPromise[T]()
	p.Fail(err)
	return p
}

func (p *Promise[T]) settle(fn func()) bool {
	p.mu.Lock()
	select {
	case <-p.done:
		p.mu.Unlock()
		return false
	default:
	}

	fn()
	close(p.done)
	hooks := p.onDone
	p.onDone = nil
	p.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
	return true
}

// whenDone runs fn once the promise settles, immediately if it already has.
func (p *Promise[T]) whenDone(fn func()) {
	p.mu.Lock()
	select {
	case <-p.done:
		p.mu.Unlock()
		fn()
		return
	default:
	}
	p.onDone = append(p.onDone, fn)
	p.mu.Unlock()
}

// Complete settles the promise with v.
func (p *Promise[T]) Complete(v T) bool {
	return p.settle(func() { p.value = v })
}

// Fail settles the promise with err.
func (p *Promise[T]) Fail(err error) bool {
	return p.settle(func() { p.err = err })
}

// Cancel settles the promise as cancelled and runs the OnCancel hooks.
func (p *Promise[T]) Cancel() bool {
	var hooks []func()
	ok := p.settle(func() {
		p.cancelled = true
		p.err = sferrors.ErrCancelled
		hooks = p.onCancel
		p.onCancel = nil
	})

	for _, hook := range hooks {
		hook()
	}
	return ok
}

// OnCancel registers fn to run when the promise is cancelled. If it already
// was, fn runs immediately. Hooks never run for promises settled otherwise.
func (p *Promise[T]) OnCancel(fn func()) {
	p.mu.Lock()
	if !p.cancelled {
		p.onCancel = append(p.onCancel, fn)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	fn()
}

// IsDone reports whether the promise has been settled in any way.
func (p *Promise[T]) IsDone() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// IsCancelled reports whether Cancel settled the promise.
func (p *Promise[T]) IsCancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

// Done returns a channel that is closed when the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Err returns the failure of a settled promise. It is nil while the promise
// is pending or after Complete, and ErrCancelled after Cancel.
func (p *Promise[T]) Err() error {
	if !p.IsDone() {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Get blocks until the promise settles and returns its value or failure.
func (p *Promise[T]) Get() (T, error) {
	<-p.done
	return p.result()
}

// GetTimeout is Get bounded by d. A settled promise answers immediately
// whatever d is; otherwise a non-positive d fails at once with ErrTimeout.
func (p *Promise[T]) GetTimeout(d time.Duration) (T, error) {
	if p.IsDone() {
		return p.result()
	}
	if d <= 0 {
		var zero T
		return zero, timeoutError(d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-p.done:
		return p.result()
	case <-timer.C:
		var zero T
		return zero, timeoutError(d)
	}
}

func (p *Promise[T]) result() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		var zero T
		return zero, p.err
	}
	return p.value, nil
}
