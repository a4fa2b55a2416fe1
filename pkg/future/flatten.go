package future

import (
	"errors"
	"sync"
	"time"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
)

// statusWait bounds how long status checks wait for the inner future.
const statusWait = time.Millisecond

var errNilInner = errors.New("outer future resolved to a nil future")

// notifier is implemented by the futures of this package that can run a
// callback on settlement without a waiting goroutine.
type notifier interface {
	whenDone(fn func())
}

// afterDone runs fn once s is done. Futures from other packages are watched
// by a goroutine that lives until they settle.
func afterDone(s Status, fn func()) {
	if n, ok := s.(notifier); ok {
		n.whenDone(fn)
		return
	}
	go func() {
		<-s.Done()
		fn()
	}()
}

type flattened[T any] struct {
	outer Future[Future[T]]

	doneOnce sync.Once
	done     chan struct{}
}

// Flatten presents a future of a future as a single future.
//
// GetTimeout treats its timeout as one budget covering both layers. Cancel,
// IsDone and IsCancelled fetch the inner future with a one millisecond wait
// and fall back to the outer future when it is not available. An outer
// future that resolves to nil makes the flattened future fail with a
// KindExecute error.
func Flatten[T any](outer Future[Future[T]]) Future[T] {
	if outer == nil {
		panic("future to flatten cannot be nil")
	}
	return &flattened[T]{outer: outer}
}

// target returns the inner future if the outer one yields it within the
// status wait.
func (f *flattened[T]) target() (Future[T], bool) {
	inner, err := f.outer.GetTimeout(statusWait)
	if err != nil || inner == nil {
		return nil, false
	}
	return inner, true
}

func (f *flattened[T]) Cancel() bool {
	cancelled := f.outer.Cancel()
	inner, ok := f.target()
	if !ok {
		return cancelled
	}
	return inner.Cancel() && cancelled
}

func (f *flattened[T]) IsDone() bool {
	if !f.outer.IsDone() {
		return false
	}
	inner, ok := f.target()
	if !ok {
		return true
	}
	return inner.IsDone()
}

func (f *flattened[T]) IsCancelled() bool {
	if f.outer.IsCancelled() {
		return true
	}
	if !f.IsDone() {
		return false
	}
	inner, ok := f.target()
	return ok && inner.IsCancelled()
}

func (f *flattened[T]) whenDone(fn func()) {
	afterDone(f.outer, func() {
		inner, err := f.outer.Get()
		if err != nil || inner == nil {
			fn()
			return
		}
		afterDone(inner, fn)
	})
}

func (f *flattened[T]) Done() <-chan struct{} {
	f.doneOnce.Do(func() {
		f.done = make(chan struct{})
		f.whenDone(func() { close(f.done) })
	})
	return f.done
}

func (f *flattened[T]) Err() error {
	if !f.IsDone() {
		return nil
	}
	_, err := f.Get()
	return err
}

func (f *flattened[T]) Get() (T, error) {
	inner, err := f.outer.Get()
	if err != nil {
		var zero T
		return zero, err
	}
	if inner == nil {
		var zero T
		return zero, sferrors.Wrap(sferrors.KindExecute, module, "Get", errNilInner)
	}
	return inner.Get()
}

func (f *flattened[T]) GetTimeout(d time.Duration) (T, error) {
	var zero T
	if d <= 0 {
		return zero, sferrors.NewValidationError(module, "timeout", d, "must be positive")
	}

	deadline := time.Now().Add(d)
	inner, err := f.outer.GetTimeout(d)
	if err != nil {
		return zero, err
	}
	if inner == nil {
		return zero, sferrors.Wrap(sferrors.KindExecute, module, "GetTimeout", errNilInner)
	}

	remaining := time.Until(deadline)
	if remaining < statusWait {
		remaining = statusWait
	}
	return inner.GetTimeout(remaining)
}
