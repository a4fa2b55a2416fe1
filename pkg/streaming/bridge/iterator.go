package bridge

import (
	"context"
	"iter"
	"runtime"

	ctxutil "github.com/vnykmshr/sqlflow/pkg/common/context"
	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
	"github.com/vnykmshr/sqlflow/pkg/common/validation"
	"github.com/vnykmshr/sqlflow/pkg/future"
	"github.com/vnykmshr/sqlflow/pkg/metrics"
	"github.com/vnykmshr/sqlflow/pkg/streaming/stream"
)

// Iterator pulls the items a producer task pushes onto a Queue. The task's
// completion is the only end-of-stream signal: once it is done and the queue
// is empty the iterator is exhausted, and a failed task surfaces its failure
// as a KindProducer error after every queued item has been delivered.
//
// An Iterator supports a single consumer and is not safe for concurrent use.
type Iterator[T any] struct {
	task  future.Status
	queue *Queue[T]
	cfg   Config

	next   T
	cached bool
	err    error
	closed bool

	registry *metrics.Registry
}

// New creates an iterator over q, which task fills. It panics on a nil task
// or queue and on non-positive timings.
func New[T any](task future.Status, q *Queue[T], opts ...Option) *Iterator[T] {
	if task == nil {
		panic("producer task cannot be nil")
	}
	if q == nil {
		panic("queue cannot be nil")
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validation.First(
		validation.ValidatePositiveDuration(module, "PollTimeout", cfg.PollTimeout),
		validation.ValidatePositiveDuration(module, "WaitTimeout", cfg.WaitTimeout),
		validation.ValidatePositiveDuration(module, "DrainWait", cfg.DrainWait),
	); err != nil {
		panic(err)
	}

	return &Iterator[T]{
		task:     task,
		queue:    q,
		cfg:      cfg,
		registry: metrics.FromConfig(cfg.Metrics),
	}
}

// Task returns the producer task.
func (it *Iterator[T]) Task() future.Status {
	return it.task
}

// HasNext reports whether Next will return an item. It waits in short bounded
// steps: a poll of the queue, then a wait on the producer, then a yield, and
// repeats until an item arrives or the producer finishes. Calling it again
// without Next changes nothing.
func (it *Iterator[T]) HasNext(ctx context.Context) (bool, error) {
	for {
		if it.cached {
			return true, nil
		}
		if it.closed {
			return false, nil
		}
		if it.err != nil {
			return false, it.err
		}
		if it.queue.Len() > 0 {
			return true, nil
		}
		if it.task.IsDone() && it.queue.Len() == 0 {
			return false, it.finish("HasNext")
		}

		v, ok, err := it.queue.Poll(ctx, it.cfg.PollTimeout)
		if err != nil {
			return false, sferrors.Wrap(sferrors.KindInterrupted, module, "HasNext", err)
		}
		if ok {
			it.next, it.cached = v, true
			continue
		}

		done, err := ctxutil.WaitTimeout(ctx, it.task.Done(), it.cfg.WaitTimeout)
		if err != nil {
			return false, sferrors.Wrap(sferrors.KindInterrupted, module, "HasNext", err)
		}
		if !done {
			runtime.Gosched()
		}
	}
}

// Next returns the next item. At the end of the stream it returns false and
// a nil error, or the producer's failure.
func (it *Iterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if !it.cached {
		ok, err := it.HasNext(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
	}

	if it.cached {
		v := it.next
		it.next, it.cached = zero, false
		it.consumed(1)
		return v, true, nil
	}

	v, err := it.queue.Take(ctx)
	if err != nil {
		return zero, false, sferrors.Wrap(sferrors.KindInterrupted, module, "Next", err)
	}
	if !it.task.IsDone() {
		// let the producer stay ahead
		runtime.Gosched()
	}
	it.consumed(1)
	return v, true, nil
}

// ForEachRemaining applies action to every remaining item, draining the
// whole queue at a time. It is the high-throughput path. An error from
// action stops the iteration and is returned as is.
func (it *Iterator[T]) ForEachRemaining(ctx context.Context, action func(T) error) error {
	if it.cached {
		v := it.next
		var zero T
		it.next, it.cached = zero, false
		it.consumed(1)
		if err := action(v); err != nil {
			return err
		}
	}

	var buf []T
	for {
		if it.closed {
			return nil
		}
		if it.err != nil {
			return it.err
		}
		if it.task.IsDone() && it.queue.Len() == 0 {
			return it.finish("ForEachRemaining")
		}

		for it.queue.Len() > 0 {
			buf = it.queue.DrainTo(buf[:0])
			it.consumed(len(buf))
			for _, v := range buf {
				if err := action(v); err != nil {
					clear(buf)
					return err
				}
			}
			clear(buf)
		}

		if _, err := ctxutil.WaitTimeout(ctx, it.task.Done(), it.cfg.DrainWait); err != nil {
			return sferrors.Wrap(sferrors.KindInterrupted, module, "ForEachRemaining", err)
		}
	}
}

// All returns a range-over-func view of the remaining items. Iteration stops
// after yielding a non-nil error.
func (it *Iterator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok, err := it.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok || !yield(v, nil) {
				return
			}
		}
	}
}

// Stream returns a lazy Stream over the remaining items.
func (it *Iterator[T]) Stream() stream.Stream[T] {
	return stream.New[T](it)
}

// Close stops the iteration and discards queued items. Unless the iterator
// was created WithDetachedProducer, a producer that is still running is
// cancelled.
func (it *Iterator[T]) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true

	var zero T
	it.next, it.cached = zero, false

	if it.cfg.CancelOnClose && !it.task.IsDone() {
		it.task.Cancel()
	}
	clear(it.queue.DrainTo(nil))
	it.observeDepth()
	return nil
}

// finish records the producer's outcome once it is done and the queue is
// empty. A failure is kept and returned by every later call.
func (it *Iterator[T]) finish(op string) error {
	cause := it.task.Err()
	if cause == nil {
		return nil
	}

	it.err = sferrors.Wrap(sferrors.KindProducer, module, op, cause)
	if it.registry != nil {
		it.registry.ProducerFailures.WithLabelValues(it.cfg.Name).Inc()
	}
	return it.err
}

func (it *Iterator[T]) consumed(n int) {
	if it.registry == nil {
		return
	}
	it.registry.RowsConsumed.WithLabelValues(it.cfg.Name).Add(float64(n))
	it.observeDepth()
}

func (it *Iterator[T]) observeDepth() {
	if it.registry == nil {
		return
	}
	it.registry.StreamQueueDepth.WithLabelValues(it.cfg.Name).Set(float64(it.queue.Len()))
}
