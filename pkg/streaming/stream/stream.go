package stream

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrStreamClosed is returned when attempting to operate on a closed stream.
var ErrStreamClosed = errors.New("stream is closed")

// errStop ends a bulk drain early without reporting a failure.
var errStop = errors.New("stream: stop")

// Stream is a lazy sequence pulled from a Source. Intermediate operations
// wrap the source and do no work; a terminal operation pulls elements on the
// calling goroutine until the source is exhausted, then closes the stream.
//
// A Stream is itself a Source, so it can feed another stream or MapTo.
type Stream[T any] interface {
	// Filter returns a stream consisting of elements that match the given predicate.
	Filter(predicate func(T) bool) Stream[T]

	// Map returns a stream consisting of the results of applying the given function to elements.
	Map(mapper func(T) T) Stream[T]

	// Skip returns a stream consisting of remaining elements after skipping n elements.
	Skip(n int64) Stream[T]

	// Limit returns a stream consisting of elements truncated to be no longer than maxSize.
	Limit(maxSize int64) Stream[T]

	// Peek returns a stream consisting of elements, additionally performing the provided
	// action on each element as elements are consumed.
	Peek(action func(T)) Stream[T]

	// ForEach performs an action for each element of the stream.
	ForEach(ctx context.Context, action func(T)) error

	// Reduce performs a reduction on elements using the provided identity and combining function.
	Reduce(ctx context.Context, identity T, accumulator func(T, T) T) (T, error)

	// ToSlice returns a slice containing all elements.
	ToSlice(ctx context.Context) ([]T, error)

	// Count returns the count of elements.
	Count(ctx context.Context) (int64, error)

	// AnyMatch returns whether any elements match the given predicate.
	AnyMatch(ctx context.Context, predicate func(T) bool) (bool, error)

	// FindFirst returns the first element, if present.
	FindFirst(ctx context.Context) (T, bool, error)

	// Next pulls one element, making a Stream usable as a Source.
	Next(ctx context.Context) (T, bool, error)

	// Close closes the stream and its source.
	Close() error

	// IsClosed returns true if the stream is closed.
	IsClosed() bool
}

// Source represents a data source for streams.
type Source[T any] interface {
	// Next returns the next element and true, or zero value and false if no more elements.
	Next(ctx context.Context) (T, bool, error)
	// Close closes the source and releases resources.
	Close() error
}

// BulkSource is a Source that can hand over its remaining elements in
// batches. Terminal operations use it when every stage supports it.
type BulkSource[T any] interface {
	Source[T]

	// ForEachRemaining applies action to every remaining element. An error
	// from action stops the drain and is returned.
	ForEachRemaining(ctx context.Context, action func(T) error) error
}

// stream is the default implementation of Stream.
type stream[T any] struct {
	source Source[T]
	closed atomic.Bool
}

// New creates a new Stream from a Source.
func New[T any](source Source[T]) Stream[T] {
	return &stream[T]{source: source}
}

// FromSlice creates a Stream from a slice.
func FromSlice[T any](slice []T) Stream[T] {
	return New[T](&sliceSource[T]{slice: slice})
}

// FromChannel creates a Stream from a channel.
func FromChannel[T any](ch <-chan T) Stream[T] {
	return New[T](&channelSource[T]{ch: ch})
}

// Empty creates an empty Stream.
func Empty[T any]() Stream[T] {
	return New[T](&emptySource[T]{})
}

// MapTo transforms elements to a different type.
func MapTo[T, U any](s Stream[T], mapper func(T) U) Stream[U] {
	return New[U](&mappingSource[T, U]{originalSource: s, mapper: mapper})
}

func (s *stream[T]) derive(source Source[T]) Stream[T] {
	return &stream[T]{source: source}
}

func (s *stream[T]) Filter(predicate func(T) bool) Stream[T] {
	return s.derive(&filterSource[T]{upstream: s.source, predicate: predicate})
}

func (s *stream[T]) Map(mapper func(T) T) Stream[T] {
	return s.derive(&mappingSource[T, T]{originalSource: s.source, mapper: mapper})
}

func (s *stream[T]) Skip(n int64) Stream[T] {
	return s.derive(&skipSource[T]{upstream: s.source, remaining: n})
}

func (s *stream[T]) Limit(maxSize int64) Stream[T] {
	return s.derive(&limitSource[T]{upstream: s.source, remaining: maxSize})
}

func (s *stream[T]) Peek(action func(T)) Stream[T] {
	return s.derive(&peekSource[T]{upstream: s.source, action: action})
}

// Next pulls a single element.
func (s *stream[T]) Next(ctx context.Context) (T, bool, error) {
	if s.IsClosed() {
		var zero T
		return zero, false, ErrStreamClosed
	}
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, false, err
	}
	return s.source.Next(ctx)
}

// drain feeds every remaining element to action, through the bulk path
// when the whole chain supports it, and closes the stream afterwards.
func (s *stream[T]) drain(ctx context.Context, action func(T) error) error {
	if s.IsClosed() {
		return ErrStreamClosed
	}
	defer func() { _ = s.Close() }()

	var err error
	if bulk, ok := asBulk(s.source); ok {
		err = bulk.ForEachRemaining(ctx, func(v T) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return action(v)
		})
	} else {
		err = pull(ctx, s.source, action)
	}

	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

func pull[T any](ctx context.Context, source Source[T], action func(T) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, ok, err := source.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := action(v); err != nil {
			return err
		}
	}
}

func (s *stream[T]) ForEach(ctx context.Context, action func(T)) error {
	return s.drain(ctx, func(v T) error {
		action(v)
		return nil
	})
}

func (s *stream[T]) ToSlice(ctx context.Context) ([]T, error) {
	out := make([]T, 0)
	err := s.drain(ctx, func(v T) error {
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *stream[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.drain(ctx, func(T) error {
		n++
		return nil
	})
	return n, err
}

func (s *stream[T]) Reduce(ctx context.Context, identity T, accumulator func(T, T) T) (T, error) {
	acc := identity
	err := s.drain(ctx, func(v T) error {
		acc = accumulator(acc, v)
		return nil
	})
	return acc, err
}

func (s *stream[T]) AnyMatch(ctx context.Context, predicate func(T) bool) (bool, error) {
	found := false
	err := s.drain(ctx, func(v T) error {
		if predicate(v) {
			found = true
			return errStop
		}
		return nil
	})
	return found, err
}

func (s *stream[T]) FindFirst(ctx context.Context) (T, bool, error) {
	var (
		first T
		found bool
	)
	err := s.drain(ctx, func(v T) error {
		first, found = v, true
		return errStop
	})
	return first, found, err
}

// bulk lets a stream wrapped by MapTo keep its source's bulk path.
func (s *stream[T]) bulk() (BulkSource[T], bool) {
	return asBulk(s.source)
}

// Close implementation
func (s *stream[T]) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.source != nil {
		return s.source.Close()
	}
	return nil
}

// IsClosed implementation
func (s *stream[T]) IsClosed() bool {
	return s.closed.Load()
}
