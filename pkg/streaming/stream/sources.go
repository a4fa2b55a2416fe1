package stream

import (
	"context"
)

// sliceSource implements Source for slices.
type sliceSource[T any] struct {
	slice []T
	index int
}

func (s *sliceSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if s.index >= len(s.slice) {
		return zero, false, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	v := s.slice[s.index]
	s.index++
	return v, true, nil
}

func (s *sliceSource[T]) ForEachRemaining(ctx context.Context, action func(T) error) error {
	for s.index < len(s.slice) {
		v := s.slice[s.index]
		s.index++
		if err := action(v); err != nil {
			return err
		}
	}
	return nil
}

func (s *sliceSource[T]) Close() error {
	return nil
}

// channelSource implements Source for channels.
type channelSource[T any] struct {
	ch <-chan T
}

func (s *channelSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	select {
	case value, ok := <-s.ch:
		if !ok {
			return zero, false, nil
		}
		return value, true, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

func (s *channelSource[T]) Close() error {
	return nil
}

// emptySource implements Source for empty streams.
type emptySource[T any] struct{}

func (s *emptySource[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	return zero, false, nil
}

func (s *emptySource[T]) Close() error {
	return nil
}

// mappingSource implements Source that transforms elements from one type to another.
type mappingSource[From, To any] struct {
	originalSource Source[From]
	mapper         func(From) To
}

func (s *mappingSource[From, To]) Next(ctx context.Context) (To, bool, error) {
	var zero To

	value, hasMore, err := s.originalSource.Next(ctx)
	if err != nil {
		return zero, false, err
	}

	if !hasMore {
		return zero, false, nil
	}

	return s.mapper(value), true, nil
}

func (s *mappingSource[From, To]) Close() error {
	return s.originalSource.Close()
}

func (s *mappingSource[From, To]) bulk() (BulkSource[To], bool) {
	up, ok := asBulk(s.originalSource)
	if !ok {
		return nil, false
	}
	return &bulkStage[To]{Source: s, drain: func(ctx context.Context, action func(To) error) error {
		return up.ForEachRemaining(ctx, func(v From) error {
			return action(s.mapper(v))
		})
	}}, true
}
