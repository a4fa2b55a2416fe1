package stream

import "context"

// bulkCapable is implemented by stages that can forward a bulk drain when
// their upstream can.
type bulkCapable[T any] interface {
	bulk() (BulkSource[T], bool)
}

// asBulk reports whether source, including every stage above it, supports
// bulk draining.
func asBulk[T any](source Source[T]) (BulkSource[T], bool) {
	if stage, ok := source.(bulkCapable[T]); ok {
		return stage.bulk()
	}
	b, ok := source.(BulkSource[T])
	return b, ok
}

// bulkStage pairs a stage's pull path with its bulk drain.
type bulkStage[T any] struct {
	Source[T]
	drain func(ctx context.Context, action func(T) error) error
}

func (b *bulkStage[T]) ForEachRemaining(ctx context.Context, action func(T) error) error {
	return b.drain(ctx, action)
}

// filterSource passes through elements matching predicate.
type filterSource[T any] struct {
	upstream  Source[T]
	predicate func(T) bool
}

func (f *filterSource[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		v, ok, err := f.upstream.Next(ctx)
		if err != nil || !ok {
			return v, ok, err
		}
		if f.predicate(v) {
			return v, true, nil
		}
	}
}

func (f *filterSource[T]) Close() error { return f.upstream.Close() }

func (f *filterSource[T]) bulk() (BulkSource[T], bool) {
	up, ok := asBulk(f.upstream)
	if !ok {
		return nil, false
	}
	return &bulkStage[T]{Source: f, drain: func(ctx context.Context, action func(T) error) error {
		return up.ForEachRemaining(ctx, func(v T) error {
			if f.predicate(v) {
				return action(v)
			}
			return nil
		})
	}}, true
}

// peekSource runs action on every element that passes.
type peekSource[T any] struct {
	upstream Source[T]
	action   func(T)
}

func (p *peekSource[T]) Next(ctx context.Context) (T, bool, error) {
	v, ok, err := p.upstream.Next(ctx)
	if err == nil && ok {
		p.action(v)
	}
	return v, ok, err
}

func (p *peekSource[T]) Close() error { return p.upstream.Close() }

func (p *peekSource[T]) bulk() (BulkSource[T], bool) {
	up, ok := asBulk(p.upstream)
	if !ok {
		return nil, false
	}
	return &bulkStage[T]{Source: p, drain: func(ctx context.Context, action func(T) error) error {
		return up.ForEachRemaining(ctx, func(v T) error {
			p.action(v)
			return action(v)
		})
	}}, true
}

// skipSource discards the first remaining elements.
type skipSource[T any] struct {
	upstream  Source[T]
	remaining int64
}

func (s *skipSource[T]) Next(ctx context.Context) (T, bool, error) {
	for s.remaining > 0 {
		v, ok, err := s.upstream.Next(ctx)
		if err != nil || !ok {
			return v, ok, err
		}
		s.remaining--
	}
	return s.upstream.Next(ctx)
}

func (s *skipSource[T]) Close() error { return s.upstream.Close() }

func (s *skipSource[T]) bulk() (BulkSource[T], bool) {
	up, ok := asBulk(s.upstream)
	if !ok {
		return nil, false
	}
	return &bulkStage[T]{Source: s, drain: func(ctx context.Context, action func(T) error) error {
		return up.ForEachRemaining(ctx, func(v T) error {
			if s.remaining > 0 {
				s.remaining--
				return nil
			}
			return action(v)
		})
	}}, true
}

// limitSource ends the stream after remaining elements.
type limitSource[T any] struct {
	upstream  Source[T]
	remaining int64
}

func (l *limitSource[T]) Next(ctx context.Context) (T, bool, error) {
	if l.remaining <= 0 {
		var zero T
		return zero, false, nil
	}
	v, ok, err := l.upstream.Next(ctx)
	if err == nil && ok {
		l.remaining--
	}
	return v, ok, err
}

func (l *limitSource[T]) Close() error { return l.upstream.Close() }

func (l *limitSource[T]) bulk() (BulkSource[T], bool) {
	up, ok := asBulk(l.upstream)
	if !ok {
		return nil, false
	}
	return &bulkStage[T]{Source: l, drain: func(ctx context.Context, action func(T) error) error {
		if l.remaining <= 0 {
			return nil
		}
		return up.ForEachRemaining(ctx, func(v T) error {
			l.remaining--
			if err := action(v); err != nil {
				return err
			}
			if l.remaining <= 0 {
				return errStop
			}
			return nil
		})
	}}, true
}
