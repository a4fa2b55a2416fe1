package bridge

import (
	"context"
	"sync"
	"time"
)

// Queue is an unbounded FIFO safe for one producer and one consumer at a
// time. Push never blocks, so the producer gets no backpressure.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	head  int

	// notify holds at most one pending wake-up for a waiting consumer.
	notify chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{notify: make(chan struct{}, 1)}
}

// Push appends v.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// TryPoll removes and returns the head without waiting.
func (q *Queue[T]) TryPoll() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.head == len(q.items) {
		return zero, false
	}

	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return v, true
}

// Poll waits up to timeout for an item. It reports false if none arrived,
// and returns ctx's error if ctx ended first.
func (q *Queue[T]) Poll(ctx context.Context, timeout time.Duration) (T, bool, error) {
	if v, ok := q.TryPoll(); ok {
		return v, true, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-q.notify:
			if v, ok := q.TryPoll(); ok {
				return v, true, nil
			}
		case <-timer.C:
			v, ok := q.TryPoll()
			return v, ok, nil
		case <-ctx.Done():
			var zero T
			return zero, false, ctx.Err()
		}
	}
}

// Take waits for an item until ctx ends.
func (q *Queue[T]) Take(ctx context.Context) (T, error) {
	for {
		if v, ok := q.TryPoll(); ok {
			return v, nil
		}
		select {
		case <-q.notify:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// DrainTo moves every queued item onto buf and returns the extended slice.
func (q *Queue[T]) DrainTo(buf []T) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	buf = append(buf, q.items[q.head:]...)
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
	return buf
}
